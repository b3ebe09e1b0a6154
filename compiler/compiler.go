// The compiler-package contains the core of our compiler.
//
// We go through a five-step pipeline:
//
//  1.  Lex the source into a token stream.
//
//  2.  Parse the tokens into an AST.
//
//  3.  Validate the AST: resolve variables and label loops/switches.
//
//  4.  Lower the validated AST to TACKY, our three-address IR.
//
//  5.  Generate x86-64 assembly from TACKY and emit it as text.
//
// Each stage consumes exactly the previous stage's output; a
// compileopts.Stage lets a caller stop the pipeline early, which is how
// the CLI's --lex/--parse/--validate/--tacky/--codegen flags are
// implemented.
package compiler

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/polaris/c-compiler/asmgen"
	"github.com/polaris/c-compiler/ast"
	"github.com/polaris/c-compiler/compileopts"
	"github.com/polaris/c-compiler/internal/fresh"
	"github.com/polaris/c-compiler/lexer"
	"github.com/polaris/c-compiler/resolve"
	"github.com/polaris/c-compiler/tacky"
	"github.com/polaris/c-compiler/token"
)

// Compiler holds our object-state.
type Compiler struct {
	// source holds the program text we're compiling.
	source string

	// opts controls debug output and where the pipeline stops.
	opts compileopts.Options

	// counter is shared by validation and lowering so fresh names and
	// labels never collide across stages; codegen generates no fresh
	// names and does not use it.
	counter *fresh.Counter
}

// New creates a new compiler, given the source text in the constructor.
func New(source string) *Compiler {
	return &Compiler{source: source, opts: compileopts.Default(), counter: fresh.New()}
}

// SetDebug changes the debug-flag for our output.
func (c *Compiler) SetDebug(val bool) {
	c.opts.Debug = val
}

// SetOptions replaces the compiler's options wholesale, e.g. after
// decoding CLI flags or a project TOML file.
func (c *Compiler) SetOptions(opts compileopts.Options) {
	c.opts = opts
}

// Result carries the stage outputs CompileTo produced: the fields of every
// stage up to and including the requested one are populated, and the
// fields of later stages are left zero.
type Result struct {
	Tokens   []token.Token
	Program  *ast.Program
	Tacky    *tacky.Program
	Assembly string
}

// Compile runs the full pipeline and returns the generated assembly text.
func (c *Compiler) Compile() (string, error) {
	result, err := c.CompileTo(compileopts.StageCodegen)
	if err != nil {
		return "", err
	}
	return result.Assembly, nil
}

// CompileTo runs the pipeline up to and including stage, returning
// whatever that stage produced.
func (c *Compiler) CompileTo(stage compileopts.Stage) (*Result, error) {
	toks, err := lexer.All(c.source)
	if err != nil {
		return nil, errors.Wrap(err, "lexing")
	}
	if c.opts.Debug {
		fmt.Fprintf(os.Stderr, "# tokens: %d\n", len(toks))
	}
	if stage == compileopts.StageLex {
		return &Result{Tokens: toks}, nil
	}

	prog, err := ast.Parse(toks)
	if err != nil {
		return nil, errors.Wrap(err, "parsing")
	}
	if stage == compileopts.StageParse {
		return &Result{Tokens: toks, Program: prog}, nil
	}

	if err := resolve.Program(prog, c.counter); err != nil {
		return nil, errors.Wrap(err, "validating")
	}
	if stage == compileopts.StageValidate {
		return &Result{Tokens: toks, Program: prog}, nil
	}

	tackyProg := tacky.Translate(prog, c.counter)
	if stage == compileopts.StageTacky {
		return &Result{Tokens: toks, Program: prog, Tacky: tackyProg}, nil
	}

	asmProg := asmgen.Generate(tackyProg)
	asmText := asmgen.Emit(asmProg)
	return &Result{Tokens: toks, Program: prog, Tacky: tackyProg, Assembly: asmText}, nil
}
