// This is the main-driver for our compiler.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/polaris/c-compiler/compiler"
	"github.com/polaris/c-compiler/compileopts"
)

func main() {
	os.Exit(run())
}

func run() int {
	//
	// Look for flags. Each stage flag stops the pipeline just before
	// the next stage would run.
	//
	lexOnly := flag.Bool("lex", false, "Stop after lexing.")
	parseOnly := flag.Bool("parse", false, "Stop after parsing.")
	validateOnly := flag.Bool("validate", false, "Stop after semantic validation.")
	tackyOnly := flag.Bool("tacky", false, "Stop after TACKY lowering.")
	codegenOnly := flag.Bool("codegen", false, "Stop after code generation, printing the assembly.")
	debug := flag.Bool("debug", false, "Print pipeline progress to stderr.")
	configPath := flag.String("config", "", "Path to a TOML config file of project defaults.")
	flag.Parse()

	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: c-compiler [flags] source.c\n")
		return 1
	}

	opts := compileopts.Default()
	if *configPath != "" {
		loaded, err := compileopts.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
			return 1
		}
		opts = loaded
	}
	if *debug {
		opts.Debug = true
	}

	switch {
	case *lexOnly:
		opts.Stage = compileopts.StageLex
	case *parseOnly:
		opts.Stage = compileopts.StageParse
	case *validateOnly:
		opts.Stage = compileopts.StageValidate
	case *tackyOnly:
		opts.Stage = compileopts.StageTacky
	case *codegenOnly:
		opts.Stage = compileopts.StageCodegen
	}

	source, err := os.ReadFile(flag.Args()[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %s\n", flag.Args()[0], err)
		return 1
	}

	comp := compiler.New(string(source))
	comp.SetOptions(opts)

	result, err := comp.CompileTo(opts.Stage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling: %s\n", err)
		return -1
	}

	if opts.Stage == compileopts.StageCodegen || opts.Stage == compileopts.StageFull {
		fmt.Print(result.Assembly)
	}
	return 0
}
