// Package lexer implements the maximal-munch tokenizer described in the
// compiler specification: source text in, a restartable token stream out.
//
// Whitespace, "//" and "/* */" comments, and preprocessor-style "#..."
// lines are recognized and discarded without producing tokens.
package lexer

import (
	"unicode"

	"github.com/pkg/errors"

	"github.com/polaris/c-compiler/token"
)

// Error is returned when the lexer cannot match any pattern at the current
// source position. It carries the 1-based line and column of the
// offending byte, per spec §4.1.
type Error struct {
	Line, Col int
	Ch        rune
}

func (e *Error) Error() string {
	return errors.Errorf("lex error at line %d, column %d: unexpected character %q", e.Line, e.Col, e.Ch).Error()
}

// Lexer holds our object-state: the source runes and our position within
// them.
type Lexer struct {
	src       []rune
	pos       int
	line, col int
}

// New builds a Lexer over the given source text.
func New(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

// All tokenizes the entire input, returning the token slice (terminated by
// an EOF token) or the first Error encountered.
func All(src string) ([]token.Token, error) {
	l := New(src)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

// Next scans and returns the next token, skipping whitespace and comments.
// At end of input it returns a token.EOF token forever after.
func (l *Lexer) Next() (token.Token, error) {
	l.skipTrivia()

	line, col := l.line, l.col

	ch, ok := l.peek()
	if !ok {
		return token.Token{Kind: token.EOF, Line: line, Col: col}, nil
	}

	switch {
	case isDigit(ch):
		return l.lexConstant(line, col), nil
	case isIdentStart(ch):
		return l.lexIdentOrKeyword(line, col), nil
	}

	// Multi-character operators are matched before their single-character
	// prefixes: e.g. "<<=" before "<<" before "<".
	for _, p := range operatorPatterns {
		if l.hasPrefix(p.lexeme) {
			l.advanceN(len(p.lexeme))
			return token.Token{Kind: p.kind, Lexeme: p.lexeme, Line: line, Col: col}, nil
		}
	}

	l.advance()
	return token.Token{}, &Error{Line: line, Col: col, Ch: ch}
}

// operatorPatterns is ordered longest-match-first within each shared
// prefix family, per spec §4.1.
var operatorPatterns = []struct {
	lexeme string
	kind   token.Kind
}{
	{"(", token.OPENPAREN},
	{")", token.CLOSEPAREN},
	{"{", token.OPENBRACE},
	{"}", token.CLOSEBRACE},
	{";", token.SEMICOLON},
	{":", token.COLON},
	{"?", token.QUESTION},
	{",", token.COMMA},

	{"<<=", token.SHLEQ},
	{"<<", token.SHL},
	{"<=", token.LTEQ},
	{"<", token.LT},

	{">>=", token.SHREQ},
	{">>", token.SHR},
	{">=", token.GTEQ},
	{">", token.GT},

	{"++", token.PLUSPLUS},
	{"+=", token.PLUSEQ},
	{"+", token.PLUS},

	{"--", token.MINUSMINUS},
	{"-=", token.MINUSEQ},
	{"-", token.MINUS},

	{"*=", token.STAREQ},
	{"*", token.STAR},

	{"/=", token.SLASHEQ},
	{"/", token.SLASH},

	{"%=", token.PERCENTEQ},
	{"%", token.PERCENT},

	{"~", token.TILDE},

	{"&&", token.AMPAMP},
	{"&=", token.AMPEQ},
	{"&", token.AMP},

	{"||", token.PIPEPIPE},
	{"|=", token.PIPEEQ},
	{"|", token.PIPE},

	{"^=", token.CARETEQ},
	{"^", token.CARET},

	{"==", token.EQEQ},
	{"=", token.ASSIGN},

	{"!=", token.NOTEQ},
	{"!", token.BANG},
}

func (l *Lexer) lexConstant(line, col int) token.Token {
	start := l.pos
	for {
		ch, ok := l.peek()
		if !ok || !isDigit(ch) {
			break
		}
		l.advance()
	}
	return token.Token{Kind: token.CONSTANT, Lexeme: string(l.src[start:l.pos]), Line: line, Col: col}
}

func (l *Lexer) lexIdentOrKeyword(line, col int) token.Token {
	start := l.pos
	for {
		ch, ok := l.peek()
		if !ok || !isIdentPart(ch) {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	return token.Token{Kind: token.LookupIdentifier(lexeme), Lexeme: lexeme, Line: line, Col: col}
}

// skipTrivia consumes whitespace, "//" line comments, "/* */" block
// comments, and "#...\n" preprocessor-style lines, none of which produce
// tokens.
func (l *Lexer) skipTrivia() {
	for {
		ch, ok := l.peek()
		if !ok {
			return
		}
		switch {
		case unicode.IsSpace(ch):
			l.advance()
		case ch == '#':
			l.skipToEndOfLine()
		case l.hasPrefix("//"):
			l.skipToEndOfLine()
		case l.hasPrefix("/*"):
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipToEndOfLine() {
	for {
		ch, ok := l.peek()
		if !ok || ch == '\n' {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() {
	l.advanceN(2) // consume "/*"
	for {
		if l.hasPrefix("*/") {
			l.advanceN(2)
			return
		}
		if _, ok := l.peek(); !ok {
			return
		}
		l.advance()
	}
}

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *Lexer) hasPrefix(s string) bool {
	rs := []rune(s)
	if l.pos+len(rs) > len(l.src) {
		return false
	}
	for i, r := range rs {
		if l.src[l.pos+i] != r {
			return false
		}
	}
	return true
}

func (l *Lexer) advance() {
	if l.pos >= len(l.src) {
		return
	}
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
