// Package lex tokenizes .phd source text. Token *content* is recognized by a
// github.com/alecthomas/participle/v2/lexer.MustSimple regexp rule table,
// the same technique the BSDL lexer in the reference corpus uses for a
// different hardware-adjacent DSL; participle's declarative grammar layer
// doesn't model Python's indentation-sensitive blocks, so a hand-written
// indent tracker (in the byte-scanner style of the corpus's own HDL parsers)
// runs over the flat token stream afterward to synthesize INDENT, DEDENT and
// NEWLINE tokens.
package lex

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// Kind names every token type produced after indent-tracking.
type Kind int

const (
	EOF Kind = iota
	NEWLINE
	INDENT
	DEDENT
	IDENT
	NUMBER
	KEYWORD
	OP
	COLON
	COMMA
	DOT
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
)

// Token is one lexed unit with its resolved source position.
type Token struct {
	Kind Kind
	Text string
	Pos  token.Pos
}

var keywords = map[string]bool{
	"class": true, "def": true, "if": true, "elif": true, "else": true,
	"for": true, "in": true, "range": true, "match": true, "case": true,
	"return": true, "pass": true, "and": true, "or": true, "not": true,
	"import": true, "from": true,
}

var simpleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Number", Pattern: `[0-9][0-9_]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "ShiftOp", Pattern: `<<|>>`},
	{Name: "CmpOp", Pattern: `==|!=|<=|>=|<|>`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Assign", Pattern: `=`},
	{Name: "Arith", Pattern: `[+\-*/%&|^~]`},
})

// Lex tokenizes src (from file path) into a flat, indent-processed token
// stream terminated by a single EOF token.
func Lex(fset *token.FileSet, path string, src string) ([]Token, error) {
	file := fset.AddFile(path, -1, len(src))
	lx, err := simpleLexer.Lex(path, strings.NewReader(src))
	if err != nil {
		return nil, errors.Wrapf(err, "lex %s", path)
	}
	raw, err := lexer.ConsumeAll(lx)
	if err != nil {
		return nil, errors.Wrapf(err, "lex %s", path)
	}

	symbols := simpleLexer.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		names[tt] = name
	}

	toIndent := &indenter{fset: fset, file: file, names: names, indents: []int{0}, atLineStart: true}
	for _, t := range raw {
		if t.EOF() {
			break
		}
		if err := toIndent.feed(t); err != nil {
			return nil, err
		}
	}
	toIndent.finish()
	return toIndent.out, nil
}

type indenter struct {
	fset       *token.FileSet
	file       *token.File
	names      map[lexer.TokenType]string
	out        []Token
	indents    []int
	atLineStart bool
	depth       int // open-paren/bracket depth: newlines are insignificant inside
	pendingCol  int
	sawContent  bool // whether current logical line produced any token yet
}

func (in *indenter) feed(t lexer.Token) error {
	name := in.names[t.Type]
	pos := in.file.Pos(t.Pos.Offset)

	switch name {
	case "Comment", "Whitespace":
		return nil
	case "Newline":
		if in.depth > 0 {
			return nil
		}
		if in.sawContent {
			in.out = append(in.out, Token{Kind: NEWLINE, Text: "\n", Pos: pos})
		}
		in.atLineStart = true
		in.sawContent = false
		return nil
	}

	if in.atLineStart {
		col := t.Pos.Column - 1
		if err := in.handleIndent(col, pos); err != nil {
			return err
		}
		in.atLineStart = false
	}

	in.sawContent = true
	return in.emit(name, t, pos)
}

func (in *indenter) handleIndent(col int, pos token.Pos) error {
	cur := in.indents[len(in.indents)-1]
	switch {
	case col > cur:
		in.indents = append(in.indents, col)
		in.out = append(in.out, Token{Kind: INDENT, Pos: pos})
	case col < cur:
		for len(in.indents) > 1 && in.indents[len(in.indents)-1] > col {
			in.indents = in.indents[:len(in.indents)-1]
			in.out = append(in.out, Token{Kind: DEDENT, Pos: pos})
		}
		if in.indents[len(in.indents)-1] != col {
			return errors.Errorf("lex: inconsistent indentation at %s", in.fset.Position(pos))
		}
	}
	return nil
}

func (in *indenter) emit(name string, t lexer.Token, pos token.Pos) error {
	switch name {
	case "LParen", "LBracket":
		in.depth++
	case "RParen", "RBracket":
		if in.depth > 0 {
			in.depth--
		}
	}
	switch name {
	case "Ident":
		if keywords[t.Value] {
			in.out = append(in.out, Token{Kind: KEYWORD, Text: t.Value, Pos: pos})
		} else {
			in.out = append(in.out, Token{Kind: IDENT, Text: t.Value, Pos: pos})
		}
	case "Number":
		if _, err := strconv.ParseInt(strings.ReplaceAll(t.Value, "_", ""), 10, 64); err != nil {
			return errors.Wrapf(err, "lex: bad integer literal %q at %s", t.Value, in.fset.Position(pos))
		}
		in.out = append(in.out, Token{Kind: NUMBER, Text: t.Value, Pos: pos})
	case "Colon":
		in.out = append(in.out, Token{Kind: COLON, Text: ":", Pos: pos})
	case "Comma":
		in.out = append(in.out, Token{Kind: COMMA, Text: ",", Pos: pos})
	case "Dot":
		in.out = append(in.out, Token{Kind: DOT, Text: ".", Pos: pos})
	case "LParen":
		in.out = append(in.out, Token{Kind: LPAREN, Text: "(", Pos: pos})
	case "RParen":
		in.out = append(in.out, Token{Kind: RPAREN, Text: ")", Pos: pos})
	case "LBracket":
		in.out = append(in.out, Token{Kind: LBRACKET, Text: "[", Pos: pos})
	case "RBracket":
		in.out = append(in.out, Token{Kind: RBRACKET, Text: "]", Pos: pos})
	default:
		in.out = append(in.out, Token{Kind: OP, Text: t.Value, Pos: pos})
	}
	return nil
}

func (in *indenter) finish() {
	if in.sawContent {
		in.out = append(in.out, Token{Kind: NEWLINE, Text: "\n"})
	}
	for len(in.indents) > 1 {
		in.indents = in.indents[:len(in.indents)-1]
		in.out = append(in.out, Token{Kind: DEDENT})
	}
	in.out = append(in.out, Token{Kind: EOF})
}
