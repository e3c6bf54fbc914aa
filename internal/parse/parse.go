// Package parse implements a hand-written recursive-descent parser over the
// internal/lex token stream, producing internal/ast nodes. The shape below —
// one method per grammar production, position-carrying error messages via
// github.com/pkg/errors — follows the scanner-driven parsers found elsewhere
// in the reference corpus for small hardware DSLs.
package parse

import (
	"go/token"

	"github.com/pkg/errors"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/lex"
)

// Parse tokenizes and parses one .phd source file into an *ast.Package.
func Parse(fset *token.FileSet, path, src string) (*ast.Package, error) {
	toks, err := lex.Lex(fset, path, src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, path: path}
	return p.parsePackage()
}

type parser struct {
	toks []lex.Token
	pos  int
	path string
}

func (p *parser) cur() lex.Token  { return p.toks[p.pos] }
func (p *parser) peekPos() token.Pos { return p.cur().Pos }

func (p *parser) advance() lex.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(k lex.Kind) bool { return p.cur().Kind == k }

func (p *parser) atKeyword(kw string) bool {
	return p.cur().Kind == lex.KEYWORD && p.cur().Text == kw
}

func (p *parser) atOp(op string) bool {
	c := p.cur()
	return (c.Kind == lex.OP) && c.Text == op
}

func (p *parser) expect(k lex.Kind, what string) (lex.Token, error) {
	if !p.at(k) {
		return lex.Token{}, errors.Errorf("parse %s: expected %s, got %q at %v", p.path, what, p.cur().Text, p.cur().Pos)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return errors.Errorf("parse %s: expected keyword %q, got %q at %v", p.path, kw, p.cur().Text, p.cur().Pos)
	}
	p.advance()
	return nil
}

func (p *parser) skipNewlines() {
	for p.at(lex.NEWLINE) {
		p.advance()
	}
}

func (p *parser) parsePackage() (*ast.Package, error) {
	pkg := &ast.Package{Path: p.path}
	p.skipNewlines()
	for p.atKeyword("import") || p.atKeyword("from") {
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}
		pkg.Imports = append(pkg.Imports, imp)
		p.skipNewlines()
	}
	for !p.at(lex.EOF) {
		cls, err := p.parseClassDef()
		if err != nil {
			return nil, err
		}
		pkg.Classes = append(pkg.Classes, cls)
		p.skipNewlines()
	}
	return pkg, nil
}

// parseImport recognizes `import X` and `from X import a, b` purely to skip
// over them: import bindings are runtime-shim collaborators (spec.md §6) the
// core never resolves.
func (p *parser) parseImport() (string, error) {
	start := p.peekPos()
	for !p.at(lex.NEWLINE) && !p.at(lex.EOF) {
		p.advance()
	}
	p.skipNewlines()
	_ = start
	return "", nil
}

func (p *parser) parseClassDef() (*ast.ClassDef, error) {
	pos := p.peekPos()
	if err := p.expectKeyword("class"); err != nil {
		return nil, err
	}
	name, err := p.expect(lex.IDENT, "class name")
	if err != nil {
		return nil, err
	}
	cls := &ast.ClassDef{Name: name.Text, Pos: pos}
	if p.at(lex.LPAREN) {
		p.advance()
		for !p.at(lex.RPAREN) {
			base, err := p.expect(lex.IDENT, "base class")
			if err != nil {
				return nil, err
			}
			cls.Bases = append(cls.Bases, base.Text)
			if p.at(lex.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lex.RPAREN, ")"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lex.COLON, ":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	cls.Body = body
	return cls, nil
}

func (p *parser) parseBlock() ([]ast.Stmt, error) {
	p.skipNewlines()
	if _, err := p.expect(lex.INDENT, "indented block"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(lex.DEDENT) && !p.at(lex.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
		p.skipNewlines()
	}
	if _, err := p.expect(lex.DEDENT, "dedent"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.atKeyword("class"):
		def, err := p.parseClassDef()
		if err != nil {
			return nil, err
		}
		return &ast.NestedClassStmt{Def: def, Pos: def.Pos}, nil
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("match"):
		return p.parseMatch()
	case p.atKeyword("pass"):
		pos := p.advance().Pos
		return &ast.PassStmt{Pos: pos}, nil
	default:
		return p.parseSimpleStmt()
	}
}

func (p *parser) parseIf() (*ast.IfStmt, error) {
	pos := p.peekPos()
	if err := p.expectKeyword("if"); err != nil {
		return nil, err
	}
	test, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.COLON, ":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Test: test, Body: body, Pos: pos}
	switch {
	case p.atKeyword("elif"):
		elifPos := p.peekPos()
		p.toks[p.pos].Text = "if" // desugar elif -> nested if, keep original pos
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		nested.Pos = elifPos
		stmt.Orelse = []ast.Stmt{nested}
	case p.atKeyword("else"):
		p.advance()
		if _, err := p.expect(lex.COLON, ":"); err != nil {
			return nil, err
		}
		orelse, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Orelse = orelse
	}
	return stmt, nil
}

func (p *parser) parseFor() (*ast.ForStmt, error) {
	pos := p.peekPos()
	if err := p.expectKeyword("for"); err != nil {
		return nil, err
	}
	idx, err := p.expect(lex.IDENT, "loop index")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	rangeName := p.cur()
	if !p.atKeyword("range") {
		return nil, errors.Errorf("parse %s: for-loops must iterate range(...); got %q at %v", p.path, rangeName.Text, rangeName.Pos)
	}
	p.advance()
	if _, err := p.expect(lex.LPAREN, "("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(lex.RPAREN) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.at(lex.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lex.RPAREN, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.COLON, ":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Index: idx.Text, Args: args, Body: body, Pos: pos}, nil
}

func (p *parser) parseMatch() (*ast.MatchStmt, error) {
	pos := p.peekPos()
	if err := p.expectKeyword("match"); err != nil {
		return nil, err
	}
	subject, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.COLON, ":"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(lex.INDENT, "match body"); err != nil {
		return nil, err
	}
	stmt := &ast.MatchStmt{Subject: subject, Pos: pos}
	for !p.at(lex.DEDENT) && !p.at(lex.EOF) {
		casePos := p.peekPos()
		if err := p.expectKeyword("case"); err != nil {
			return nil, err
		}
		var pattern ast.Expr
		if p.at(lex.IDENT) && p.cur().Text == "_" {
			p.advance()
		} else {
			pattern, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(lex.COLON, ":"); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Cases = append(stmt.Cases, &ast.MatchCase{Pattern: pattern, Body: body, Pos: casePos})
		p.skipNewlines()
	}
	if _, err := p.expect(lex.DEDENT, "dedent"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseSimpleStmt handles one logical line ending in NEWLINE: either a
// class-scope `name = expr` declaration, or a general lvalue assignment
// (`target = expr`, `inst.port = expr`, `sig[i] = expr`).
func (p *parser) parseSimpleStmt() (ast.Stmt, error) {
	pos := p.peekPos()
	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atOp("=") {
		return nil, errors.Errorf("parse %s: expected assignment, got %q at %v", p.path, p.cur().Text, p.cur().Pos)
	}
	p.advance()
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	if name, ok := lhs.(*ast.Name); ok {
		return &ast.ClassAssignStmt{Name: name.Ident, Value: rhs, Pos: pos}, nil
	}
	return &ast.AssignStmt{Target: lhs, Value: rhs, Pos: pos}, nil
}

func (p *parser) expectStmtEnd() error {
	if p.at(lex.NEWLINE) {
		p.advance()
		return nil
	}
	if p.at(lex.EOF) || p.at(lex.DEDENT) {
		return nil
	}
	return errors.Errorf("parse %s: expected end of statement, got %q at %v", p.path, p.cur().Text, p.cur().Pos)
}
