package parse

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/lex"
)

// parseExpr parses the full precedence chain, lowest first: or, and, not,
// comparisons, bitwise or/xor/and, shifts, add/sub, mul/div/mod, unary,
// postfix (call/attribute/subscript), atom.
func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Expr, error) {
	pos := p.peekPos()
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("or") {
		return first, nil
	}
	values := []ast.Expr{first}
	for p.atKeyword("or") {
		p.advance()
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		values = append(values, next)
	}
	return &ast.BoolOp{Op: ast.OpBoolOr, Values: values, Pos: pos}, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	pos := p.peekPos()
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("and") {
		return first, nil
	}
	values := []ast.Expr{first}
	for p.atKeyword("and") {
		p.advance()
		next, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		values = append(values, next)
	}
	return &ast.BoolOp{Op: ast.OpBoolAnd, Values: values, Pos: pos}, nil
}

func (p *parser) parseNot() (ast.Expr, error) {
	if p.atKeyword("not") {
		pos := p.advance().Pos
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: ast.OpNot, X: x, Pos: pos}, nil
	}
	return p.parseCompare()
}

var cmpOps = map[string]ast.Operator{
	"==": ast.OpEq, "!=": ast.OpNe, "<": ast.OpLt, "<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe,
}

func (p *parser) parseCompare() (ast.Expr, error) {
	x, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind == lex.OP {
		if op, ok := cmpOps[p.cur().Text]; ok {
			pos := p.advance().Pos
			y, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			return &ast.Compare{Op: op, X: x, Y: y, Pos: pos}, nil
		}
	}
	return x, nil
}

func (p *parser) parseBitOr() (ast.Expr, error) {
	x, err := p.parseBitXor()
	if err != nil {
		return nil, err
	}
	for p.atOp("|") {
		pos := p.advance().Pos
		y, err := p.parseBitXor()
		if err != nil {
			return nil, err
		}
		x = &ast.BinOp{Op: ast.OpOr, X: x, Y: y, Pos: pos}
	}
	return x, nil
}

func (p *parser) parseBitXor() (ast.Expr, error) {
	x, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.atOp("^") {
		pos := p.advance().Pos
		y, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		x = &ast.BinOp{Op: ast.OpXor, X: x, Y: y, Pos: pos}
	}
	return x, nil
}

func (p *parser) parseBitAnd() (ast.Expr, error) {
	x, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.atOp("&") {
		pos := p.advance().Pos
		y, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		x = &ast.BinOp{Op: ast.OpAnd, X: x, Y: y, Pos: pos}
	}
	return x, nil
}

func (p *parser) parseShift() (ast.Expr, error) {
	x, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == lex.OP && (p.cur().Text == "<<" || p.cur().Text == ">>") {
		op := ast.OpShl
		if p.cur().Text == ">>" {
			op = ast.OpShr
		}
		pos := p.advance().Pos
		y, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		x = &ast.BinOp{Op: op, X: x, Y: y, Pos: pos}
	}
	return x, nil
}

func (p *parser) parseAddSub() (ast.Expr, error) {
	x, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == lex.OP && (p.cur().Text == "+" || p.cur().Text == "-") {
		op := ast.OpAdd
		if p.cur().Text == "-" {
			op = ast.OpSub
		}
		pos := p.advance().Pos
		y, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		x = &ast.BinOp{Op: op, X: x, Y: y, Pos: pos}
	}
	return x, nil
}

func (p *parser) parseMulDiv() (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == lex.OP && (p.cur().Text == "*" || p.cur().Text == "/" || p.cur().Text == "%") {
		var op ast.Operator
		switch p.cur().Text {
		case "*":
			op = ast.OpMul
		case "/":
			op = ast.OpDiv
		case "%":
			op = ast.OpMod
		}
		pos := p.advance().Pos
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &ast.BinOp{Op: op, X: x, Y: y, Pos: pos}
	}
	return x, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.cur().Kind == lex.OP && (p.cur().Text == "-" || p.cur().Text == "+" || p.cur().Text == "~") {
		op := map[string]ast.Operator{"-": ast.OpNeg, "+": ast.OpPos, "~": ast.OpInvert}[p.cur().Text]
		pos := p.advance().Pos
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: op, X: x, Pos: pos}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(lex.DOT):
			p.advance()
			name, err := p.expect(lex.IDENT, "attribute name")
			if err != nil {
				return nil, err
			}
			x = &ast.Attribute{Value: x, Attr: name.Text, Pos: name.Pos}
		case p.at(lex.LBRACKET):
			pos := p.advance().Pos
			hi, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			sub := &ast.Subscript{Value: x, Hi: hi, Pos: pos}
			if p.at(lex.COLON) {
				p.advance()
				lo, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				sub.Lo = lo
			}
			if _, err := p.expect(lex.RBRACKET, "]"); err != nil {
				return nil, err
			}
			x = sub
		case p.at(lex.LPAREN):
			pos := p.advance().Pos
			call := &ast.Call{Callee: x, Pos: pos}
			for !p.at(lex.RPAREN) {
				arg, err := p.parseCallArg()
				if err != nil {
					return nil, err
				}
				switch a := arg.(type) {
				case ast.KwArg:
					call.Kwargs = append(call.Kwargs, a)
				case ast.Expr:
					call.Args = append(call.Args, a)
				}
				if p.at(lex.COMMA) {
					p.advance()
					continue
				}
				break
			}
			if _, err := p.expect(lex.RPAREN, ")"); err != nil {
				return nil, err
			}
			x = call
		default:
			return x, nil
		}
	}
}

// parseCallArg returns either an ast.Expr (positional) or an ast.KwArg
// (`name=value`).
func (p *parser) parseCallArg() (any, error) {
	if p.at(lex.IDENT) {
		save := p.pos
		name := p.advance()
		if p.atOp("=") {
			p.advance()
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return ast.KwArg{Name: name.Text, Value: val}, nil
		}
		p.pos = save
	}
	return p.parseExpr()
}

func (p *parser) parseAtom() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case lex.NUMBER:
		p.advance()
		v, err := strconv.ParseInt(strings.ReplaceAll(tok.Text, "_", ""), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s: bad integer literal at %v", p.path, tok.Pos)
		}
		return &ast.Num{Value: v, Pos: tok.Pos}, nil
	case lex.IDENT:
		p.advance()
		return &ast.Name{Ident: tok.Text, Pos: tok.Pos}, nil
	case lex.LPAREN:
		p.advance()
		if p.at(lex.RPAREN) {
			pos := p.advance().Pos
			return &ast.Tuple{Pos: pos}, nil
		}
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(lex.COMMA) {
			elts := []ast.Expr{first}
			for p.at(lex.COMMA) {
				p.advance()
				if p.at(lex.RPAREN) {
					break
				}
				next, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				elts = append(elts, next)
			}
			pos := tok.Pos
			if _, err := p.expect(lex.RPAREN, ")"); err != nil {
				return nil, err
			}
			return &ast.Tuple{Elts: elts, Pos: pos}, nil
		}
		if _, err := p.expect(lex.RPAREN, ")"); err != nil {
			return nil, err
		}
		return first, nil
	default:
		return nil, errors.Errorf("parse %s: unexpected token %q at %v", p.path, tok.Text, tok.Pos)
	}
}
