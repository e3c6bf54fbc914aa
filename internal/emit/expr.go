package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/consteval"
	"github.com/phdc-lang/phdc/internal/ir"
)

// renderRHS renders an assignment's right-hand side. A bare literal takes
// its width from the lvalue it is being assigned into (lvalueWidth, 0 when
// unknown); a tuple renders as a concatenation with each element sized on
// its own; anything else falls through to the generic expression renderer,
// where literals appear as plain decimal (SystemVerilog gives a bare
// integer literal in an arithmetic expression its usual default width).
func renderRHS(value ast.Expr, lvalueWidth int) string {
	switch v := value.(type) {
	case *ast.Num:
		return sizedLiteral(v.Value, lvalueWidth)
	case *ast.Tuple:
		return renderConcat(v)
	default:
		return renderExpr(value)
	}
}

func renderConcat(t *ast.Tuple) string {
	parts := make([]string, len(t.Elts))
	for i, e := range t.Elts {
		parts[i] = renderConcatElem(e)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// renderConcatElem sizes a literal element to its own smallest width, since
// a concatenation's result width is the sum of each element's own width.
func renderConcatElem(e ast.Expr) string {
	if n, ok := e.(*ast.Num); ok {
		return sizedLiteral(n.Value, 0)
	}
	return renderExpr(e)
}

func sizedLiteral(v int64, lvalueWidth int) string {
	w := lvalueWidth
	if w <= 0 {
		w = consteval.WidthForValue(v)
	}
	return fmt.Sprintf("%d'd%d", w, v)
}

// renderExpr renders e for use inside a larger expression or a statement
// condition. Compound node kinds (BinOp, UnaryOp, BoolOp, Compare) are
// always wrapped in parentheses; atomic ones (Num, Name, enum member
// Attribute, Subscript) never are.
func renderExpr(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.Num:
		return strconv.FormatInt(v.Value, 10)
	case *ast.Name:
		return v.Ident
	case *ast.Attribute:
		// By this stage every surviving Attribute is an enum member
		// reference (submodule port attributes were consumed by sema);
		// bare enum literals are used at both expression and case-label
		// positions.
		return v.Attr
	case *ast.Subscript:
		if v.Lo != nil {
			return fmt.Sprintf("%s[%s:%s]", renderExpr(v.Value), renderExpr(v.Hi), renderExpr(v.Lo))
		}
		return fmt.Sprintf("%s[%s]", renderExpr(v.Value), renderExpr(v.Hi))
	case *ast.BinOp:
		return "(" + renderExpr(v.X) + " " + binOpText(v.Op) + " " + renderExpr(v.Y) + ")"
	case *ast.UnaryOp:
		return "(" + unaryOpText(v.Op) + renderExpr(v.X) + ")"
	case *ast.BoolOp:
		op := " " + boolOpText(v.Op) + " "
		parts := make([]string, len(v.Values))
		for i, x := range v.Values {
			parts[i] = renderExpr(x)
		}
		return "(" + strings.Join(parts, op) + ")"
	case *ast.Compare:
		return "(" + renderExpr(v.X) + " " + cmpOpText(v.Op) + " " + renderExpr(v.Y) + ")"
	case *ast.Tuple:
		return renderConcat(v)
	default:
		return fmt.Sprintf("/* unsupported expression %T */", e)
	}
}

func binOpText(op ast.Operator) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpAnd:
		return "&"
	case ast.OpOr:
		return "|"
	case ast.OpXor:
		return "^"
	case ast.OpShl:
		return "<<"
	case ast.OpShr:
		return ">>"
	default:
		return "?"
	}
}

func unaryOpText(op ast.Operator) string {
	switch op {
	case ast.OpNeg:
		return "-"
	case ast.OpPos:
		return "+"
	case ast.OpInvert:
		return "~"
	case ast.OpNot:
		return "!"
	default:
		return "?"
	}
}

func boolOpText(op ast.Operator) string {
	if op == ast.OpBoolAnd {
		return "&&"
	}
	return "||"
}

func cmpOpText(op ast.Operator) string {
	switch op {
	case ast.OpEq:
		return "=="
	case ast.OpNe:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpLe:
		return "<="
	case ast.OpGt:
		return ">"
	case ast.OpGe:
		return ">="
	default:
		return "?"
	}
}

// lvalueWidth resolves the declared width driving an assignment target, so
// a literal RHS can be sized correctly: a plain name looks up its signal,
// port, or wire; a slice looks up its own span; a single index into a
// memory selects one element (the element's own width); a single index
// into a scalar signal (a bit select) is always 1 bit wide.
func lvalueWidth(m *ir.Module, target ast.Expr) int {
	switch v := target.(type) {
	case *ast.Name:
		return namedWidth(m, v.Ident)
	case *ast.Subscript:
		if v.Lo == nil {
			if name, ok := v.Value.(*ast.Name); ok {
				if sig := m.Signals[name.Ident]; sig != nil && sig.Type.IsMemory() {
					return sig.Type.Width
				}
			}
			return 1
		}
		hi, errHi := consteval.Eval(v.Hi, nil)
		lo, errLo := consteval.Eval(v.Lo, nil)
		if errHi != nil || errLo != nil {
			return 0
		}
		return int(hi-lo) + 1
	default:
		return 0
	}
}

func namedWidth(m *ir.Module, ident string) int {
	if sig := m.Signals[ident]; sig != nil {
		return sig.Type.Width
	}
	for _, p := range m.Ports {
		if p.Name == ident {
			return p.Type.Width
		}
	}
	for _, w := range m.Wires {
		if w.Name == ident {
			return w.Type.Width
		}
	}
	return 0
}
