// Package decl classifies one class-body assignment (`name = <expr>`) into
// the declaration shape it represents: a port, an internal signal, a
// constant parameter, or a submodule instance. Both the template registry's
// free-name pre-scan and the semantic pass need the exact same
// classification, so it lives here once rather than twice.
package decl

import "github.com/phdc-lang/phdc/internal/ast"

// Kind is the declaration shape recognized from a ClassAssignStmt's RHS.
type Kind int

const (
	Unknown Kind = iota
	Port
	Signal
	Parameter
	Instance
)

// Direction mirrors the In/Out constructor used in a port declaration.
type Direction int

const (
	In Direction = iota
	Out
)

// Info is the result of classifying one ClassAssignStmt value expression.
type Info struct {
	Kind Kind

	// Port and Signal:
	Dir   Direction // Port only
	Width ast.Expr  // bit width expression
	Depth ast.Expr  // memory depth expression, nil for scalar signals

	// Parameter:
	Value ast.Expr

	// Instance:
	Template string
	Kwargs   []ast.KwArg
}

// Classify inspects value, the RHS of a class-body assignment, and reports
// what kind of declaration it forms.
func Classify(value ast.Expr) Info {
	if call, ok := value.(*ast.Call); ok {
		if callee, ok := call.Callee.(*ast.Name); ok {
			switch callee.Ident {
			case "In", "Out":
				if len(call.Args) == 1 {
					w, d := bitShape(call.Args[0])
					dir := In
					if callee.Ident == "Out" {
						dir = Out
					}
					return Info{Kind: Port, Dir: dir, Width: w, Depth: d}
				}
			default:
				return Info{Kind: Instance, Template: callee.Ident, Kwargs: call.Kwargs}
			}
		}
	}
	if w, d, ok := tryBitShape(value); ok {
		return Info{Kind: Signal, Width: w, Depth: d}
	}
	return Info{Kind: Parameter, Value: value}
}

// tryBitShape recognizes `bit`, `bit[W]` and `bit[W][DEPTH]` declaration
// expressions, returning the width expression and (for memories) the depth
// expression. In `bit[W][DEPTH]`, the first bracket (closest to `bit`) is
// the memory depth and the second bracket is the element width.
func tryBitShape(e ast.Expr) (width ast.Expr, depth ast.Expr, ok bool) {
	switch v := e.(type) {
	case *ast.Name:
		if v.Ident == "bit" {
			return &ast.Num{Value: 1, Pos: v.Pos}, nil, true
		}
	case *ast.Subscript:
		if v.Lo != nil {
			return nil, nil, false // a genuine hi:lo slice, not a declaration
		}
		if base, ok := v.Value.(*ast.Name); ok && base.Ident == "bit" {
			return v.Hi, nil, true
		}
		if inner, ok := v.Value.(*ast.Subscript); ok && inner.Lo == nil {
			if base, ok := inner.Value.(*ast.Name); ok && base.Ident == "bit" {
				return v.Hi, inner.Hi, true
			}
		}
	}
	return nil, nil, false
}

func bitShape(e ast.Expr) (ast.Expr, ast.Expr) {
	if w, d, ok := tryBitShape(e); ok {
		return w, d
	}
	return e, nil
}
