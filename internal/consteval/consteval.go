// Package consteval implements spec.md §4.3's compile-time expression
// evaluator: parameters, widths, loop bounds and slice bounds all fold down
// to an int64 through this evaluator. Values are carried as go/constant.Value
// rather than a hand-rolled bignum, the same technique the reference
// compiler's semantic checker uses for compile-time channel-capacity
// analysis, generalized here from "one constant" to "a small expression
// language over named constants."
package consteval

import (
	"go/constant"
	"go/token"

	"github.com/phdc-lang/phdc/internal/ast"
)

// NonStaticError reports that an expression could not be evaluated as a
// compile-time constant, per spec.md §7 NonStaticExpression.
type NonStaticError struct {
	Pos     token.Pos
	Message string
}

func (e *NonStaticError) Error() string { return e.Message }

// Scope binds names (parameters, loop indices) to known integer values.
type Scope map[string]int64

// Eval evaluates expr under scope, returning its integer value or a
// *NonStaticError.
func Eval(expr ast.Expr, scope Scope) (int64, error) {
	v, err := eval(expr, scope)
	if err != nil {
		return 0, err
	}
	i, ok := constant.Int64Val(v)
	if !ok {
		return 0, &NonStaticError{Pos: expr.Position(), Message: "constant does not fit in an int64"}
	}
	return i, nil
}

func eval(expr ast.Expr, scope Scope) (constant.Value, error) {
	switch e := expr.(type) {
	case *ast.Num:
		return constant.MakeInt64(e.Value), nil
	case *ast.Name:
		v, ok := scope[e.Ident]
		if !ok {
			return nil, &NonStaticError{Pos: e.Pos, Message: "name " + e.Ident + " is not a compile-time constant in this scope"}
		}
		return constant.MakeInt64(v), nil
	case *ast.UnaryOp:
		x, err := eval(e.X, scope)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case ast.OpNeg:
			return constant.UnaryOp(token.SUB, x, 0), nil
		case ast.OpPos:
			return x, nil
		case ast.OpInvert:
			// bitwise not over an unbounded-width integer has no fixed
			// meaning; spec.md restricts ~ to fixed-width hardware values,
			// which this evaluator never manufactures, so reject it here.
			return nil, &NonStaticError{Pos: e.Pos, Message: "~ is not a supported constant-expression operator"}
		default:
			return nil, &NonStaticError{Pos: e.Pos, Message: "unsupported unary operator in constant expression"}
		}
	case *ast.BinOp:
		x, err := eval(e.X, scope)
		if err != nil {
			return nil, err
		}
		y, err := eval(e.Y, scope)
		if err != nil {
			return nil, err
		}
		return evalBin(e, x, y)
	case *ast.Compare:
		x, err := eval(e.X, scope)
		if err != nil {
			return nil, err
		}
		y, err := eval(e.Y, scope)
		if err != nil {
			return nil, err
		}
		return evalCompare(e, x, y)
	default:
		return nil, &NonStaticError{Pos: expr.Position(), Message: "expression is not a compile-time constant"}
	}
}

func evalBin(e *ast.BinOp, x, y constant.Value) (constant.Value, error) {
	switch e.Op {
	case ast.OpAdd:
		return constant.BinaryOp(x, token.ADD, y), nil
	case ast.OpSub:
		return constant.BinaryOp(x, token.SUB, y), nil
	case ast.OpMul:
		return constant.BinaryOp(x, token.MUL, y), nil
	case ast.OpDiv:
		if isZero(y) {
			return nil, &NonStaticError{Pos: e.Pos, Message: "division by zero in constant expression"}
		}
		return constant.BinaryOp(x, token.QUO, y), nil
	case ast.OpMod:
		if isZero(y) {
			return nil, &NonStaticError{Pos: e.Pos, Message: "modulo by zero in constant expression"}
		}
		return constant.BinaryOp(x, token.REM, y), nil
	case ast.OpAnd:
		return constant.BinaryOp(x, token.AND, y), nil
	case ast.OpOr:
		return constant.BinaryOp(x, token.OR, y), nil
	case ast.OpXor:
		return constant.BinaryOp(x, token.XOR, y), nil
	case ast.OpShl:
		n, ok := constant.Uint64Val(y)
		if !ok {
			return nil, &NonStaticError{Pos: e.Pos, Message: "shift amount is not a non-negative constant"}
		}
		return constant.Shift(x, token.SHL, uint(n)), nil
	case ast.OpShr:
		n, ok := constant.Uint64Val(y)
		if !ok {
			return nil, &NonStaticError{Pos: e.Pos, Message: "shift amount is not a non-negative constant"}
		}
		return constant.Shift(x, token.SHR, uint(n)), nil
	default:
		return nil, &NonStaticError{Pos: e.Pos, Message: "unsupported binary operator in constant expression"}
	}
}

func evalCompare(e *ast.Compare, x, y constant.Value) (constant.Value, error) {
	var tok token.Token
	switch e.Op {
	case ast.OpEq:
		tok = token.EQL
	case ast.OpNe:
		tok = token.NEQ
	case ast.OpLt:
		tok = token.LSS
	case ast.OpLe:
		tok = token.LEQ
	case ast.OpGt:
		tok = token.GTR
	case ast.OpGe:
		tok = token.GEQ
	default:
		return nil, &NonStaticError{Pos: e.Pos, Message: "unsupported comparison in constant expression"}
	}
	if constant.Compare(x, tok, y) {
		return constant.MakeInt64(1), nil
	}
	return constant.MakeInt64(0), nil
}

func isZero(v constant.Value) bool {
	return constant.Sign(v) == 0
}

// Range evaluates a `range(a)`, `range(a, b)` or `range(a, b, step)` call's
// arguments under scope and returns the resulting (possibly empty) sequence
// of int64 index values, matching Python's range() semantics.
func Range(args []ast.Expr, scope Scope, pos token.Pos) ([]int64, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		v, err := Eval(args[0], scope)
		if err != nil {
			return nil, err
		}
		stop = v
	case 2:
		a, err := Eval(args[0], scope)
		if err != nil {
			return nil, err
		}
		b, err := Eval(args[1], scope)
		if err != nil {
			return nil, err
		}
		start, stop = a, b
	case 3:
		a, err := Eval(args[0], scope)
		if err != nil {
			return nil, err
		}
		b, err := Eval(args[1], scope)
		if err != nil {
			return nil, err
		}
		c, err := Eval(args[2], scope)
		if err != nil {
			return nil, err
		}
		start, stop, step = a, b, c
	default:
		return nil, &NonStaticError{Pos: pos, Message: "range() takes 1 to 3 arguments"}
	}
	if step == 0 {
		return nil, &NonStaticError{Pos: pos, Message: "range() step must not be zero"}
	}
	var out []int64
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
	} else {
		for i := start; i > stop; i += step {
			out = append(out, i)
		}
	}
	return out, nil
}

// WidthForValue returns ceil(log2(v+1)) with a minimum of 1, per spec.md §4.6
// literal-rendering fallback rule.
func WidthForValue(v int64) int {
	if v <= 0 {
		return 1
	}
	width := 0
	for x := v; x > 0; x >>= 1 {
		width++
	}
	return width
}
