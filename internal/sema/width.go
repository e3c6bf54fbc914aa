package sema

import (
	"go/token"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/consteval"
	"github.com/phdc-lang/phdc/internal/diag"
	"github.com/phdc-lang/phdc/internal/ir"
)

// widthOf implements spec.md §4.4.2's width-inference table. lvalueWidth is
// the width already known for the assignment's target (0 if this expression
// is itself defining that width, i.e. an implicit signal declaration).
func (b *builder) widthOf(e ast.Expr, lvalueWidth int) int {
	switch v := e.(type) {
	case *ast.Num:
		return consteval.WidthForValue(v.Value)
	case *ast.Name:
		if sig := b.module.Signals[v.Ident]; sig != nil {
			return sig.Type.Width
		}
		if port := b.portByName(v.Ident); port != nil {
			return port.Type.Width
		}
		if wr := b.wireByName(v.Ident); wr != nil {
			return wr.Type.Width
		}
		return 1
	case *ast.Attribute:
		if enumWidth, ok := b.enumMemberWidth(v); ok {
			return enumWidth
		}
		return b.widthOf(v.Value, 0)
	case *ast.Subscript:
		if v.Lo != nil {
			hi, err1 := consteval.Eval(v.Hi, nil)
			lo, err2 := consteval.Eval(v.Lo, nil)
			if err1 == nil && err2 == nil {
				return int(hi-lo) + 1
			}
			return 1
		}
		return 1
	case *ast.BinOp:
		switch v.Op {
		case ast.OpAdd, ast.OpSub:
			if lvalueWidth > 0 {
				return lvalueWidth
			}
			return max(b.widthOf(v.X, 0), b.widthOf(v.Y, 0)) + 1
		default:
			return max(b.widthOf(v.X, 0), b.widthOf(v.Y, 0))
		}
	case *ast.UnaryOp:
		switch v.Op {
		case ast.OpNot:
			return 1
		default:
			return b.widthOf(v.X, 0)
		}
	case *ast.BoolOp, *ast.Compare:
		return 1
	case *ast.Tuple:
		sum := 0
		for _, elt := range v.Elts {
			sum += b.widthOf(elt, 0)
		}
		return sum
	default:
		return 1
	}
}

// enumMemberWidth recognizes an EnumName.MEMBER reference and returns the
// enum's declared width.
func (b *builder) enumMemberWidth(a *ast.Attribute) (int, bool) {
	name, ok := a.Value.(*ast.Name)
	if !ok {
		return 0, false
	}
	for _, e := range b.module.Enums {
		if e.Name != name.Ident {
			continue
		}
		for _, m := range e.Members {
			if m.Name == a.Attr {
				return e.Width, true
			}
		}
	}
	return 0, false
}

func (b *builder) enumOf(e ast.Expr) *ir.EnumType {
	switch v := e.(type) {
	case *ast.Attribute:
		if name, ok := v.Value.(*ast.Name); ok {
			for _, en := range b.module.Enums {
				if en.Name == name.Ident {
					return en
				}
			}
		}
	case *ast.Name:
		if sig := b.module.Signals[v.Ident]; sig != nil {
			return sig.Enum
		}
	}
	return nil
}

// checkBounds walks e recursively, reporting NonStaticExpression for any
// hi:lo slice whose bounds are not compile-time constants, and
// IndexOutOfBounds for any constant-index subscript whose base has a known
// width or memory depth.
func (b *builder) checkBounds(e ast.Expr) {
	switch v := e.(type) {
	case *ast.Subscript:
		b.checkBounds(v.Value)
		if v.Lo != nil {
			_, err1 := consteval.Eval(v.Hi, nil)
			_, err2 := consteval.Eval(v.Lo, nil)
			if err1 != nil || err2 != nil {
				b.reporter.Errorf(diag.NonStaticExpression, b.moduleName, "", v.Pos,
					"slice bounds are not compile-time constants")
				b.failed = true
			}
		}
		bound, boundOK := b.boundsOf(v.Value)
		if boundOK {
			if v.Lo != nil {
				hi, err1 := consteval.Eval(v.Hi, nil)
				lo, err2 := consteval.Eval(v.Lo, nil)
				if err1 == nil && err2 == nil {
					b.checkIndex(hi, bound, v.Pos)
					b.checkIndex(lo, bound, v.Pos)
				}
			} else if k, err := consteval.Eval(v.Hi, nil); err == nil {
				b.checkIndex(k, bound, v.Pos)
			}
		}
	case *ast.BinOp:
		b.checkBounds(v.X)
		b.checkBounds(v.Y)
	case *ast.UnaryOp:
		b.checkBounds(v.X)
	case *ast.Compare:
		b.checkBounds(v.X)
		b.checkBounds(v.Y)
	case *ast.BoolOp:
		for _, x := range v.Values {
			b.checkBounds(x)
		}
	case *ast.Tuple:
		for _, x := range v.Elts {
			b.checkBounds(x)
		}
	case *ast.Attribute:
		b.checkBounds(v.Value)
	}
}

func (b *builder) checkIndex(k int64, bound int, pos token.Pos) {
	if k < 0 || int(k) >= bound {
		b.reporter.Errorf(diag.IndexOutOfBounds, b.moduleName, "", pos,
			"index %d is out of bounds for a %d-bit value", k, bound)
		b.failed = true
	}
}

// boundsOf returns the declared width (for a scalar signal/port used as
// signal[k]) that a constant index must fall within.
func (b *builder) boundsOf(e ast.Expr) (int, bool) {
	name, ok := e.(*ast.Name)
	if !ok {
		return 0, false
	}
	if sig := b.module.Signals[name.Ident]; sig != nil {
		if sig.Type.IsMemory() {
			return sig.Type.Shape[0], true
		}
		return sig.Type.Width, true
	}
	if port := b.portByName(name.Ident); port != nil {
		return port.Type.Width, true
	}
	return 0, false
}

