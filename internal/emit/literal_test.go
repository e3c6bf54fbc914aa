package emit

import (
	"strings"
	"testing"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/ir"
)

// TestLiteralWidthFallback locks in the resolution of the "literal-zero
// width" open question: a literal sized from its assignment lvalue keeps
// that width, and only a literal with no lvalue in scope (a bare
// concatenation element) falls back to its own smallest representation.
func TestLiteralWidthFallback(t *testing.T) {
	if got := sizedLiteral(0, 8); got != "8'd0" {
		t.Errorf("sizedLiteral(0, 8) = %q, want 8'd0", got)
	}
	if got := sizedLiteral(0, 0); got != "1'd0" {
		t.Errorf("sizedLiteral(0, 0) = %q, want 1'd0", got)
	}
	if got := sizedLiteral(5, 0); got != "3'd5" {
		t.Errorf("sizedLiteral(5, 0) = %q, want 3'd5", got)
	}
}

// TestMemoryElementWriteSizesFromLvalue covers a memory-element write
// (`mem[i] = 0`): the element width is one entry of the memory's type
// (8 here), not the memory's own declared depth, and a clean
// reimplementation must not fall back to the buggy always-1-bit-literal
// behavior for it.
func TestMemoryElementWriteSizesFromLvalue(t *testing.T) {
	m := &ir.Module{
		Signals: map[string]*ir.Signal{
			"mem": {Name: "mem", Type: ir.SignalType{Width: 8, Shape: []int{16}}},
		},
	}
	target := &ast.Subscript{
		Value: &ast.Name{Ident: "mem"},
		Hi:    &ast.Name{Ident: "i"},
	}
	w := lvalueWidth(m, target)
	if w != 8 {
		t.Fatalf("lvalueWidth for a memory-element subscript = %d, want 8 (the element's own width)", w)
	}
}

// TestRenderRHSConcatElementsSizeIndependently covers a concatenation RHS:
// each literal element is sized to its own smallest width regardless of the
// lvalue it is ultimately assigned into.
func TestRenderRHSConcatElementsSizeIndependently(t *testing.T) {
	tuple := &ast.Tuple{Elts: []ast.Expr{
		&ast.Num{Value: 1},
		&ast.Num{Value: 255},
	}}
	got := renderRHS(tuple, 16)
	want := "{1'd1, 8'd255}"
	if got != want {
		t.Fatalf("renderRHS(concat, 16) = %q, want %q", got, want)
	}
	if !strings.Contains(got, "{") {
		t.Fatalf("expected a brace-delimited concatenation, got %q", got)
	}
}
