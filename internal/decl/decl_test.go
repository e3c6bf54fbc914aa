package decl

import (
	"testing"

	"github.com/phdc-lang/phdc/internal/ast"
)

// TestClassifyMemoryShapeWidthAndDepthAreNotSwapped covers `bit[W][DEPTH]`:
// the first bracket (closest to `bit`) is the memory depth and the second
// is the element width, e.g. `bit[8][16]` is 16 elements of 8 bits each.
func TestClassifyMemoryShapeWidthAndDepthAreNotSwapped(t *testing.T) {
	value := &ast.Subscript{
		Value: &ast.Subscript{
			Value: &ast.Name{Ident: "bit"},
			Hi:    &ast.Num{Value: 8},
		},
		Hi: &ast.Num{Value: 16},
	}
	info := Classify(value)
	if info.Kind != Signal {
		t.Fatalf("Kind = %v, want Signal", info.Kind)
	}
	width, ok := info.Width.(*ast.Num)
	if !ok || width.Value != 8 {
		t.Fatalf("Width = %#v, want the literal 8 (element width)", info.Width)
	}
	depth, ok := info.Depth.(*ast.Num)
	if !ok || depth.Value != 16 {
		t.Fatalf("Depth = %#v, want the literal 16 (memory depth)", info.Depth)
	}
}

// TestClassifyScalarBitShape covers plain `bit` and `bit[W]` shapes, which
// share tryBitShape with the memory case and must stay unaffected by it.
func TestClassifyScalarBitShape(t *testing.T) {
	bare := Classify(&ast.Name{Ident: "bit"})
	if bare.Kind != Signal {
		t.Fatalf("Kind = %v, want Signal", bare.Kind)
	}
	if w, ok := bare.Width.(*ast.Num); !ok || w.Value != 1 {
		t.Fatalf("Width = %#v, want the literal 1", bare.Width)
	}
	if bare.Depth != nil {
		t.Fatalf("Depth = %#v, want nil for a scalar signal", bare.Depth)
	}

	sized := Classify(&ast.Subscript{Value: &ast.Name{Ident: "bit"}, Hi: &ast.Num{Value: 8}})
	if sized.Kind != Signal {
		t.Fatalf("Kind = %v, want Signal", sized.Kind)
	}
	if w, ok := sized.Width.(*ast.Num); !ok || w.Value != 8 {
		t.Fatalf("Width = %#v, want the literal 8", sized.Width)
	}
	if sized.Depth != nil {
		t.Fatalf("Depth = %#v, want nil for a scalar signal", sized.Depth)
	}
}
