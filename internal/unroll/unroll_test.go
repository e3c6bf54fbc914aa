package unroll

import (
	"testing"

	"github.com/phdc-lang/phdc/internal/ast"
)

// TestForLoopUnrollsToLiteralCopies covers testable invariant 4: a
// `range(a, b, s)` for-loop must expand into exactly the number of copies
// Python's range() semantics produce, each with the index substituted by a
// literal.
func TestForLoopUnrollsToLiteralCopies(t *testing.T) {
	body := []ast.Stmt{
		&ast.ClassAssignStmt{Name: "code", Value: &ast.Name{Ident: "i"}},
	}
	for3 := &ast.ForStmt{Index: "i", Args: []ast.Expr{&ast.Num{Value: 8}}, Body: body}

	out, err := Stmts([]ast.Stmt{for3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("got %d unrolled statements, want 8", len(out))
	}
	for i, s := range out {
		ca, ok := s.(*ast.ClassAssignStmt)
		if !ok {
			t.Fatalf("statement %d: got %T, want *ast.ClassAssignStmt", i, s)
		}
		n, ok := ca.Value.(*ast.Num)
		if !ok || n.Value != int64(i) {
			t.Fatalf("statement %d: index substituted to %v, want %d", i, ca.Value, i)
		}
	}
}

// TestNestedLoopOuterIndexVisibleToInnerBound covers a loop whose bound
// depends on the enclosing loop's index: the outer index must already be a
// literal by the time the inner loop's range() is evaluated.
func TestNestedLoopOuterIndexVisibleToInnerBound(t *testing.T) {
	inner := &ast.ForStmt{
		Index: "j",
		Args:  []ast.Expr{&ast.Name{Ident: "i"}},
		Body: []ast.Stmt{
			&ast.ClassAssignStmt{Name: "acc", Value: &ast.Name{Ident: "j"}},
		},
	}
	outer := &ast.ForStmt{Index: "i", Args: []ast.Expr{&ast.Num{Value: 3}}, Body: []ast.Stmt{inner}}

	out, err := Stmts([]ast.Stmt{outer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// i = 0, 1, 2 contribute range(i) = 0, 1, 2 inner iterations respectively.
	if len(out) != 0+1+2 {
		t.Fatalf("got %d unrolled statements, want 3", len(out))
	}
}

// TestNonStaticBoundsRejected covers a range() bound that cannot be
// evaluated as a compile-time constant.
func TestNonStaticBoundsRejected(t *testing.T) {
	loop := &ast.ForStmt{Index: "i", Args: []ast.Expr{&ast.Name{Ident: "n"}}, Body: nil}
	if _, err := Stmts([]ast.Stmt{loop}); err == nil {
		t.Fatal("expected a NonStaticBoundsError for a non-constant range() bound")
	}
}
