package template

import (
	"testing"

	"github.com/phdc-lang/phdc/internal/ast"
)

func bitCall(width ast.Expr) *ast.Call {
	return &ast.Call{Callee: &ast.Name{Ident: "In"}, Args: []ast.Expr{
		&ast.Subscript{Value: &ast.Name{Ident: "bit"}, Hi: width},
	}}
}

// TestFreeNamesSkipsOwnParameters covers a template whose port width is
// bound by its own class-scope constant: WIDTH is not free.
func TestFreeNamesSkipsOwnParameters(t *testing.T) {
	def := &ast.ClassDef{Body: []ast.Stmt{
		&ast.ClassAssignStmt{Name: "WIDTH", Value: &ast.Num{Value: 8}},
		&ast.ClassAssignStmt{Name: "data", Value: bitCall(&ast.Name{Ident: "WIDTH"})},
	}}
	if got := FreeNames(def); len(got) != 0 {
		t.Fatalf("expected no free names, got %v", got)
	}
}

// TestFreeNamesFindsInstantiationParameter covers a template whose port
// width depends on a name never assigned in the class body: it must be
// instantiated with `Template(WIDTH=N)`.
func TestFreeNamesFindsInstantiationParameter(t *testing.T) {
	def := &ast.ClassDef{Body: []ast.Stmt{
		&ast.ClassAssignStmt{Name: "data", Value: bitCall(&ast.Name{Ident: "WIDTH"})},
	}}
	got := FreeNames(def)
	if len(got) != 1 || got[0] != "WIDTH" {
		t.Fatalf("got %v, want [WIDTH]", got)
	}
}

func TestEmittedNameConcreteModule(t *testing.T) {
	if got := EmittedName("Counter", nil, nil); got != "Counter" {
		t.Fatalf("got %q, want Counter", got)
	}
}

func TestEmittedNameMonomorphized(t *testing.T) {
	got := EmittedName("Adder", []string{"WIDTH"}, map[string]int64{"WIDTH": 8})
	if got != "Adder_WIDTH8" {
		t.Fatalf("got %q, want Adder_WIDTH8", got)
	}
}
