package sema

import (
	"go/token"
	"testing"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/collect"
	"github.com/phdc-lang/phdc/internal/diag"
	"github.com/phdc-lang/phdc/internal/ir"
	"github.com/phdc-lang/phdc/internal/parse"
)

// noInstances satisfies template.Elaborator for modules that declare no
// submodule instances; Build never calls it in that case.
type noInstances struct{}

func (noInstances) Elaborate(name string, bindings map[string]int64, pos token.Pos) (*ir.Module, error) {
	panic("Elaborate called with no submodule instances declared")
}

func buildOne(t *testing.T, src string) (*ir.Module, *diag.Reporter) {
	t.Helper()
	fset := token.NewFileSet()
	pkg, err := parse.Parse(fset, "test.phd", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	reporter := diag.NewReporter(fset)
	defs := collect.Collect(pkg, reporter)
	if reporter.HasErrors("") {
		t.Fatalf("collect diagnostics: %v", reporter.Diagnostics())
	}
	if len(defs) != 1 {
		t.Fatalf("expected exactly 1 module definition, got %d", len(defs))
	}
	var def *collect.Definition
	for _, d := range defs {
		def = d
	}
	m, err := Build(def, map[string]int64{}, def.Name, noInstances{}, reporter)
	if err != nil {
		t.Fatalf("Build error: %v (diagnostics: %v)", err, reporter.Diagnostics())
	}
	return m, reporter
}

// TestDefaultValueAssignmentIsNotMistakenForAParameter covers the ambiguity
// between a class-scope declaration and a default-value reassignment to an
// already-declared port: `code = 0` right below `code = Out(bit[3])` must
// land in behavior, not be swallowed as a bogus constant-parameter
// declaration.
func TestDefaultValueAssignmentIsNotMistakenForAParameter(t *testing.T) {
	src := "class Latch(Module):\n" +
		"    en = In(bit)\n" +
		"    code = Out(bit[3])\n" +
		"\n" +
		"    code = 0\n"
	m, _ := buildOne(t, src)
	if len(m.Params) != 0 {
		t.Fatalf("expected no parameters, got %v", m.Params)
	}
	if len(m.Comb) != 1 {
		t.Fatalf("expected 1 combinational statement, got %d: %v", len(m.Comb), m.Comb)
	}
	assign, ok := m.Comb[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.AssignStmt", m.Comb[0])
	}
	if name, ok := assign.Target.(*ast.Name); !ok || name.Ident != "code" {
		t.Fatalf("assignment target = %#v, want code", assign.Target)
	}
}

// TestNestedBareNameAssignmentIsClassified covers a behavioral assignment
// nested inside an if body: the parser produces the same node shape as a
// class-scope declaration there too, and it must still be classified,
// bounds-checked, and folded into the module's combinational statements.
func TestNestedBareNameAssignmentIsClassified(t *testing.T) {
	src := "class Mux(Module):\n" +
		"    sel = In(bit)\n" +
		"    out = Out(bit)\n" +
		"\n" +
		"    out = 0\n" +
		"    if sel:\n" +
		"        out = 1\n"
	m, _ := buildOne(t, src)
	if len(m.Comb) != 2 {
		t.Fatalf("expected 2 combinational statements, got %d: %v", len(m.Comb), m.Comb)
	}
	ifStmt, ok := m.Comb[1].(*ast.IfStmt)
	if !ok {
		t.Fatalf("got %T, want *ast.IfStmt", m.Comb[1])
	}
	if len(ifStmt.Body) != 1 {
		t.Fatalf("expected 1 statement inside the if body, got %d: %v", len(ifStmt.Body), ifStmt.Body)
	}
	inner, ok := ifStmt.Body[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("nested statement stayed a %T instead of being normalized to *ast.AssignStmt", ifStmt.Body[0])
	}
	if name, ok := inner.Target.(*ast.Name); !ok || name.Ident != "out" {
		t.Fatalf("nested assignment target = %#v, want out", inner.Target)
	}
}
