package collect

import (
	"go/token"
	"testing"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/diag"
)

func TestCollectKeepsOnlyModuleSubclasses(t *testing.T) {
	pkg := &ast.Package{Classes: []*ast.ClassDef{
		{Name: "Counter", Bases: []string{"Module"}},
		{Name: "Color", Bases: []string{"Enum"}},
		{Name: "Helper"},
	}}
	reporter := diag.NewReporter(token.NewFileSet())
	defs := Collect(pkg, reporter)

	if _, ok := defs["Counter"]; !ok {
		t.Error("expected Counter to be collected")
	}
	if _, ok := defs["Color"]; ok {
		t.Error("a top-level Enum subclass should not be collected as a module")
	}
	if _, ok := defs["Helper"]; ok {
		t.Error("a class with no recognized base should not be collected")
	}
	if reporter.HasErrors("") {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
}

func TestCollectFlagsDuplicateModuleName(t *testing.T) {
	pkg := &ast.Package{Classes: []*ast.ClassDef{
		{Name: "Counter", Bases: []string{"Module"}, Pos: 1},
		{Name: "Counter", Bases: []string{"Module"}, Pos: 2},
	}}
	reporter := diag.NewReporter(token.NewFileSet())
	defs := Collect(pkg, reporter)

	if len(defs) != 1 {
		t.Fatalf("expected the first definition to win, got %d entries", len(defs))
	}
	if defs["Counter"].Def.Pos != 1 {
		t.Errorf("expected the first-seen definition to be kept, got Pos=%v", defs["Counter"].Def.Pos)
	}
	if !reporter.HasErrors("Counter") {
		t.Fatal("expected a DuplicateDefinition diagnostic scoped to Counter")
	}
}
