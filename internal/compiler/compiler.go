// Package compiler orchestrates one compilation: parse each source file,
// collect its module definitions, monomorphize and elaborate every
// concrete module through the semantic pass, run the lowering and advisory
// passes, and emit SystemVerilog. It implements the driver-interface
// contract of spec.md §4.7 as a library entry point rather than inlining
// the pipeline in cmd/phdc, following the reference compiler's own
// prepareProgram/validateProgram/BuildDesign/runDefaultPasses/emit shape in
// cmd/mygo/main.go — restructured here so both the CLI and tests share one
// orchestrator.
package compiler

import (
	"go/token"
	"sort"

	"github.com/phdc-lang/phdc/internal/collect"
	"github.com/phdc-lang/phdc/internal/diag"
	"github.com/phdc-lang/phdc/internal/emit"
	"github.com/phdc-lang/phdc/internal/ir"
	"github.com/phdc-lang/phdc/internal/lower"
	"github.com/phdc-lang/phdc/internal/parse"
	"github.com/phdc-lang/phdc/internal/passes"
	"github.com/phdc-lang/phdc/internal/sema"
	"github.com/phdc-lang/phdc/internal/template"
)

// Unit is one emitted SystemVerilog file: Name+".sv" written under the
// driver's target directory.
type Unit struct {
	Path   string // source .phd file the module was declared in
	Name   string // emitted module name
	Text   string
	Module *ir.Module // the fully classified descriptor Text was rendered from
}

// Sources maps each input file's path to its source text, the driver's half
// of the spec.md §4.7 contract.
type Sources map[string]string

// Compile compiles every source file independently — each input file is its
// own compilation unit per spec.md §4.7 — sharing one token.FileSet so
// diagnostic positions order consistently across files, and returns every
// emitted unit together with the accumulated diagnostic reporter. trace, if
// non-nil, receives the driver's -v elaboration trace as each module clears
// a pipeline stage; omit it to compile silently.
func Compile(sources Sources, trace diag.TraceFunc) ([]Unit, *diag.Reporter) {
	fset := token.NewFileSet()
	reporter := diag.NewReporter(fset)
	reporter.SetTrace(trace)

	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var units []Unit
	for _, p := range paths {
		units = append(units, CompileFile(fset, p, sources[p], reporter)...)
	}
	return units, reporter
}

// CompileFile compiles one source file, returning zero or more emitted
// units: one per distinct monomorphization, plus one per concrete module,
// per spec.md §4.7. A parse failure aborts the whole file. A semantic
// failure aborts only the offending class — and every monomorphization
// produced from it, since the semantic pass scopes its diagnostics to the
// declaring class rather than to each individual instantiation — leaving
// unrelated sibling modules in the same file free to still emit, per the
// fail-fast granularity spec.md §7 requires.
func CompileFile(fset *token.FileSet, path, src string, reporter *diag.Reporter) []Unit {
	pkg, err := parse.Parse(fset, path, src)
	if err != nil {
		reporter.Errorf(diag.ParseError, path, "", token.NoPos, "%v", err)
		return nil
	}

	defs := collect.Collect(pkg, reporter)
	registry := template.NewRegistry(defs, sema.Build, reporter)

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if registry.IsTemplate(name) {
			continue
		}
		registry.Elaborate(name, map[string]int64{}, defs[name].Def.Pos)
	}

	var units []Unit
	for _, m := range registry.Modules() {
		class := registry.DeclaringClass(m.Name)
		if reporter.HasErrors(class) {
			continue
		}
		lower.Module(m, m.Name, reporter)
		passes.LatchAvoidance(m, m.Name, reporter)
		units = append(units, Unit{Path: path, Name: m.Name, Text: emit.Module(m), Module: m})
		reporter.Trace(m.Name, "emitted")
	}
	return units
}
