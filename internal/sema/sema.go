// Package sema implements the Semantic Pass of spec.md §4.4: it builds one
// module's symbol table (ports, signals, parameters, enums, submodule
// instances), classifies every assignment as combinational or
// sequential-with-edges, checks constant array indices, and wires submodule
// instances through auto-declared intermediate signals. Build is the single
// entry point the template registry calls to monomorphize one instantiation.
package sema

import (
	"fmt"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/collect"
	"github.com/phdc-lang/phdc/internal/consteval"
	"github.com/phdc-lang/phdc/internal/decl"
	"github.com/phdc-lang/phdc/internal/diag"
	"github.com/phdc-lang/phdc/internal/ir"
	"github.com/phdc-lang/phdc/internal/subst"
	"github.com/phdc-lang/phdc/internal/template"
	"github.com/phdc-lang/phdc/internal/unroll"
)

// builder accumulates one module's ir.Module while walking its (already
// parameter-substituted) class body.
type builder struct {
	def      *collect.Definition
	moduleName string
	reporter *diag.Reporter
	elab     template.Elaborator

	module       *ir.Module
	instanceMods map[string]*ir.Module
	classOf      map[string]classInfo
	seqIndex     map[string]int

	behavior []ast.Stmt
	comb     []ast.Stmt
	failed   bool
}

// Build elaborates def bound with bindings (a template's free parameters;
// empty for a concrete module) into a fully classified, wired ir.Module
// named emittedName. It satisfies template.Builder.
func Build(def *collect.Definition, bindings map[string]int64, emittedName string, elab template.Elaborator, reporter *diag.Reporter) (*ir.Module, error) {
	b := &builder{
		def:        def,
		moduleName: def.Name,
		reporter:   reporter,
		elab:       elab,
		module: &ir.Module{
			Name:    emittedName,
			Signals: map[string]*ir.Signal{},
			Source:  def.Def.Pos,
		},
		instanceMods: map[string]*ir.Module{},
		classOf:      map[string]classInfo{},
		seqIndex:     map[string]int{},
	}

	final, err := b.resolveOwnParams(bindings)
	if err != nil {
		return nil, err
	}
	body := subst.Stmts(def.Def.Body, final)

	b.processDeclarations(body)
	if b.failed || reporter.HasErrors(b.moduleName) {
		return nil, fmt.Errorf("module %q failed semantic analysis", b.moduleName)
	}
	reporter.Trace(emittedName, "monomorphized")

	unrolled, err := unroll.Stmts(b.behavior)
	if err != nil {
		reporter.Errorf(diag.NonStaticExpression, b.moduleName, "", def.Def.Pos, "%v", err)
		return nil, err
	}
	reporter.Trace(emittedName, "unrolled")

	b.walkTop(unrolled, nil)
	if b.failed || reporter.HasErrors(b.moduleName) {
		return nil, fmt.Errorf("module %q failed semantic analysis", b.moduleName)
	}
	reporter.Trace(emittedName, "classified")

	b.module.Comb = b.comb
	return b.module, nil
}

// resolveOwnParams evaluates the module's own `name = <const-expr>`
// declarations left to right, in a scope seeded with the (already resolved)
// template bindings, and returns the full name -> value map to substitute
// throughout the body before anything else runs. A bare `name = expr` at
// class scope only declares a parameter the first time name is used; the
// grammar reuses that same shape for default-value behavioral assignments
// to an already-declared port or signal (spec.md §8 scenario 1's
// `code = 0; valid = 0`), so names already declared as a port, signal, or
// instance elsewhere in the body are excluded here and left for
// processDeclarations to route into behavior instead.
func (b *builder) resolveOwnParams(bindings map[string]int64) (subst.Bindings, error) {
	entities := declaredEntityNames(b.def.Def.Body)
	scope := consteval.Scope{}
	for k, v := range bindings {
		scope[k] = v
	}
	for _, s := range b.def.Def.Body {
		ca, ok := s.(*ast.ClassAssignStmt)
		if !ok {
			continue
		}
		if entities[ca.Name] {
			continue
		}
		if decl.Classify(ca.Value).Kind != decl.Parameter {
			continue
		}
		v, err := consteval.Eval(ca.Value, scope)
		if err != nil {
			b.reporter.Errorf(diag.NonStaticExpression, b.moduleName, ca.Name, ca.Pos, "parameter %q: %v", ca.Name, err)
			b.failed = true
			continue
		}
		scope[ca.Name] = v
		b.module.Params = append(b.module.Params, &ir.Parameter{Name: ca.Name, Value: v})
	}
	if b.failed {
		return nil, fmt.Errorf("module %q has unresolved parameters", b.moduleName)
	}
	out := make(subst.Bindings, len(scope))
	for k, v := range scope {
		out[k] = v
	}
	return out, nil
}

// processDeclarations walks the fully substituted body once, populating the
// symbol table and collecting every non-declaration statement into
// b.behavior for the unroller and classifier.
func (b *builder) processDeclarations(body []ast.Stmt) {
	own := map[string]bool{}
	for _, p := range b.module.Params {
		own[p.Name] = true
	}
	for _, s := range body {
		switch st := s.(type) {
		case *ast.NestedClassStmt:
			b.processEnum(st.Def)
		case *ast.ClassAssignStmt:
			if own[st.Name] {
				continue
			}
			info := decl.Classify(st.Value)
			switch info.Kind {
			case decl.Port:
				b.processPort(st, info)
			case decl.Signal:
				b.processSignal(st, info)
			case decl.Instance:
				b.processInstance(st, info)
			case decl.Parameter:
				// Reaches here only when resolveOwnParams already excluded
				// it from the constant scope: a default-value assignment to
				// an already-declared port or signal, or a plain behavioral
				// assignment that implicitly declares its target as a new
				// signal the first time walkAssign sees it.
				b.behavior = append(b.behavior, &ast.AssignStmt{
					Target: &ast.Name{Ident: st.Name, Pos: st.Pos},
					Value:  st.Value,
					Pos:    st.Pos,
				})
			}
		default:
			b.behavior = append(b.behavior, s)
		}
	}
}

// declaredEntityNames pre-scans a class body for names whose shape
// unambiguously declares a port, signal, or submodule instance (In(...),
// Out(...), a bit-shape, or a call to another class), so resolveOwnParams
// can tell those apart from a genuine `name = <const-expr>` parameter that
// happens to share the same bare-name-assignment syntax.
func declaredEntityNames(body []ast.Stmt) map[string]bool {
	names := map[string]bool{}
	for _, s := range body {
		ca, ok := s.(*ast.ClassAssignStmt)
		if !ok {
			continue
		}
		switch decl.Classify(ca.Value).Kind {
		case decl.Port, decl.Signal, decl.Instance:
			names[ca.Name] = true
		}
	}
	return names
}

func (b *builder) processPort(st *ast.ClassAssignStmt, info decl.Info) {
	typ, ok := b.evalType(st.Name, "port", info)
	if !ok {
		return
	}
	if b.portByName(st.Name) != nil {
		b.reporter.Errorf(diag.DuplicateDefinition, b.moduleName, st.Name, st.Pos, "port %q is already declared", st.Name)
		b.failed = true
		return
	}
	dir := ir.Input
	if info.Dir == decl.Out {
		dir = ir.Output
	}
	b.module.Ports = append(b.module.Ports, &ir.Port{Name: st.Name, Dir: dir, Type: typ})
}

func (b *builder) processSignal(st *ast.ClassAssignStmt, info decl.Info) {
	typ, ok := b.evalType(st.Name, "signal", info)
	if !ok {
		return
	}
	if _, exists := b.module.Signals[st.Name]; exists || b.portByName(st.Name) != nil {
		b.reporter.Errorf(diag.DuplicateDefinition, b.moduleName, st.Name, st.Pos, "%q is already declared", st.Name)
		b.failed = true
		return
	}
	b.module.Signals[st.Name] = &ir.Signal{Name: st.Name, Type: typ, Pos: st.Pos}
}

func (b *builder) evalType(name, what string, info decl.Info) (ir.SignalType, bool) {
	width, err := consteval.Eval(info.Width, nil)
	if err != nil {
		b.reporter.Errorf(diag.NonStaticExpression, b.moduleName, name, info.Width.Position(), "%s %q width: %v", what, name, err)
		b.failed = true
		return ir.SignalType{}, false
	}
	typ := ir.SignalType{Width: int(width)}
	if info.Depth != nil {
		depth, err := consteval.Eval(info.Depth, nil)
		if err != nil {
			b.reporter.Errorf(diag.NonStaticExpression, b.moduleName, name, info.Depth.Position(), "%s %q depth: %v", what, name, err)
			b.failed = true
			return ir.SignalType{}, false
		}
		typ.Shape = []int{int(depth)}
	}
	return typ, true
}

func (b *builder) processInstance(st *ast.ClassAssignStmt, info decl.Info) {
	bindings := map[string]int64{}
	for _, kw := range info.Kwargs {
		v, err := consteval.Eval(kw.Value, nil)
		if err != nil {
			b.reporter.Errorf(diag.NonStaticExpression, b.moduleName, st.Name, st.Pos, "instance %q argument %q: %v", st.Name, kw.Name, err)
			b.failed = true
			return
		}
		bindings[kw.Name] = v
	}
	if _, exists := b.instanceMods[st.Name]; exists {
		b.reporter.Errorf(diag.DuplicateDefinition, b.moduleName, st.Name, st.Pos, "instance %q is already declared", st.Name)
		b.failed = true
		return
	}
	sub, err := b.elab.Elaborate(info.Template, bindings, st.Pos)
	if err != nil {
		b.failed = true
		return
	}
	order := make([]string, len(sub.Ports))
	for i, p := range sub.Ports {
		order[i] = p.Name
	}
	b.module.Instances = append(b.module.Instances, &ir.Instance{
		Name: st.Name, Template: sub.Name, PortOrder: order,
		Inputs: map[string]ir.Expr{}, Outputs: map[string]string{}, Pos: st.Pos,
	})
	b.instanceMods[st.Name] = sub
}

func (b *builder) processEnum(def *ast.ClassDef) {
	var members []ir.EnumMember
	var maxVal int64
	seen := map[int64]string{}
	for _, s := range def.Body {
		ca, ok := s.(*ast.ClassAssignStmt)
		if !ok {
			continue
		}
		v, err := consteval.Eval(ca.Value, nil)
		if err != nil {
			b.reporter.Errorf(diag.NonStaticExpression, b.moduleName, def.Name, ca.Pos, "enum member %q: %v", ca.Name, err)
			b.failed = true
			continue
		}
		if prev, dup := seen[v]; dup {
			b.reporter.Warnf(diag.DuplicateEnumValue, b.moduleName, def.Name, ca.Pos,
				"enum %s: member %q duplicates the value of %q (%d)", def.Name, ca.Name, prev, v)
		}
		seen[v] = ca.Name
		if v > maxVal {
			maxVal = v
		}
		members = append(members, ir.EnumMember{Name: ca.Name, Value: v})
	}
	b.module.Enums = append(b.module.Enums, &ir.EnumType{
		Name: def.Name, Members: members, Width: consteval.WidthForValue(maxVal),
	})
}
