// Package template implements the Template Registry of spec.md §4.2: it
// tells concrete modules apart from parameterized templates by a free-name
// pre-scan, and memoizes monomorphization by canonical parameter tuple so
// that `Template(x=N)` used K times yields exactly one emitted definition.
// The cache pattern is the same shape as the reference compiler's
// per-function build memoization, generalized from "cache keyed by pointer
// identity" to "cache keyed by an ordered parameter tuple."
package template

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/collect"
	"github.com/phdc-lang/phdc/internal/decl"
	"github.com/phdc-lang/phdc/internal/diag"
	"github.com/phdc-lang/phdc/internal/ir"
)

// Builder elaborates one module definition, given its resolved parameter
// bindings and the emitted name it should take, into an ir.Module. sema.Build
// satisfies this signature; keeping the dependency as a function value (not
// an interface implemented by an imported package) lets template and sema
// each depend on the other's data without an import cycle.
type Builder func(def *collect.Definition, bindings map[string]int64, emittedName string, elab Elaborator, reporter *diag.Reporter) (*ir.Module, error)

// Elaborator is what a semantic pass needs from the registry: the ability to
// recursively monomorphize a submodule instantiation.
type Elaborator interface {
	Elaborate(templateName string, bindings map[string]int64, pos token.Pos) (*ir.Module, error)
}

// Registry owns every module definition collected from one input file, and
// memoizes concrete modules produced from them.
type Registry struct {
	defs     map[string]*collect.Definition
	build    Builder
	reporter *diag.Reporter

	cache  map[string]*ir.Module
	order  []*ir.Module
	origin map[string]string // emitted module name -> declaring class name
}

func NewRegistry(defs map[string]*collect.Definition, build Builder, reporter *diag.Reporter) *Registry {
	return &Registry{defs: defs, build: build, reporter: reporter, cache: map[string]*ir.Module{}, origin: map[string]string{}}
}

// IsTemplate reports whether name's definition has any free (instantiation-
// bound) parameter.
func (r *Registry) IsTemplate(name string) bool {
	def, ok := r.defs[name]
	if !ok {
		return false
	}
	return len(FreeNames(def.Def)) > 0
}

// Elaborate returns the (cached, if seen before) ir.Module for name bound
// with bindings, monomorphizing on first use.
func (r *Registry) Elaborate(name string, bindings map[string]int64, pos token.Pos) (*ir.Module, error) {
	def, ok := r.defs[name]
	if !ok {
		r.reporter.Errorf(diag.UndeclaredName, name, "", pos, "no module named %q is defined in this file", name)
		return nil, fmt.Errorf("undefined module %q", name)
	}
	free := FreeNames(def.Def)
	emitted := EmittedName(name, free, bindings)
	if m, ok := r.cache[emitted]; ok {
		return m, nil
	}
	m, err := r.build(def, bindings, emitted, r, r.reporter)
	if err != nil {
		return nil, err
	}
	r.cache[emitted] = m
	r.order = append(r.order, m)
	r.origin[emitted] = name
	return m, nil
}

// Modules returns every distinct monomorphization built so far, in the order
// each was first elaborated.
func (r *Registry) Modules() []*ir.Module {
	return r.order
}

// DeclaringClass returns the class name that produced emittedName (the same
// for every monomorphization of one template), used to look up diagnostics,
// which the semantic pass scopes to the declaring class rather than to each
// individual monomorphization.
func (r *Registry) DeclaringClass(emittedName string) string {
	return r.origin[emittedName]
}

// EmittedName forms `{Template}_{k1}{v1}{k2}{v2}...` in the declaration
// order of free (see FreeNames), or just name for a concrete (non-template)
// module.
func EmittedName(name string, freeNames []string, bindings map[string]int64) string {
	if len(freeNames) == 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('_')
	for _, k := range freeNames {
		fmt.Fprintf(&b, "%s%d", k, bindings[k])
	}
	return b.String()
}

// FreeNames returns, in first-occurrence order, the names referenced in a
// port or signal width/depth expression that the class's own parameter
// assignments never bind. A non-empty result marks def as a template.
func FreeNames(def *ast.ClassDef) []string {
	bound := map[string]bool{}
	for _, s := range def.Body {
		ca, ok := s.(*ast.ClassAssignStmt)
		if !ok {
			continue
		}
		if decl.Classify(ca.Value).Kind == decl.Parameter {
			bound[ca.Name] = true
		}
	}

	var order []string
	seen := map[string]bool{}
	add := func(e ast.Expr) {
		if e == nil {
			return
		}
		for _, n := range collectNames(e) {
			if bound[n] || seen[n] {
				continue
			}
			seen[n] = true
			order = append(order, n)
		}
	}

	for _, s := range def.Body {
		ca, ok := s.(*ast.ClassAssignStmt)
		if !ok {
			continue
		}
		info := decl.Classify(ca.Value)
		if info.Kind == decl.Port || info.Kind == decl.Signal {
			add(info.Width)
			add(info.Depth)
		}
	}
	return order
}

func collectNames(e ast.Expr) []string {
	var names []string
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch v := e.(type) {
		case *ast.Name:
			names = append(names, v.Ident)
		case *ast.BinOp:
			walk(v.X)
			walk(v.Y)
		case *ast.UnaryOp:
			walk(v.X)
		case *ast.Compare:
			walk(v.X)
			walk(v.Y)
		case *ast.BoolOp:
			for _, x := range v.Values {
				walk(x)
			}
		case *ast.Tuple:
			for _, x := range v.Elts {
				walk(x)
			}
		}
	}
	walk(e)
	return names
}
