// Package passes implements the post-lowering diagnostics supplemented in
// SPEC_FULL.md §9 beyond spec.md's core error taxonomy: latch-avoidance
// warnings for combinational signals assigned without a preceding default.
// Each pass takes a fully built ir.Module and only ever reports non-fatal
// diagnostics, following the reference compiler's own Pass/Manager split of
// "build the descriptor first, then run optional advisory checks over it."
package passes

import (
	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/diag"
	"github.com/phdc-lang/phdc/internal/ir"
)

// LatchAvoidance warns once per signal when a combinational signal's first
// assignment (in always_comb source order) is inside a conditional branch
// rather than an unconditional default, per spec.md §9's design note.
func LatchAvoidance(m *ir.Module, moduleName string, reporter *diag.Reporter) {
	defaulted := map[string]bool{}
	warned := map[string]bool{}

	var walk func(stmts []ast.Stmt, conditional bool)
	walk = func(stmts []ast.Stmt, conditional bool) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *ast.AssignStmt:
				name := baseName(st.Target)
				if name == "" {
					continue
				}
				sig := m.Signals[name]
				if sig == nil || sig.Kind == ir.Reg {
					continue
				}
				if !conditional {
					defaulted[name] = true
					continue
				}
				if !defaulted[name] && !warned[name] {
					reporter.Warnf(diag.LatchWarning, moduleName, name, st.Pos,
						"combinational signal %q is conditionally assigned before any default assignment", name)
					warned[name] = true
				}
			case *ast.IfStmt:
				walk(st.Body, true)
				walk(st.Orelse, true)
			case *ast.MatchStmt:
				for _, c := range st.Cases {
					walk(c.Body, true)
				}
			}
		}
	}
	walk(m.Comb, false)
}

func baseName(target ast.Expr) string {
	for {
		switch v := target.(type) {
		case *ast.Name:
			return v.Ident
		case *ast.Subscript:
			target = v.Value
		default:
			return ""
		}
	}
}
