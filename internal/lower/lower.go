// Package lower performs the finishing structural checks of spec.md §4.6
// once the semantic pass has already partitioned a module's statements into
// its combinational block and its per-edge-set sequential blocks (that
// partitioning is inseparable from classification, so internal/sema does it
// as it walks; see DESIGN.md). What is left here is validating the one
// structural invariant spec.md §4.6 states about sequential blocks: when an
// async reset shares a block with a clock edge, the reset condition must be
// the outermost branch.
package lower

import (
	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/diag"
	"github.com/phdc-lang/phdc/internal/ir"
)

// Module checks every sequential block of m and reports ResetNotOutermost
// when a reset edge is present but the block's body isn't a single
// top-level `if` testing one of the reset signals.
func Module(m *ir.Module, moduleName string, reporter *diag.Reporter) {
	for _, blk := range m.SeqBlocks {
		if len(blk.Edges) < 2 {
			continue
		}
		resets := map[string]bool{}
		for _, e := range blk.Edges[1:] {
			resets[e.Signal] = true
		}
		if !resetIsOutermost(blk.Body, resets) {
			reporter.Warnf(diag.ResetNotOutermost, moduleName, "", m.Source,
				"sequential block on %s does not test its reset condition as the outermost branch", blk.Edges.String())
		}
	}
	reporter.Trace(moduleName, "lowered")
}

func resetIsOutermost(body []ast.Stmt, resets map[string]bool) bool {
	if len(body) != 1 {
		return false
	}
	ifs, ok := body[0].(*ast.IfStmt)
	if !ok {
		return false
	}
	return testsSignal(ifs.Test, resets)
}

// testsSignal reports whether test is `not X`, `X`, or a comparison against
// X for some reset signal X.
func testsSignal(test ast.Expr, signals map[string]bool) bool {
	switch t := test.(type) {
	case *ast.UnaryOp:
		if t.Op == ast.OpNot {
			return testsSignal(t.X, signals)
		}
	case *ast.Name:
		return signals[t.Ident]
	case *ast.Compare:
		return testsSignal(t.X, signals) || testsSignal(t.Y, signals)
	}
	return false
}
