// Package unroll implements the Loop Unroller of spec.md §4.5: every
// `for i in range(...)` is expanded into one body copy per iteration with i
// bound to a literal. By the time a module reaches this pass its own and its
// template's parameters have already been substituted (see internal/subst),
// so range bounds here need no external scope beyond loop indices already
// bound by an enclosing unroll.
package unroll

import (
	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/consteval"
	"github.com/phdc-lang/phdc/internal/subst"
)

// NonStaticBoundsError reports a `for i in range(...)` whose bounds could
// not be evaluated as compile-time constants; the semantic pass reports it
// as NonStaticExpression. A for-loop over anything other than a range(...)
// call never reaches this pass: internal/parse rejects it, and that
// rejection surfaces as a ParseError for the whole file, not as a
// NonStaticLoop diagnostic.
type NonStaticBoundsError struct {
	msg string
}

func (e *NonStaticBoundsError) Error() string { return e.msg }

// Stmts unrolls every for-loop in stmts, recursing into if/match bodies, and
// returns a for-loop-free statement list. Nested loops are unrolled
// outside-in: the outer index is substituted before the inner loop's bounds
// are evaluated, so an inner bound that depends on the outer index sees a
// concrete value.
func Stmts(stmts []ast.Stmt) ([]ast.Stmt, error) {
	var out []ast.Stmt
	for _, s := range stmts {
		unrolled, err := stmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, unrolled...)
	}
	return out, nil
}

func stmt(s ast.Stmt) ([]ast.Stmt, error) {
	switch st := s.(type) {
	case *ast.ForStmt:
		return forLoop(st)
	case *ast.IfStmt:
		body, err := Stmts(st.Body)
		if err != nil {
			return nil, err
		}
		orelse, err := Stmts(st.Orelse)
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.IfStmt{Test: st.Test, Body: body, Orelse: orelse, Pos: st.Pos}}, nil
	case *ast.MatchStmt:
		cases := make([]*ast.MatchCase, len(st.Cases))
		for i, c := range st.Cases {
			body, err := Stmts(c.Body)
			if err != nil {
				return nil, err
			}
			cases[i] = &ast.MatchCase{Pattern: c.Pattern, Body: body, Pos: c.Pos}
		}
		return []ast.Stmt{&ast.MatchStmt{Subject: st.Subject, Cases: cases, Pos: st.Pos}}, nil
	default:
		return []ast.Stmt{s}, nil
	}
}

func forLoop(st *ast.ForStmt) ([]ast.Stmt, error) {
	indices, err := consteval.Range(st.Args, consteval.Scope{}, st.Pos)
	if err != nil {
		return nil, &NonStaticBoundsError{msg: "for " + st.Index + ": " + err.Error()}
	}

	var out []ast.Stmt
	for _, v := range indices {
		bound := subst.Stmts(st.Body, subst.Bindings{st.Index: v})
		unrolled, err := Stmts(bound)
		if err != nil {
			return nil, err
		}
		out = append(out, unrolled...)
	}
	return out, nil
}
