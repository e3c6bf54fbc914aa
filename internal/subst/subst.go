// Package subst implements the one mechanical operation spec.md §4.2 and
// §4.5 both reduce to: "substitute concrete integer values for a set of free
// names throughout a statement/expression tree." Monomorphization uses it to
// bind a template's formal parameters; the loop unroller uses the exact same
// function to bind one iteration's index. Keeping one implementation avoids
// two AST-walking copies drifting apart.
package subst

import "github.com/phdc-lang/phdc/internal/ast"

// Bindings maps a free name to the literal value it should become.
type Bindings map[string]int64

// Stmts deep-copies stmts, replacing every ast.Name matching a key of b with
// an ast.Num carrying that value (and the original position, since
// spec.md's Non-goal on source-line provenance only concerns emitted code,
// not internal diagnostics).
func Stmts(stmts []ast.Stmt, b Bindings) []ast.Stmt {
	if len(stmts) == 0 {
		return nil
	}
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = Stmt(s, b)
	}
	return out
}

func Stmt(s ast.Stmt, b Bindings) ast.Stmt {
	switch st := s.(type) {
	case *ast.AssignStmt:
		return &ast.AssignStmt{Target: Expr(st.Target, b), Value: Expr(st.Value, b), Pos: st.Pos}
	case *ast.ClassAssignStmt:
		return &ast.ClassAssignStmt{Name: st.Name, Value: Expr(st.Value, b), Pos: st.Pos}
	case *ast.NestedClassStmt:
		return st // enum bodies never reference outer parameters or loop indices
	case *ast.IfStmt:
		return &ast.IfStmt{Test: Expr(st.Test, b), Body: Stmts(st.Body, b), Orelse: Stmts(st.Orelse, b), Pos: st.Pos}
	case *ast.ForStmt:
		args := make([]ast.Expr, len(st.Args))
		for i, a := range st.Args {
			args[i] = Expr(a, b)
		}
		inner := b
		if _, shadowed := b[st.Index]; shadowed {
			inner = without(b, st.Index)
		}
		return &ast.ForStmt{Index: st.Index, Args: args, Body: Stmts(st.Body, inner), Pos: st.Pos}
	case *ast.MatchStmt:
		cases := make([]*ast.MatchCase, len(st.Cases))
		for i, c := range st.Cases {
			var pat ast.Expr
			if c.Pattern != nil {
				pat = Expr(c.Pattern, b)
			}
			cases[i] = &ast.MatchCase{Pattern: pat, Body: Stmts(c.Body, b), Pos: c.Pos}
		}
		return &ast.MatchStmt{Subject: Expr(st.Subject, b), Cases: cases, Pos: st.Pos}
	case *ast.PassStmt:
		return st
	default:
		return s
	}
}

func Expr(e ast.Expr, b Bindings) ast.Expr {
	switch ex := e.(type) {
	case *ast.Name:
		if v, ok := b[ex.Ident]; ok {
			return &ast.Num{Value: v, Pos: ex.Pos}
		}
		return ex
	case *ast.Num:
		return ex
	case *ast.Attribute:
		return &ast.Attribute{Value: Expr(ex.Value, b), Attr: ex.Attr, Pos: ex.Pos}
	case *ast.Subscript:
		sub := &ast.Subscript{Value: Expr(ex.Value, b), Hi: Expr(ex.Hi, b), Pos: ex.Pos}
		if ex.Lo != nil {
			sub.Lo = Expr(ex.Lo, b)
		}
		return sub
	case *ast.BinOp:
		return &ast.BinOp{Op: ex.Op, X: Expr(ex.X, b), Y: Expr(ex.Y, b), Pos: ex.Pos}
	case *ast.UnaryOp:
		return &ast.UnaryOp{Op: ex.Op, X: Expr(ex.X, b), Pos: ex.Pos}
	case *ast.BoolOp:
		values := make([]ast.Expr, len(ex.Values))
		for i, v := range ex.Values {
			values[i] = Expr(v, b)
		}
		return &ast.BoolOp{Op: ex.Op, Values: values, Pos: ex.Pos}
	case *ast.Compare:
		return &ast.Compare{Op: ex.Op, X: Expr(ex.X, b), Y: Expr(ex.Y, b), Pos: ex.Pos}
	case *ast.Tuple:
		elts := make([]ast.Expr, len(ex.Elts))
		for i, v := range ex.Elts {
			elts[i] = Expr(v, b)
		}
		return &ast.Tuple{Elts: elts, Pos: ex.Pos}
	case *ast.Call:
		args := make([]ast.Expr, len(ex.Args))
		for i, v := range ex.Args {
			args[i] = Expr(v, b)
		}
		kwargs := make([]ast.KwArg, len(ex.Kwargs))
		for i, kw := range ex.Kwargs {
			kwargs[i] = ast.KwArg{Name: kw.Name, Value: Expr(kw.Value, b)}
		}
		return &ast.Call{Callee: Expr(ex.Callee, b), Args: args, Kwargs: kwargs, Pos: ex.Pos}
	default:
		return e
	}
}

func without(b Bindings, key string) Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		if k != key {
			out[k] = v
		}
	}
	return out
}
