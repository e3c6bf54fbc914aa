package emit

import (
	"fmt"
	"strings"

	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/ir"
)

// stmtPrinter walks the fully classified, wired statement tree of one
// always_comb or always_ff block and writes its SystemVerilog body.
// blocking selects `=` (comb) versus `<=` (seq) for assignments.
type stmtPrinter struct {
	m        *ir.Module
	sb       *strings.Builder
	indent   int
	blocking bool
}

func (p *stmtPrinter) writeIndent() {
	p.sb.WriteString(strings.Repeat("    ", p.indent))
}

func (p *stmtPrinter) writeStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.AssignStmt:
		p.writeAssign(st)
	case *ast.IfStmt:
		p.writeIf(st)
	case *ast.MatchStmt:
		p.writeMatch(st)
	case *ast.PassStmt:
		// nothing to emit
	}
}

func (p *stmtPrinter) writeAssign(st *ast.AssignStmt) {
	op := "="
	if !p.blocking {
		op = "<="
	}
	width := lvalueWidth(p.m, st.Target)
	p.writeIndent()
	fmt.Fprintf(p.sb, "%s %s %s;\n", renderExpr(st.Target), op, renderRHS(st.Value, width))
}

// writeIf flattens an if/elif/.../else chain (the parser already desugars
// elif into nested Orelse) into a single if/else-if/else run at one
// indentation level, per spec.md §4.6.
func (p *stmtPrinter) writeIf(st *ast.IfStmt) {
	cur := st
	first := true
	for {
		p.writeIndent()
		if first {
			fmt.Fprintf(p.sb, "if (%s) begin\n", renderExpr(cur.Test))
			first = false
		} else {
			fmt.Fprintf(p.sb, "else if (%s) begin\n", renderExpr(cur.Test))
		}
		p.indent++
		for _, b := range cur.Body {
			p.writeStmt(b)
		}
		p.indent--
		p.writeIndent()
		p.sb.WriteString("end\n")

		if len(cur.Orelse) == 1 {
			if nested, ok := cur.Orelse[0].(*ast.IfStmt); ok {
				cur = nested
				continue
			}
		}
		if len(cur.Orelse) > 0 {
			p.writeIndent()
			p.sb.WriteString("else begin\n")
			p.indent++
			for _, b := range cur.Orelse {
				p.writeStmt(b)
			}
			p.indent--
			p.writeIndent()
			p.sb.WriteString("end\n")
		}
		break
	}
}

// writeMatch lowers `match`/`case` to `unique case ... default: ;`, adding
// the default arm only when no source case already supplied one (`case _:`),
// since emitting two `default:` labels on the same case statement is a
// compile error.
func (p *stmtPrinter) writeMatch(st *ast.MatchStmt) {
	p.writeIndent()
	fmt.Fprintf(p.sb, "unique case (%s)\n", renderExpr(st.Subject))
	p.indent++
	hasDefault := false
	for _, c := range st.Cases {
		p.writeIndent()
		label := "default"
		if c.Pattern != nil {
			label = renderExpr(c.Pattern)
		} else {
			hasDefault = true
		}
		fmt.Fprintf(p.sb, "%s: begin\n", label)
		p.indent++
		for _, b := range c.Body {
			p.writeStmt(b)
		}
		p.indent--
		p.writeIndent()
		p.sb.WriteString("end\n")
	}
	if !hasDefault {
		p.writeIndent()
		p.sb.WriteString("default: ;\n")
	}
	p.indent--
	p.writeIndent()
	p.sb.WriteString("endcase\n")
}
