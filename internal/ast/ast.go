// Package ast defines the tagged-variant node set for the .phd source
// dialect. The grammar reuses Python's surface syntax, but nothing here
// executes; the parser only ever produces these nodes and every later stage
// consumes them as pure data.
package ast

import "go/token"

// Package is one parsed .phd source file.
type Package struct {
	Path    string
	Imports []string
	Classes []*ClassDef
}

// ClassDef is a top-level `class Name(Base1, Base2, ...): ...` definition.
// Both hardware modules (base Module) and enum types (base Enum) parse to
// this same node; internal/collect tells them apart by Bases.
type ClassDef struct {
	Name  string
	Bases []string
	Body  []Stmt
	Pos   token.Pos
}

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
	Position() token.Pos
}

// AssignStmt covers every assignment form: plain names, ports/signals,
// slices, indexed elements, and submodule port wiring (`inst.port = expr`).
type AssignStmt struct {
	Target Expr
	Value  Expr
	Pos    token.Pos
}

func (*AssignStmt) stmtNode()            {}
func (a *AssignStmt) Position() token.Pos { return a.Pos }

// ClassAssignStmt is any assignment whose target is a bare name, `name =
// expr` or `name = TemplateName(k=v, ...)`, at class scope or nested inside
// an if/for/match body. It is distinguished from AssignStmt so internal/decl
// can recognize ports, signals, parameters, and submodule instances without
// re-parsing an expression tree.
type ClassAssignStmt struct {
	Name  string
	Value Expr
	Pos   token.Pos
}

func (*ClassAssignStmt) stmtNode()            {}
func (c *ClassAssignStmt) Position() token.Pos { return c.Pos }

// NestedClassStmt is a nested `class Name(Enum): ...` inside a module body.
type NestedClassStmt struct {
	Def *ClassDef
	Pos token.Pos
}

func (*NestedClassStmt) stmtNode()            {}
func (n *NestedClassStmt) Position() token.Pos { return n.Pos }

// IfStmt is `if test: body [elif ...] [else: orelse]`. elif chains are
// desugared by the parser into nested IfStmt.Orelse = []Stmt{IfStmt{...}}.
type IfStmt struct {
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
	Pos    token.Pos
}

func (*IfStmt) stmtNode()            {}
func (i *IfStmt) Position() token.Pos { return i.Pos }

// ForStmt is `for Index in range(Args...): Body`.
type ForStmt struct {
	Index string
	Args  []Expr // 1-3 args to range(...)
	Body  []Stmt
	Pos   token.Pos
}

func (*ForStmt) stmtNode()            {}
func (f *ForStmt) Position() token.Pos { return f.Pos }

// MatchStmt is `match Subject: case Pattern: Body ...`.
type MatchStmt struct {
	Subject Expr
	Cases   []*MatchCase
	Pos     token.Pos
}

func (*MatchStmt) stmtNode()            {}
func (m *MatchStmt) Position() token.Pos { return m.Pos }

// MatchCase is one `case Pattern:` arm. Pattern is nil for `case _:`.
type MatchCase struct {
	Pattern Expr
	Body    []Stmt
	Pos     token.Pos
}

// PassStmt is a `pass` statement; it carries no compiled meaning.
type PassStmt struct {
	Pos token.Pos
}

func (*PassStmt) stmtNode()            {}
func (p *PassStmt) Position() token.Pos { return p.Pos }

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
	Position() token.Pos
}

// Name is a bare identifier reference.
type Name struct {
	Ident string
	Pos   token.Pos
}

func (*Name) exprNode()             {}
func (n *Name) Position() token.Pos { return n.Pos }

// Num is an integer literal.
type Num struct {
	Value int64
	Pos   token.Pos
}

func (*Num) exprNode()             {}
func (n *Num) Position() token.Pos { return n.Pos }

// Attribute is `Value.Attr` (e.g. `clk.posedge`, `u_add.sum`).
type Attribute struct {
	Value Expr
	Attr  string
	Pos   token.Pos
}

func (*Attribute) exprNode()             {}
func (a *Attribute) Position() token.Pos { return a.Pos }

// Subscript is `Value[Index]` or `Value[Hi:Lo]` (Lo == nil for a single
// index).
type Subscript struct {
	Value Expr
	Hi    Expr
	Lo    Expr // nil for a plain index
	Pos   token.Pos
}

func (*Subscript) exprNode()             {}
func (s *Subscript) Position() token.Pos { return s.Pos }

// BinOp is a binary arithmetic/bitwise expression.
type BinOp struct {
	Op    Operator
	X, Y  Expr
	Pos   token.Pos
}

func (*BinOp) exprNode()             {}
func (b *BinOp) Position() token.Pos { return b.Pos }

// UnaryOp is a unary expression (`-x`, `+x`, `~x`, `not x`).
type UnaryOp struct {
	Op  Operator
	X   Expr
	Pos token.Pos
}

func (*UnaryOp) exprNode()             {}
func (u *UnaryOp) Position() token.Pos { return u.Pos }

// BoolOp is a chained `and`/`or` expression, e.g. the edge-guard disjunction
// `clk.posedge or rst_n.negedge`.
type BoolOp struct {
	Op     Operator // And or Or
	Values []Expr
	Pos    token.Pos
}

func (*BoolOp) exprNode()             {}
func (b *BoolOp) Position() token.Pos { return b.Pos }

// Compare is a single comparison `X Op Y` (chained comparisons are not part
// of this dialect's supported subset).
type Compare struct {
	Op   Operator
	X, Y Expr
	Pos  token.Pos
}

func (*Compare) exprNode()             {}
func (c *Compare) Position() token.Pos { return c.Pos }

// Tuple is `(a, b, c)`, used exclusively as a concatenation RHS.
type Tuple struct {
	Elts []Expr
	Pos  token.Pos
}

func (*Tuple) exprNode()             {}
func (t *Tuple) Position() token.Pos { return t.Pos }

// Call is `Callee(Kw1=Val1, Kw2=Val2, ...)`, used for port declarations
// (`In(bit[8])`, `Out(bit)`), submodule instantiation
// (`ParamAdder(width=8)`), and `range(...)`.
type Call struct {
	Callee Expr
	Args   []Expr
	Kwargs []KwArg
	Pos    token.Pos
}

func (*Call) exprNode()             {}
func (c *Call) Position() token.Pos { return c.Pos }

// KwArg is one `name=value` call argument.
type KwArg struct {
	Name  string
	Value Expr
}

// Operator enumerates every operator token recognized by the grammar.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpInvert
	OpBoolAnd
	OpBoolOr
	OpNot
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpPos
	OpNeg
)
