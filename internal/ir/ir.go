// Package ir defines the data model of spec.md §3: the descriptors produced
// by the semantic pass and lowering, and consumed by the emitter. Field
// names and the Port/Signal/SignalKind split are carried over from the
// reference compiler's own ir package, adapted to a statement-tree
// representation (rather than SSA basic blocks) since this dialect's
// if/for/match control structure must survive into the emitted always_comb
// and always_ff bodies verbatim.
package ir

import (
	"go/token"
	"sort"

	"github.com/phdc-lang/phdc/internal/ast"
)

// Stmt and Expr reuse the parser's tagged-variant tree: by the time lowering
// runs, every loop has been unrolled and every constant substituted, so the
// remaining statement/expression shapes (If/Assign/Match with fully resolved
// Name/Num/BinOp/... leaves) are exactly what the emitter needs to walk.
// There is no separate "lowered expression" node set to keep in sync.
type Stmt = ast.Stmt
type Expr = ast.Expr

// Design is the full output of one compilation: every concrete module and
// every distinct monomorphization, in the order they should be emitted.
type Design struct {
	Modules []*Module
}

// Module is one emittable SystemVerilog module.
type Module struct {
	Name      string
	Ports     []*Port
	Params    []*Parameter
	Enums     []*EnumType
	Signals   map[string]*Signal
	Instances []*Instance
	Wires     []*Wire
	Comb      []Stmt
	SeqBlocks []*SeqBlock
	Source    token.Pos
}

// SignalNames returns the module's signal names in stable (sorted) order.
func (m *Module) SignalNames() []string {
	names := make([]string, 0, len(m.Signals))
	for name := range m.Signals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Port is a module IO port.
type Port struct {
	Name string
	Dir  PortDirection
	Type SignalType
}

// PortDirection enumerates supported port directions.
type PortDirection int

const (
	Input PortDirection = iota
	Output
)

// Signal is an internal wire or flip-flop.
type Signal struct {
	Name  string
	Type  SignalType
	Kind  SignalKind
	Edges EdgeSet   // populated once storage class is known; empty for Wire
	Enum  *EnumType // non-nil when the signal holds a value of this enum type
	Pos   token.Pos
}

// SignalType records the width (and, for memories, shape) of a value.
// Signed arithmetic is a documented Non-goal, so no signedness bit is
// carried here.
type SignalType struct {
	Width int
	Shape []int // nil for scalar signals; [depth] for 1-D memories
}

// IsMemory reports whether the type describes a memory array.
func (t SignalType) IsMemory() bool { return len(t.Shape) > 0 }

// SignalKind classifies how a signal is driven.
type SignalKind int

const (
	WireKind SignalKind = iota
	Reg
)

// EdgeKind is posedge or negedge.
type EdgeKind int

const (
	Posedge EdgeKind = iota
	Negedge
)

func (e EdgeKind) String() string {
	if e == Negedge {
		return "negedge"
	}
	return "posedge"
}

// Edge is one `signal.posedge`/`signal.negedge` sensitivity term.
type Edge struct {
	Signal string
	Kind   EdgeKind
}

// EdgeSet is an ordered, source-order list of edges controlling one
// always_ff block. Order matters: spec.md §8 invariant 3 requires the
// emitted sensitivity list to match source order.
type EdgeSet []Edge

// Equal reports whether two edge sets have the same edges in the same order.
func (a EdgeSet) Equal(b EdgeSet) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (a EdgeSet) String() string {
	s := ""
	for i, e := range a {
		if i > 0 {
			s += " or "
		}
		s += e.Kind.String() + " " + e.Signal
	}
	return s
}

// Parameter is a resolved (post-monomorphization) integer parameter.
type Parameter struct {
	Name  string
	Value int64
}

// EnumType is a nested enum class's compiled form.
type EnumType struct {
	Name    string
	Members []EnumMember
	Width   int
}

// EnumMember is one `NAME = VALUE` entry.
type EnumMember struct {
	Name  string
	Value int64
}

// Instance is a submodule instantiation with its resolved wiring table.
type Instance struct {
	Name      string
	Template  string // monomorphized emitted module name
	PortOrder []string // submodule's port declaration order, for deterministic emission
	Inputs    map[string]Expr
	Outputs   map[string]string // port name -> intermediate wire name
	Pos       token.Pos
}

// Wire is an auto-declared intermediate signal between a submodule output
// port and its consumer(s), named "{instance}_{port}" per spec.md §3.
type Wire struct {
	Name     string
	Type     SignalType
	Instance string
	Port     string
}

// SeqBlock groups every assignment sharing one identical edge set into a
// single always_ff block.
type SeqBlock struct {
	Edges EdgeSet
	Body  []Stmt
}
