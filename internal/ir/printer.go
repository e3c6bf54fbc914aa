package ir

import (
	"fmt"
	"io"
	"sort"
)

// Dump writes a human-readable representation of the design, used by the
// driver's --dump-ir flag (SPEC_FULL.md §9).
func Dump(design *Design, w io.Writer) {
	if design == nil {
		fmt.Fprintln(w, "<nil design>")
		return
	}
	for _, module := range design.Modules {
		fmt.Fprintf(w, "module %s\n", module.Name)
		dumpPorts(module, w)
		dumpParams(module, w)
		dumpEnums(module, w)
		dumpSignals(module, w)
		dumpInstances(module, w)
		dumpBlocks(module, w)
		fmt.Fprintln(w)
	}
}

func dumpPorts(m *Module, w io.Writer) {
	if len(m.Ports) == 0 {
		return
	}
	fmt.Fprintln(w, "  ports:")
	for _, p := range m.Ports {
		fmt.Fprintf(w, "    %s %s %s\n", portDirection(p.Dir), p.Name, describeType(p.Type))
	}
}

func dumpParams(m *Module, w io.Writer) {
	if len(m.Params) == 0 {
		return
	}
	fmt.Fprintln(w, "  params:")
	for _, p := range m.Params {
		fmt.Fprintf(w, "    %s = %d\n", p.Name, p.Value)
	}
}

func dumpEnums(m *Module, w io.Writer) {
	for _, e := range m.Enums {
		fmt.Fprintf(w, "  enum %s (%db):\n", e.Name, e.Width)
		for _, mem := range e.Members {
			fmt.Fprintf(w, "    %s = %d\n", mem.Name, mem.Value)
		}
	}
}

func dumpSignals(m *Module, w io.Writer) {
	if len(m.Signals) == 0 {
		return
	}
	fmt.Fprintln(w, "  signals:")
	for _, name := range m.SignalNames() {
		sig := m.Signals[name]
		extra := ""
		if sig.Kind == Reg && len(sig.Edges) > 0 {
			extra = " @ " + sig.Edges.String()
		}
		fmt.Fprintf(w, "    %-12s %-4s %s%s\n", sig.Name, signalKind(sig.Kind), describeType(sig.Type), extra)
	}
}

func dumpInstances(m *Module, w io.Writer) {
	if len(m.Instances) == 0 {
		return
	}
	fmt.Fprintln(w, "  instances:")
	for _, inst := range m.Instances {
		fmt.Fprintf(w, "    %s : %s\n", inst.Name, inst.Template)
	}
	if len(m.Wires) > 0 {
		names := make([]string, 0, len(m.Wires))
		byName := make(map[string]*Wire, len(m.Wires))
		for _, wr := range m.Wires {
			names = append(names, wr.Name)
			byName[wr.Name] = wr
		}
		sort.Strings(names)
		fmt.Fprintln(w, "  wires:")
		for _, n := range names {
			wr := byName[n]
			fmt.Fprintf(w, "    %s (%s.%s) %s\n", wr.Name, wr.Instance, wr.Port, describeType(wr.Type))
		}
	}
}

func dumpBlocks(m *Module, w io.Writer) {
	if len(m.Comb) > 0 {
		fmt.Fprintf(w, "  always_comb: %d statement(s)\n", len(m.Comb))
	}
	for i, blk := range m.SeqBlocks {
		fmt.Fprintf(w, "  always_ff[%d] @(%s): %d statement(s)\n", i, blk.Edges.String(), len(blk.Body))
	}
}

func describeType(t SignalType) string {
	if t.IsMemory() {
		return fmt.Sprintf("%db[0:%d]", t.Width, t.Shape[0]-1)
	}
	return fmt.Sprintf("%db", t.Width)
}

func portDirection(d PortDirection) string {
	if d == Output {
		return "out"
	}
	return "in "
}

func signalKind(k SignalKind) string {
	if k == Reg {
		return "reg"
	}
	return "wire"
}
