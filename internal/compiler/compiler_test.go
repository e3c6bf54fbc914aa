package compiler

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/phdc-lang/phdc/internal/diag"
)

// fixture loads one named section out of testdata/scenarios.txtar.
func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/scenarios.txtar")
	if err != nil {
		t.Fatalf("reading testdata/scenarios.txtar: %v", err)
	}
	archive := txtar.Parse(data)
	for _, f := range archive.Files {
		if f.Name == name {
			return string(f.Data)
		}
	}
	t.Fatalf("testdata/scenarios.txtar has no section %q", name)
	return ""
}

// TestPriorityEncoderUnrollsLoop covers spec.md §8 scenario 1 and invariant
// 4: an 8-iteration range() loop over an 8-bit request vector must produce
// exactly 8 unrolled `if` copies, each assigning a width-sized index and a
// 1-bit valid literal.
func TestPriorityEncoderUnrollsLoop(t *testing.T) {
	units, reporter := Compile(Sources{"priority.phd": fixture(t, "priority.phd")}, nil)
	if reporter.HasErrors("") {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 emitted unit, got %d", len(units))
	}
	text := units[0].Text

	if n := strings.Count(text, "if (req["); n != 8 {
		t.Fatalf("expected 8 unrolled if branches, found %d in:\n%s", n, text)
	}

	var wantAssigns, gotAssigns []string
	for i := 0; i < 8; i++ {
		wantAssigns = append(wantAssigns, fmt.Sprintf("code = 3'd%d;", i))
		if strings.Contains(text, wantAssigns[i]) {
			gotAssigns = append(gotAssigns, wantAssigns[i])
		} else {
			gotAssigns = append(gotAssigns, "<missing>")
		}
	}
	if diff := cmp.Diff(wantAssigns, gotAssigns); diff != "" {
		t.Errorf("unrolled index assignments differ (-want +got):\n%s\nfull output:\n%s", diff, text)
	}

	if !strings.Contains(text, "valid = 1'd1;") {
		t.Errorf("expected valid = 1'd1; in:\n%s", text)
	}
	if !strings.Contains(text, "always_comb begin") {
		t.Errorf("expected an always_comb block in:\n%s", text)
	}
}

// TestCounterAsyncResetEdgeOrder covers spec.md §8 scenario 2: an async-low
// reset counter emits its edges in source order, tests the reset as the
// outermost branch, and renders the zero reset value sized from the lvalue
// while the plain arithmetic operand inside `count + 1` stays unsized.
func TestCounterAsyncResetEdgeOrder(t *testing.T) {
	units, reporter := Compile(Sources{"counter.phd": fixture(t, "counter.phd")}, nil)
	if reporter.HasErrors("") {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 emitted unit, got %d", len(units))
	}
	text := units[0].Text

	if !strings.Contains(text, "always_ff @(posedge clk or negedge rst_n)") {
		t.Errorf("expected edges in source order in:\n%s", text)
	}
	if !strings.Contains(text, "if ((!rst_n))") {
		t.Errorf("expected reset test as outermost branch in:\n%s", text)
	}
	if !strings.Contains(text, "count <= 8'd0;") {
		t.Errorf("expected sized reset literal in:\n%s", text)
	}
	if !strings.Contains(text, "(count + 1)") {
		t.Errorf("expected parenthesized increment in:\n%s", text)
	}
}

// TestTrafficLightFSMEmitsStateEnumAndCase covers spec.md §8 scenario 3: a
// three-state enum compiles to a typedef, a sequential block advancing state
// through a `unique case`, and a separate combinational block decoding
// outputs through its own `unique case`, both closed with `default: ;`.
func TestTrafficLightFSMEmitsStateEnumAndCase(t *testing.T) {
	units, reporter := Compile(Sources{"fsm.phd": fixture(t, "fsm.phd")}, nil)
	if reporter.HasErrors("") {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 emitted unit, got %d", len(units))
	}
	text := units[0].Text

	if !strings.Contains(text, "typedef enum logic [1:0] {RED=0, GREEN=1, YELLOW=2} State_t;") {
		t.Errorf("expected the State enum typedef in:\n%s", text)
	}
	if n := strings.Count(text, "unique case (state)"); n != 2 {
		t.Errorf("expected 2 case statements switching on state (one sequential, one combinational), found %d in:\n%s", n, text)
	}
	if n := strings.Count(text, "default: ;"); n != 2 {
		t.Errorf("expected both case statements to close with default: ;, found %d in:\n%s", n, text)
	}
	if !strings.Contains(text, "always_ff @(posedge clk or negedge rst_n)") {
		t.Errorf("expected a sequential state-advance block in:\n%s", text)
	}
	if !strings.Contains(text, "always_comb begin") {
		t.Errorf("expected a combinational output-decode block in:\n%s", text)
	}
}

// TestParameterizedAdderMonomorphizesAndWiresSubmodule covers spec.md §8
// scenarios 4 and 5 together: instantiating ParamAdder(width=8) from Top
// both monomorphizes the template to ParamAdder_width8 and wires it in with
// an auto-declared intermediate wire for its output port.
func TestParameterizedAdderMonomorphizesAndWiresSubmodule(t *testing.T) {
	units, reporter := Compile(Sources{"submodule.phd": fixture(t, "submodule.phd")}, nil)
	if reporter.HasErrors("") {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 emitted units (ParamAdder_width8 and Top), got %d", len(units))
	}

	var adder, top *Unit
	for i := range units {
		switch units[i].Name {
		case "ParamAdder_width8":
			adder = &units[i]
		case "Top":
			top = &units[i]
		}
	}
	if adder == nil {
		t.Fatalf("expected a ParamAdder_width8 unit, got names: %v", unitNames(units))
	}
	if !strings.Contains(adder.Text, "input logic [7:0] a") || !strings.Contains(adder.Text, "input logic [7:0] b") {
		t.Errorf("expected 8-bit a/b ports in:\n%s", adder.Text)
	}
	if !strings.Contains(adder.Text, "output logic [8:0] sum") {
		t.Errorf("expected a 9-bit sum port in:\n%s", adder.Text)
	}
	if !strings.Contains(adder.Text, "sum = (a + b);") {
		t.Errorf("expected sum = (a + b); in:\n%s", adder.Text)
	}

	if top == nil {
		t.Fatalf("expected a Top unit, got names: %v", unitNames(units))
	}
	if !strings.Contains(top.Text, "logic [8:0] u_add_sum;") {
		t.Errorf("expected the auto-declared intermediate wire in:\n%s", top.Text)
	}
	if !strings.Contains(top.Text, "ParamAdder_width8 u_add (.a(in_a), .b(in_b), .sum(u_add_sum));") {
		t.Errorf("expected the submodule instantiation in:\n%s", top.Text)
	}
	if !strings.Contains(top.Text, "out_sum = u_add_sum;") {
		t.Errorf("expected the wire read into out_sum in:\n%s", top.Text)
	}
}

func unitNames(units []Unit) []string {
	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}
	return names
}

// TestMixedStorageClassAbortsEmission covers spec.md §8 scenario 6: a signal
// assigned once inside a clock-edge guard and once outside produces exactly
// one MixedStorageClass diagnostic and no emitted unit for that module.
func TestMixedStorageClassAbortsEmission(t *testing.T) {
	units, reporter := Compile(Sources{"mixed.phd": fixture(t, "mixed.phd")}, nil)
	if len(units) != 0 {
		t.Fatalf("expected no emitted units, got %d: %v", len(units), unitNames(units))
	}
	var mixed []diag.Diagnostic
	for _, d := range reporter.Diagnostics() {
		if d.Kind == diag.MixedStorageClass {
			mixed = append(mixed, d)
		}
	}
	if len(mixed) != 1 {
		t.Fatalf("expected exactly 1 MixedStorageClass diagnostic, got %d: %v", len(mixed), reporter.Diagnostics())
	}
	if mixed[0].Module != "Broken" {
		t.Errorf("diagnostic module = %q, want Broken", mixed[0].Module)
	}
}

// TestCompileIsDeterministicAcrossFiles covers spec.md §4.7: compiling the
// same two files in the same Sources map always emits units in sorted path
// order, regardless of Go's randomized map iteration.
func TestCompileIsDeterministicAcrossFiles(t *testing.T) {
	sources := Sources{
		"b_counter.phd":  fixture(t, "counter.phd"),
		"a_priority.phd": fixture(t, "priority.phd"),
	}
	var runs [][]string
	for i := 0; i < 3; i++ {
		units, reporter := Compile(sources, nil)
		if reporter.HasErrors("") {
			t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
		}
		var paths []string
		for _, u := range units {
			paths = append(paths, u.Path)
		}
		runs = append(runs, paths)
	}
	want := []string{"a_priority.phd", "b_counter.phd"}
	for i, got := range runs {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("run %d: unit path order differs (-want +got):\n%s", i, diff)
		}
	}
}
