package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phdc-lang/phdc/internal/diag"
)

const counterSrc = `class Counter(Module):
    clk = In(bit)
    rst_n = In(bit)
    count = Out(bit[8])

    if clk.posedge or rst_n.negedge:
        if not rst_n:
            count = 0
        else:
            count = count + 1
`

// TestRunVerboseTraceCoversEveryPipelineStage covers SPEC_FULL.md §9's -v
// trace: one colorized line per module as each of collected, monomorphized,
// unrolled, classified, lowered and emitted completes.
func TestRunVerboseTraceCoversEveryPipelineStage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "counter.phd")
	if err := os.WriteFile(src, []byte(counterSrc), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	outDir := filepath.Join(dir, "out")

	var trace bytes.Buffer
	reporter, err := Run(src, outDir, Options{Trace: &trace})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reporter.HasErrors("") {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}

	log := trace.String()
	for _, want := range []string{
		diag.Info("collected " + src),
		diag.Info("collected Counter"),
		diag.Info("monomorphized Counter"),
		diag.Info("unrolled Counter"),
		diag.Info("classified Counter"),
		diag.Info("lowered Counter"),
		diag.Info("emitted Counter"),
	} {
		if !strings.Contains(log, want) {
			t.Errorf("expected trace to contain %q, got:\n%s", want, log)
		}
	}

	if _, err := os.Stat(filepath.Join(outDir, "Counter.sv")); err != nil {
		t.Errorf("expected Counter.sv to be written: %v", err)
	}
}

// TestRunWithoutVerboseWritesNoTrace covers the opts.Trace == nil case: no
// trace collaborator is installed, and compilation proceeds unaffected.
func TestRunWithoutVerboseWritesNoTrace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "counter.phd")
	if err := os.WriteFile(src, []byte(counterSrc), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	outDir := filepath.Join(dir, "out")

	reporter, err := Run(src, outDir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reporter.HasErrors("") {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	if _, err := os.Stat(filepath.Join(outDir, "Counter.sv")); err != nil {
		t.Errorf("expected Counter.sv to be written: %v", err)
	}
}
