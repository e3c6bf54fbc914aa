// Package diag collects and renders the structured diagnostics produced by
// every compiler stage. Its shape follows the Reporter collaborator that the
// reference elaboration pipeline threads through parsing, semantic analysis
// and lowering: one Reporter per compilation, one Diagnostic per finding,
// module- and entity-scoped so a directory sweep can blame the right file.
package diag

import (
	"fmt"
	"go/token"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// Kind is the error taxonomy of spec.md §7.
type Kind int

const (
	ParseError Kind = iota
	DuplicateDefinition
	UndeclaredName
	NonStaticExpression
	NonStaticLoop
	MixedStorageClass
	IndexOutOfBounds
	WidthMismatch
	UnknownPort
	// LatchWarning, DuplicateEnumValue and ResetNotOutermost are non-fatal
	// supplements documented in SPEC_FULL.md §9; they never abort emission.
	LatchWarning
	DuplicateEnumValue
	ResetNotOutermost
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case DuplicateDefinition:
		return "DuplicateDefinition"
	case UndeclaredName:
		return "UndeclaredName"
	case NonStaticExpression:
		return "NonStaticExpression"
	case NonStaticLoop:
		return "NonStaticLoop"
	case MixedStorageClass:
		return "MixedStorageClass"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case WidthMismatch:
		return "WidthMismatch"
	case UnknownPort:
		return "UnknownPort"
	case LatchWarning:
		return "LatchWarning"
	case DuplicateEnumValue:
		return "DuplicateEnumValue"
	case ResetNotOutermost:
		return "ResetNotOutermost"
	default:
		return "Unknown"
	}
}

// Fatal reports whether a diagnostic of this kind aborts the enclosing
// module's emission. Only WidthMismatch, LatchWarning, DuplicateEnumValue
// and ResetNotOutermost are warnings; everything else is fatal per spec.md §7.
func (k Kind) Fatal() bool {
	switch k {
	case WidthMismatch, LatchWarning, DuplicateEnumValue, ResetNotOutermost:
		return false
	default:
		return true
	}
}

// Diagnostic is one structured record: module name, entity name (a signal,
// port, or instance name, when applicable), source position and message.
type Diagnostic struct {
	Kind    Kind
	Module  string
	Entity  string
	Pos     token.Pos
	Message string
}

func (d Diagnostic) String() string {
	if d.Entity != "" {
		return fmt.Sprintf("%s: %s.%s: %s", d.Kind, d.Module, d.Entity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Module, d.Message)
}

// TraceFunc receives one line of the -v elaboration trace as a pipeline
// stage completes for a module: collected, monomorphized, unrolled,
// classified, lowered or emitted.
type TraceFunc func(module, stage string)

// Reporter accumulates diagnostics for one compilation. It is not
// goroutine-safe; each compiler.Compile call owns exactly one Reporter,
// shared by every file it compiles.
type Reporter struct {
	fset  *token.FileSet
	diags []Diagnostic
	trace TraceFunc
}

// NewReporter constructs an empty Reporter bound to fset for rendering
// human-readable positions.
func NewReporter(fset *token.FileSet) *Reporter {
	return &Reporter{fset: fset}
}

// SetTrace installs fn to receive the -v elaboration trace. A nil fn (the
// default) disables tracing.
func (r *Reporter) SetTrace(fn TraceFunc) {
	r.trace = fn
}

// Trace reports that module has completed stage, when tracing is enabled.
func (r *Reporter) Trace(module, stage string) {
	if r.trace != nil {
		r.trace(module, stage)
	}
}

// SetFileSet rebinds the position-rendering FileSet, mirroring the reference
// loader's SetFileSet call once positions become available.
func (r *Reporter) SetFileSet(fset *token.FileSet) {
	r.fset = fset
}

// Report records a diagnostic.
func (r *Reporter) Report(d Diagnostic) {
	r.diags = append(r.diags, d)
}

// Errorf records a fatal diagnostic of the given kind for module/entity.
func (r *Reporter) Errorf(kind Kind, module, entity string, pos token.Pos, format string, args ...any) {
	r.Report(Diagnostic{Kind: kind, Module: module, Entity: entity, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a non-fatal diagnostic.
func (r *Reporter) Warnf(kind Kind, module, entity string, pos token.Pos, format string, args ...any) {
	if kind.Fatal() {
		panic(errors.Errorf("diag: Warnf called with fatal kind %s", kind))
	}
	r.Report(Diagnostic{Kind: kind, Module: module, Entity: entity, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any fatal diagnostic was recorded for module. An
// empty module matches all modules.
func (r *Reporter) HasErrors(module string) bool {
	for _, d := range r.diags {
		if !d.Kind.Fatal() {
			continue
		}
		if module == "" || d.Module == module {
			return true
		}
	}
	return false
}

// Diagnostics returns every recorded diagnostic in report order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// ForModule returns diagnostics scoped to one module, stable-sorted with
// fatal diagnostics first.
func (r *Reporter) ForModule(module string) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.diags {
		if d.Module == module {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind.Fatal() && !out[j].Kind.Fatal()
	})
	return out
}

// Position renders a token.Pos using the bound FileSet, or "-" when no
// FileSet is bound (e.g. synthesized diagnostics without a source location).
func (r *Reporter) Position(pos token.Pos) string {
	if r.fset == nil || pos == token.NoPos {
		return "-"
	}
	return r.fset.Position(pos).String()
}

// Write renders every diagnostic to w, colorized when color is true.
func (r *Reporter) Write(w io.Writer, color bool) {
	for _, d := range r.diags {
		line := fmt.Sprintf("%s: %s", r.Position(d.Pos), d.String())
		if color {
			line = colorize(d.Kind, line)
		}
		fmt.Fprintln(w, line)
	}
}
