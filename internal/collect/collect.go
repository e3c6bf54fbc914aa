// Package collect implements the Module Collector of spec.md §4.1: it scans
// a parsed package's top-level class definitions and keeps the ones that
// extend the Module marker; nested Enum classes stay inside each module's
// body for the semantic pass to compile. The traversal follows the "gather named definitions, flag duplicates"
// shape of the reference corpus's own top-level-definition walkers.
package collect

import (
	"github.com/phdc-lang/phdc/internal/ast"
	"github.com/phdc-lang/phdc/internal/diag"
)

// Definition is one collected top-level definition: a hardware module.
// Its Body is the verbatim class body AST; nothing here interprets it yet.
type Definition struct {
	Name string
	Def  *ast.ClassDef
}

// Collect scans pkg's top-level classes, returning every Module subclass by
// name. Every other top-level class, a top-level Enum subclass included, is
// ignored. Duplicate module names within one file
// report diag.DuplicateDefinition and are dropped from the result (the
// first definition wins for the purpose of continuing to compile siblings).
func Collect(pkg *ast.Package, reporter *diag.Reporter) map[string]*Definition {
	seen := map[string]*Definition{}
	for _, cls := range pkg.Classes {
		if !hasBase(cls, "Module") {
			continue
		}
		if existing, dup := seen[cls.Name]; dup {
			reporter.Errorf(diag.DuplicateDefinition, cls.Name, "", cls.Pos,
				"module %q redefines the module first defined at %v", cls.Name, existing.Def.Pos)
			continue
		}
		seen[cls.Name] = &Definition{Name: cls.Name, Def: cls}
		reporter.Trace(cls.Name, "collected")
	}
	return seen
}

// hasBase reports whether cls's base list mentions base.
func hasBase(cls *ast.ClassDef, base string) bool {
	for _, b := range cls.Bases {
		if b == base {
			return true
		}
	}
	return false
}

// IsEnum reports whether a nested class definition extends Enum.
func IsEnum(cls *ast.ClassDef) bool {
	return hasBase(cls, "Enum")
}
