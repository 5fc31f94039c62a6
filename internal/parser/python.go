package parser

import (
	"github.com/jarredhawkins/linestruct/internal/pattern"
)

// Python header patterns, in dispatch order
var (
	// def name(...):
	// async def name(...):
	pyFunction = pattern.Named{Name: "function", Set: pattern.MustNew(`^def\s+.*`, `^async\s+def\s+`)}

	// class Name:
	pyClass = pattern.Named{Name: "class", Set: pattern.MustNew(`^class .*`)}

	// Indented def inside a class or function body
	pyMethod = pattern.Named{Name: "method", Set: pattern.MustNew(`^\s+def\s+.*`, `^\s+async\s+def\s+`)}

	// Any other statement at column 0 (imports, assignments, decorators, calls)
	pyGlobal = pattern.Named{Name: "global", Set: pattern.MustNew(`^[^\s]`)}
)

// RegisterPython adds the Python matchers. "global" is registered last so
// that def and class lines at column 0 are claimed by their own names
func RegisterPython(r *Registry) {
	r.RegisterNamed(pyFunction, pyClass, pyMethod, pyGlobal)
}
