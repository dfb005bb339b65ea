// Package symbol implements process-wide identifier interning.
//
// Every identifier that reaches the compiler or the hygiene layer is
// looked up here first, so that identity comparisons (identifier=?,
// constant-pool symbol dedup, syntactic-closure binding lookups) reduce
// to comparing small integers instead of strings.
package symbol

import "fmt"

// ID is a handle for an interned symbol name. The zero ID is never
// returned by Intern; it is reserved to mean "no symbol".
type ID uint32

// String renders id using the Default table. Symbols interned in a
// different table print as a diagnostic placeholder.
func (id ID) String() string {
	if id == 0 {
		return "#<no-symbol>"
	}
	if name, ok := Default.Name(id); ok {
		return name
	}
	return fmt.Sprintf("#<symbol %d>", uint32(id))
}
