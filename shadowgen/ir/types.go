// Package ir defines the declaration model shared by the shadowgen stages.
//
// The scanner produces Declarations, the validator checks them and groups the
// registered ones into a Mapping, and the generators consume both. Every value
// in this package lives for a single generation round.
package ir

import "strings"

// GoIdentifier represents a named Go entity with package context.
type GoIdentifier struct {
	// Name is the unqualified identifier.
	Name string

	// Package is the fully qualified package path.
	// Empty for builtin types and the catch-all target.
	Package string
}

// IsZero returns true if the identifier is empty.
func (id GoIdentifier) IsZero() bool {
	return id.Name == "" && id.Package == ""
}

// String returns the qualified name, e.g. "example.com/os.StatFs".
func (id GoIdentifier) String() string {
	if id.Package == "" {
		return id.Name
	}
	return id.Package + "." + id.Name
}

// ParseIdentifier splits a qualified name at the first dot after the last
// slash. Names without a package keep Package empty.
func ParseIdentifier(s string) GoIdentifier {
	slash := strings.LastIndex(s, "/")
	dot := strings.Index(s[slash+1:], ".")
	if dot < 0 {
		return GoIdentifier{Name: s}
	}
	dot += slash + 1
	return GoIdentifier{Package: s[:dot], Name: s[dot+1:]}
}
