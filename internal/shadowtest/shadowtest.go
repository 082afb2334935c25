// Package shadowtest provides helpers for loading the fixture packages under
// shadowgen/testdata. It is import-cycle safe for external test packages of
// any shadowgen stage.
package shadowtest

import (
	"context"
	"testing"

	"github.com/broady/shadow/shadowgen/ir"
	"github.com/broady/shadow/shadowgen/scan"
	"golang.org/x/tools/go/packages"
)

// Root is the import path prefix of the fixture packages.
const Root = "github.com/broady/shadow/shadowgen/testdata/"

// Platform is the import path of the stand-in platform package.
const Platform = Root + "platform"

// Path returns the import path of the named fixture package, e.g. "shadows" or
// "broken/multi".
func Path(name string) string {
	return Root + name
}

// Paths returns the import paths of the named fixture packages.
func Paths(names ...string) []string {
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = Path(name)
	}
	return paths
}

// Target returns the registry key of a platform type.
func Target(name string) string {
	return Platform + "." + name
}

// Load loads the named fixture packages, failing the test on error.
func Load(t testing.TB, names ...string) []*packages.Package {
	t.Helper()
	pkgs, err := scan.Load(context.Background(), "", Paths(names...)...)
	if err != nil {
		t.Fatalf("failed to load %v: %v", names, err)
	}
	return pkgs
}

// Scan loads and scans the named fixture packages.
func Scan(t testing.TB, names ...string) []*ir.Declaration {
	t.Helper()
	return scan.Scan(Load(t, names...))
}

// Find returns the declaration with the given simple name, failing the test if
// there is not exactly one.
func Find(t testing.TB, decls []*ir.Declaration, name string) *ir.Declaration {
	t.Helper()
	var found *ir.Declaration
	for _, d := range decls {
		if d.Name != name {
			continue
		}
		if found != nil {
			t.Fatalf("more than one declaration named %s: %s and %s", name, found.Key(), d.Key())
		}
		found = d
	}
	if found == nil {
		t.Fatalf("declaration %s not found", name)
	}
	return found
}

// Member returns the member of d with the given name, or nil.
func Member(d *ir.Declaration, name string) *ir.Member {
	for _, m := range d.Surface() {
		if m.Name == name {
			return m
		}
	}
	return nil
}
