package ir

import (
	"testing"

	"github.com/broady/shadow"
)

func decl(pkg, name, target string, r shadow.Range) *Declaration {
	return &Declaration{
		Name:     name,
		Package:  pkg,
		Target:   ParseIdentifier(target),
		Range:    r,
		Exported: true,
	}
}

func TestNewMapping_VersionGuard(t *testing.T) {
	const v = 21
	older := decl("example.com/shadows/legacy", "ShadowStatFs", "example.com/os.StatFs", shadow.Range{Min: 0, Max: v - 1})
	newer := decl("example.com/shadows", "ShadowStatFs", "example.com/os.StatFs", shadow.Range{Min: v, Max: shadow.Unbounded})
	other := decl("example.com/shadows", "ShadowFile", "example.com/os.File", shadow.All)

	m, overlaps := NewMapping([]*Declaration{newer, other, older})
	if len(overlaps) > 0 {
		t.Fatalf("unexpected overlaps: %v", overlaps)
	}

	for version := 0; version <= 2*v; version++ {
		got := m.Lookup("example.com/os.StatFs", version)
		want := older
		if version >= v {
			want = newer
		}
		if got != want {
			t.Errorf("version %d: got %v, want %s", version, got, want.Key())
		}
	}

	targets := m.Targets()
	if len(targets) != 2 || targets[0] != "example.com/os.File" {
		t.Errorf("Targets() = %v", targets)
	}

	all := m.Declarations()
	if len(all) != 3 || all[0] != other || all[1] != older || all[2] != newer {
		t.Errorf("Declarations() not ordered by target then version")
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d", m.Len())
	}
}

func TestNewMapping_ReportsEveryOverlap(t *testing.T) {
	wide := decl("a", "Wide", "t.T", shadow.Range{Min: 0, Max: 100})
	first := decl("b", "First", "t.T", shadow.Range{Min: 10, Max: 20})
	second := decl("c", "Second", "t.T", shadow.Range{Min: 30, Max: 40})

	m, overlaps := NewMapping([]*Declaration{first, second, wide})
	if m != nil {
		t.Fatal("mapping should be nil when variants overlap")
	}
	if len(overlaps) != 2 {
		t.Fatalf("got %d overlaps, want 2", len(overlaps))
	}
	for _, o := range overlaps {
		if o.First != wide {
			t.Errorf("expected wide variant first, got %s", o.First.Key())
		}
		if o.Target != "t.T" {
			t.Errorf("target = %q", o.Target)
		}
	}
}

func TestNewMapping_CatchAll(t *testing.T) {
	d := decl("a", "ShadowAnything", "", shadow.All)
	d.CatchAll = true

	m, overlaps := NewMapping([]*Declaration{d})
	if len(overlaps) > 0 {
		t.Fatal(overlaps)
	}
	if m.Lookup("*", 5) != d {
		t.Error("catch-all shadow not registered under *")
	}
}
