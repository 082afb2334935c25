package shadow

import (
	"fmt"
	"slices"
	"sort"
)

// Entry binds one shadow type to a target type for a range of versions.
type Entry struct {
	// Target is the fully qualified target type, e.g. "example.com/os.StatFs".
	// The catch-all target is "*".
	Target string

	// Shadow is the fully qualified shadow type.
	Shadow string

	// Name is the identifier the shadow is known by in the generated package.
	Name string

	// Range is the set of platform versions the shadow is active for.
	Range Range
}

// OverlapError reports two entries for the same target whose ranges overlap.
type OverlapError struct {
	Target string
	First  Entry
	Second Entry
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("shadows %s %s and %s %s for %s overlap",
		e.First.Shadow, e.First.Range, e.Second.Shadow, e.Second.Range, e.Target)
}

// Mapping is a version-aware lookup table from target types to shadows.
// For any target and version at most one entry is active.
type Mapping struct {
	variants map[string][]Entry
}

// NewMapping builds a Mapping from entries.
// Entries for the same target are ordered by ascending minimum version.
// It returns an *OverlapError if two entries for one target overlap, and an
// error if any entry has an empty range.
func NewMapping(entries ...Entry) (*Mapping, error) {
	m := &Mapping{variants: make(map[string][]Entry)}
	for _, e := range entries {
		if !e.Range.Valid() {
			return nil, fmt.Errorf("shadow %s has empty version range %s", e.Shadow, e.Range)
		}
		m.variants[e.Target] = append(m.variants[e.Target], e)
	}

	for target, vs := range m.variants {
		sort.SliceStable(vs, func(i, j int) bool {
			return vs[i].Range.Less(vs[j].Range)
		})
		for i := 1; i < len(vs); i++ {
			if vs[i-1].Range.Overlaps(vs[i].Range) {
				return nil, &OverlapError{Target: target, First: vs[i-1], Second: vs[i]}
			}
		}
	}
	return m, nil
}

// Lookup returns the entry active for target at version.
func (m *Mapping) Lookup(target string, version int) (Entry, bool) {
	for _, e := range m.variants[target] {
		if e.Range.Contains(version) {
			return e, true
		}
	}
	return Entry{}, false
}

// Variants returns every entry for target in ascending version order.
func (m *Mapping) Variants(target string) []Entry {
	return slices.Clone(m.variants[target])
}

// Targets returns all target names, sorted.
func (m *Mapping) Targets() []string {
	targets := make([]string, 0, len(m.variants))
	for t := range m.variants {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
