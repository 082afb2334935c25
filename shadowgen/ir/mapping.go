package ir

import (
	"fmt"
	"sort"
)

// Mapping groups registered declarations by target type.
// Variants of one target are ordered by ascending minimum version and never
// overlap, so at most one variant is active for any platform version.
type Mapping struct {
	targets map[string][]*Declaration
}

// OverlapError reports two variants of one target whose ranges overlap.
type OverlapError struct {
	Target string
	First  *Declaration
	Second *Declaration
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s %s overlaps %s %s for target %s",
		e.Second.Key(), e.Second.Range, e.First.Key(), e.First.Range, e.Target)
}

// NewMapping groups decls by target. Every overlapping pair is reported;
// the mapping is nil if there is at least one.
func NewMapping(decls []*Declaration) (*Mapping, []*OverlapError) {
	m := &Mapping{targets: make(map[string][]*Declaration)}
	for _, d := range decls {
		target := d.TargetName()
		m.targets[target] = append(m.targets[target], d)
	}

	var overlaps []*OverlapError
	for _, target := range m.Targets() {
		variants := m.targets[target]
		sort.SliceStable(variants, func(i, j int) bool {
			if variants[i].Range != variants[j].Range {
				return variants[i].Range.Less(variants[j].Range)
			}
			return variants[i].Key() < variants[j].Key()
		})
		for i := range variants {
			for j := i + 1; j < len(variants); j++ {
				if variants[i].Range.Overlaps(variants[j].Range) {
					overlaps = append(overlaps, &OverlapError{
						Target: target,
						First:  variants[i],
						Second: variants[j],
					})
				}
			}
		}
	}

	if len(overlaps) > 0 {
		return nil, overlaps
	}
	return m, nil
}

// Targets returns the target names, sorted.
func (m *Mapping) Targets() []string {
	targets := make([]string, 0, len(m.targets))
	for t := range m.targets {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Variants returns the declarations for target in ascending version order.
func (m *Mapping) Variants(target string) []*Declaration {
	return m.targets[target]
}

// Declarations returns every declaration ordered by target, then version.
func (m *Mapping) Declarations() []*Declaration {
	var all []*Declaration
	for _, t := range m.Targets() {
		all = append(all, m.targets[t]...)
	}
	return all
}

// Lookup returns the variant of target active at version, or nil.
func (m *Mapping) Lookup(target string, version int) *Declaration {
	for _, d := range m.targets[target] {
		if d.Range.Contains(version) {
			return d
		}
	}
	return nil
}

// Len returns the number of declarations in the mapping.
func (m *Mapping) Len() int {
	n := 0
	for _, vs := range m.targets {
		n += len(vs)
	}
	return n
}
