// Package shadow defines the runtime contract implemented by generated shadow
// registries.
//
// A shadow is a substitute implementation bound to a target type for a range
// of platform versions. The shadow command scans Go packages for shadow
// declarations and generates a package with a Provider that lists them:
//
//	//go:generate go run github.com/broady/shadow/cmd/shadow gen . ./...
//
// Generated providers register themselves from an init function, so a consumer
// only needs to import the generated package for its side effects and call
// Load to obtain a version-aware Mapping.
package shadow

import (
	"fmt"
	"math"
	"strconv"
)

// Unbounded marks an open end of a Range.
const Unbounded = -1

// Range is an inclusive range of platform versions.
// Either bound may be Unbounded.
type Range struct {
	Min int
	Max int
}

// All is the range covering every platform version.
var All = Range{Min: Unbounded, Max: Unbounded}

func (r Range) lo() int {
	if r.Min == Unbounded {
		return math.MinInt
	}
	return r.Min
}

func (r Range) hi() int {
	if r.Max == Unbounded {
		return math.MaxInt
	}
	return r.Max
}

// Valid reports whether the range is non-empty.
func (r Range) Valid() bool {
	return r.lo() <= r.hi()
}

// Contains reports whether version v falls inside the range.
func (r Range) Contains(v int) bool {
	return r.lo() <= v && v <= r.hi()
}

// Overlaps reports whether r and o share at least one version.
func (r Range) Overlaps(o Range) bool {
	return r.Valid() && o.Valid() && r.lo() <= o.hi() && o.lo() <= r.hi()
}

// Within reports whether r is contained in o.
func (r Range) Within(o Range) bool {
	return o.lo() <= r.lo() && r.hi() <= o.hi()
}

// Less orders ranges by their lower bound, then their upper bound.
func (r Range) Less(o Range) bool {
	if r.lo() != o.lo() {
		return r.lo() < o.lo()
	}
	return r.hi() < o.hi()
}

func (r Range) String() string {
	bound := func(v int) string {
		if v == Unbounded {
			return "*"
		}
		return strconv.Itoa(v)
	}
	return fmt.Sprintf("[%s, %s]", bound(r.Min), bound(r.Max))
}
