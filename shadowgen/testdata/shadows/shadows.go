// Package shadows contains shadow declarations used by the shadowgen tests.
package shadows

import (
	"io"

	"github.com/broady/shadow/shadowgen/testdata/platform"
)

// ShadowDummy shadows platform.Dummy.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Dummy
type ShadowDummy struct{}

//shadow:implementation
func (*ShadowDummy) Name() string { return "shadow" }

// ShadowLegacyStatFs shadows StatFs on old platforms.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.StatFs max=17
type ShadowLegacyStatFs struct {
	real *platform.StatFs `shadow:"real"`
}

//shadow:implementation
func (s *ShadowLegacyStatFs) BlockSize() int { return 4096 }

//shadow:implementation real
func (s *ShadowLegacyStatFs) Restat(path string) { s.real.Restat(path) }

// ShadowStatFs shadows StatFs.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.StatFs min=18
type ShadowStatFs struct {
	real  *platform.StatFs `shadow:"real"`
	stats map[string]int
	Path  string
}

//shadow:constructor
func (s *ShadowStatFs) Construct(path string) { s.Path = path }

//shadow:implementation
func (s *ShadowStatFs) BlockSize() int { return 4096 }

//shadow:implementation
func (s *ShadowStatFs) BlockCount() int { return s.stats[s.Path] }

//shadow:implementation min=18
func (s *ShadowStatFs) BlockSizeLong() int64 { return 4096 }

//shadow:implementation min=20
func (s *ShadowStatFs) BlockCountLong() int64 { return int64(s.stats[s.Path]) }

//shadow:resetter
func (s *ShadowStatFs) Reset() { registered = map[string]int{} }

var registered = map[string]int{}

// ShadowBox shadows the generic Box.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Box
type ShadowBox[T any] struct {
	real *platform.Box[T] `shadow:"real"`
}

//shadow:implementation
func (b *ShadowBox[T]) Get() T { return b.real.Get() }

// ShadowPair shadows the generic Pair.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Pair
type ShadowPair[K comparable, V any] struct{}

// ShadowDocumentedObject adds docs.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.DocumentedObject loose
type ShadowDocumentedObject struct{}

// SomeEnum is nested in the shadow's surface.
type SomeEnum int

//shadow:implementation
func (*ShadowDocumentedObject) Lookup(key string, opts map[string]platform.Option) (platform.Option, error) {
	return opts[key], nil
}

//shadow:implementation
func (*ShadowDocumentedObject) Copy(r io.Reader) (*platform.Option, error) { return nil, nil }

//shadow:implementation
func (*ShadowDocumentedObject) Mode() SomeEnum { return 0 }

// Describe has no directive and is not part of the shadow surface.
func (*ShadowDocumentedObject) Describe(w io.Writer) {}

// ShadowUndocumented has its own documentation.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Undocumented loose
type ShadowUndocumented struct {
	Closed []SomeEnum
}

//shadow:implementation
func (*ShadowUndocumented) Close() error { return nil }
