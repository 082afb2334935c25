// Package platform contains stand-in platform types that the test shadows
// substitute for.
package platform

import "io"

// Dummy is the simplest shadowable type.
type Dummy struct{}

// Name returns the dummy's name.
func (*Dummy) Name() string { return "dummy" }

// OtherDummy shares its shadow's simple name with Dummy's shadow.
type OtherDummy struct{}

// Name returns the dummy's name.
func (*OtherDummy) Name() string { return "other" }

// StatFs reports file system statistics.
type StatFs struct {
	path string
}

// NewStatFs returns statistics for the file system at path.
func NewStatFs(path string) *StatFs { return &StatFs{path: path} }

func (s *StatFs) BlockSize() int        { return 0 }
func (s *StatFs) BlockCount() int       { return 0 }
func (s *StatFs) Restat(path string)    { s.path = path }
func (s *StatFs) BlockSizeLong() int64  { return 0 }
func (s *StatFs) BlockCountLong() int64 { return 0 }

// Box holds a single value.
type Box[T any] struct {
	v T
}

// Get returns the boxed value.
func (b *Box[T]) Get() T { return b.v }

// Pair holds two values.
type Pair[K comparable, V any] struct {
	k K
	v V
}

// DocumentedObject is an object with documentation.
//
// Platform documentation goes here!
type DocumentedObject struct{}

// Option configures a DocumentedObject.
type Option struct {
	Name string
}

// Lookup finds options by key.
func (*DocumentedObject) Lookup(key string, opts map[string]Option) (Option, error) {
	return opts[key], nil
}

// Copy copies from r.
func (*DocumentedObject) Copy(r io.Reader) (*Option, error) { return nil, nil }

// Mode returns the object's mode.
func (*DocumentedObject) Mode() int { return 0 }

type Undocumented struct{}

func (*Undocumented) Close() error { return nil }

// Opener opens named resources.
type Opener interface {
	Open(name string) (io.ReadCloser, error)
}
