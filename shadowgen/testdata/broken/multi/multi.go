// Package multi contains one invalid shadow per diagnostic code.
package multi

import (
	"github.com/broady/shadow/shadowgen/testdata/platform"
)

// ShadowNope targets a type that does not exist.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Nope
type ShadowNope struct{}

// ShadowBoxed is not generic but Box is.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Box
type ShadowBoxed struct{}

// ShadowInverted has an empty range.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.StatFs min=20 max=10
type ShadowInverted struct{}

// ShadowNarrow has a member outside its range.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Dummy max=10
type ShadowNarrow struct{}

//shadow:implementation min=5 max=15
func (*ShadowNarrow) Name() string { return "" }

// ShadowMissing has assorted member problems.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.OtherDummy
type ShadowMissing struct{}

//shadow:implementation
func (*ShadowMissing) Frob() {}

//shadow:resetter
func (*ShadowMissing) Reset(x int) {}

//shadow:resetter
func (*ShadowMissing) ResetAgain() {}

//shadow:implementation min=soon
func (*ShadowMissing) Name() string { return "" }

// ShadowWrongReal binds a real object of the wrong type.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Dummy min=11
type ShadowWrongReal struct {
	real *platform.StatFs `shadow:"real"`
}

// ShadowOverlapA and ShadowOverlapB claim the same versions of StatFs.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.StatFs min=1 max=5
type ShadowOverlapA struct{}

// ShadowOverlapB overlaps ShadowOverlapA.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.StatFs min=5 max=9
type ShadowOverlapB struct{}

// ShadowSignature returns the wrong type.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Undocumented
type ShadowSignature struct{}

//shadow:implementation
func (*ShadowSignature) Close() int { return 0 }
