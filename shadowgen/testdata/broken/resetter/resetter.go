// Package resetter declares a resetter the registry cannot call.
package resetter

import _ "github.com/broady/shadow/shadowgen/testdata/platform"

// ShadowDummy resets through an unexported method.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Dummy
type ShadowDummy struct{}

//shadow:resetter
func (*ShadowDummy) reset() {}
