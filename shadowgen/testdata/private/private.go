// Package private declares a shadow that is not exported.
package private

import _ "github.com/broady/shadow/shadowgen/testdata/platform"

// shadowHidden type-checks against its target but is never registered.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Dummy
type shadowHidden struct{}

//shadow:implementation
func (*shadowHidden) Name() string { return "hidden" }

// ShadowVisible is registered.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Dummy
type ShadowVisible struct{}
