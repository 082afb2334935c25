// Package shadows holds a shadow whose simple name collides with one in the
// top-level shadows package.
package shadows

import _ "github.com/broady/shadow/shadowgen/testdata/platform"

// ShadowDummy shadows platform.OtherDummy.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.OtherDummy
type ShadowDummy struct{}

//shadow:implementation
func (*ShadowDummy) Name() string { return "outer" }
