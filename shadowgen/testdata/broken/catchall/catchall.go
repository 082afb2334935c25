// Package catchall binds a catch-all shadow to a concrete real object.
package catchall

import "github.com/broady/shadow/shadowgen/testdata/platform"

// ShadowAnything declares a real object that cannot hold arbitrary types.
//
//shadow:implements *
type ShadowAnything struct {
	real *platform.Dummy `shadow:"real"`
}

//shadow:implementation
func (*ShadowAnything) String() string { return "" }
