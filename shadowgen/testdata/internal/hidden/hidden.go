// Package hidden declares a shadow under an internal directory.
package hidden

import _ "github.com/broady/shadow/shadowgen/testdata/platform"

// ShadowOption can only be registered from within testdata.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Option
type ShadowOption struct {
	Name string
}
