// Command program declares a shadow in a package that cannot be imported.
package main

import _ "github.com/broady/shadow/shadowgen/testdata/platform"

// ShadowDummy is exported but unreachable.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Dummy
type ShadowDummy struct{}

func main() {}
