// Package missingreal declares a catch-all shadow without a real-object
// binding next to a valid shadow.
package missingreal

import _ "github.com/broady/shadow/shadowgen/testdata/platform"

// ShadowAnything needs the real object but declares no binding.
//
//shadow:implements *
type ShadowAnything struct{}

//shadow:implementation
func (*ShadowAnything) String() string { return "" }

// ShadowFine is valid on its own.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Dummy
type ShadowFine struct{}

//shadow:implementation
func (*ShadowFine) Name() string { return "fine" }

// ShadowCaller calls through to a real object it does not have.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.OtherDummy
type ShadowCaller struct{}

//shadow:implementation real
func (*ShadowCaller) Name() string { return "" }
