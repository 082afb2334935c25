// Package iface shadows an interface method with the wrong signature.
package iface

import (
	"io"

	_ "github.com/broady/shadow/shadowgen/testdata/platform"
)

// ShadowOpener drops the error result of Open.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Opener
type ShadowOpener struct{}

//shadow:implementation
func (*ShadowOpener) Open(name string) io.ReadCloser { return nil }
