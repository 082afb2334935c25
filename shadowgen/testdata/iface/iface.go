// Package iface shadows an interface type.
package iface

import (
	"io"
	"strings"

	"github.com/broady/shadow/shadowgen/testdata/platform"
)

// ShadowOpener shadows platform.Opener.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Opener
type ShadowOpener struct {
	real platform.Opener `shadow:"real"`
}

//shadow:implementation
func (*ShadowOpener) Open(name string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(name)), nil
}
