// Package bound constrains a generic shadow with an unexported interface.
package bound

import _ "github.com/broady/shadow/shadowgen/testdata/platform"

type number interface {
	~int | ~int64
}

// ShadowBox only boxes numbers.
//
//shadow:implements github.com/broady/shadow/shadowgen/testdata/platform.Box
type ShadowBox[T number] struct{}
