// Package anything declares a catch-all shadow.
package anything

// ShadowAnything applies to any type without a more specific shadow.
//
//shadow:implements *
type ShadowAnything struct {
	real any `shadow:"real"`
}

//shadow:implementation
func (s *ShadowAnything) String() string { return "anything" }
