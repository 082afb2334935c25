// Package byname shadows a type that is not part of the build.
package byname

// ShadowHidden stands in for a type the generator cannot see.
//
//shadow:implements name=example.com/internal/vendored.Hidden min=21
type ShadowHidden struct {
	real any `shadow:"real"`
}

//shadow:implementation real
func (s *ShadowHidden) Frob(n int) string { return "" }
