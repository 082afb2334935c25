// Package unrelated carries decorations the generator does not understand.
package unrelated

//go:generate echo unrelated
//shadow:frobnicate loudly
//lint:ignore U1000 kept for tests
type Plain struct {
	X int `json:"x" shadow:"other"`
}

//shadow:experimental
//go:noinline
func (p *Plain) Value() int { return p.X }

//nolint:unused
type helper struct{}
