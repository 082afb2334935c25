package shadow

import (
	"log/slog"
	"sync"
)

// Provider is implemented by generated shadow registries.
type Provider interface {
	// Entries returns every shadow known to the provider.
	Entries() []Entry

	// ProvidedPackageNames returns the packages whose types are eligible for
	// instrumentation. It may be empty.
	ProvidedPackageNames() []string

	// Reset calls the resetter of every shadow that declares one.
	Reset()
}

var (
	mu        sync.Mutex
	providers []Provider
)

// Register makes a provider available to Load.
// Generated packages call it from their init function.
func Register(p Provider) {
	if p == nil {
		panic("shadow: Register provider is nil")
	}
	mu.Lock()
	defer mu.Unlock()
	providers = append(providers, p)
}

// Providers returns the registered providers in registration order.
func Providers() []Provider {
	mu.Lock()
	defer mu.Unlock()
	return append([]Provider(nil), providers...)
}

// Load merges the entries of every registered provider into one Mapping.
func Load() (*Mapping, error) {
	var entries []Entry
	for _, p := range Providers() {
		entries = append(entries, p.Entries()...)
	}
	m, err := NewMapping(entries...)
	if err != nil {
		return nil, err
	}
	slog.Debug("shadow mapping loaded", "targets", len(m.Targets()), "entries", len(entries))
	return m, nil
}

// ResetAll resets every registered provider.
func ResetAll() {
	for _, p := range Providers() {
		p.Reset()
	}
}
