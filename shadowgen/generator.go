package shadowgen

import (
	"context"
	"log/slog"

	"github.com/broady/shadow/shadowgen/sink"
)

// Generator provides a fluent API for generation rounds.
// Create with FromPackages() and configure with method chaining.
//
// Example:
//
//	shadowgen.FromPackages("./shadows/...").
//	    Package("example.com/app/gen/shadows").
//	    WithoutInstrumentPackageScan().
//	    ToDir("./gen/shadows")
type Generator struct {
	cfg Config
}

// FromPackages creates a Generator scanning the given package patterns.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Packages: patterns}}
}

// FromConfig creates a Generator starting from cfg.
func FromConfig(cfg *Config) *Generator {
	return &Generator{cfg: *cfg}
}

// Package sets the import path of the generated package.
func (g *Generator) Package(p string) *Generator {
	g.cfg.Package = p
	return g
}

// WithoutInstrumentPackageScan leaves the provider's package list empty.
func (g *Generator) WithoutInstrumentPackageScan() *Generator {
	off := false
	g.cfg.InstrumentPackageScan = &off
	return g
}

// Dir sets the directory packages are loaded from.
func (g *Generator) Dir(dir string) *Generator {
	g.cfg.Dir = dir
	return g
}

// FileName sets the generated source file name.
func (g *Generator) FileName(name string) *Generator {
	g.cfg.FileName = name
	return g
}

// DocsDir sets the directory documentation records are written to.
func (g *Generator) DocsDir(dir string) *Generator {
	g.cfg.DocsDir = dir
	return g
}

// TargetDocsOnly skips documenting targets that have no doc comment of
// their own.
func (g *Generator) TargetDocsOnly() *Generator {
	g.cfg.TargetDocsOnly = true
	return g
}

// WithLogger sets the logger for the round.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.cfg.Logger = logger
	return g
}

// Config returns a copy of the accumulated configuration.
func (g *Generator) Config() *Config {
	cfg := g.cfg
	return &cfg
}

// ToDir runs the round and writes its artifacts to dir.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(dir string) (*Result, error) {
	cfg := g.cfg
	cfg.OutDir = dir
	cfg.Sink = nil
	return Run(context.Background(), &cfg)
}

// Generate runs the round in memory and returns the sink holding its
// artifacts. Use ToDir() to write files to disk instead.
func (g *Generator) Generate(ctx context.Context) (*Result, *sink.MemorySink, error) {
	cfg := g.cfg
	mem := sink.NewMemorySink()
	cfg.Sink = mem
	result, err := Run(ctx, &cfg)
	if err != nil {
		return result, nil, err
	}
	return result, mem, nil
}
