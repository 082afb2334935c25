// Package shadowgen runs shadow generation rounds.
//
// A round loads the configured packages, scans them for shadow declarations,
// validates every declaration, and only if no diagnostic was reported writes
// the registry source, the service listing and the documentation records:
//
//	result, err := shadowgen.FromPackages("./...").
//	    Package("example.com/app/shadows").
//	    ToDir("./shadows")
//
// A failed round writes nothing. Its diagnostics are returned as a
// validate.Diagnostics error.
package shadowgen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/broady/shadow/shadowgen/docs"
	"github.com/broady/shadow/shadowgen/golang"
	"github.com/broady/shadow/shadowgen/ir"
	"github.com/broady/shadow/shadowgen/resolve"
	"github.com/broady/shadow/shadowgen/scan"
	"github.com/broady/shadow/shadowgen/validate"
)

// Result describes a completed round.
type Result struct {
	// Declarations is the number of shadow declarations found.
	Declarations int

	// Registered is the number of declarations in the generated registry.
	Registered int

	// Files lists every file written, source first.
	Files []golang.OutputFile

	// Diagnostics holds every problem found. A round with diagnostics writes
	// no files.
	Diagnostics validate.Diagnostics
}

// Check loads and validates the configured packages without generating
// anything.
func Check(ctx context.Context, cfg *Config) (*validate.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = applyConfigDefaults(cfg)
	r, _, err := check(ctx, cfg)
	return r, err
}

func check(ctx context.Context, cfg *Config) (*validate.Result, []*ir.Declaration, error) {
	logger := cfg.logger()

	pkgs, err := scan.Load(ctx, cfg.Dir, cfg.Packages...)
	if err != nil {
		return nil, nil, err
	}
	decls := scan.Scan(pkgs)
	logger.Debug("scanned packages",
		slog.Int("packages", len(pkgs)),
		slog.Int("declarations", len(decls)))

	r := validate.Validate(decls, validate.ForPackage(cfg.Package))
	for _, d := range r.Diagnostics {
		logger.Error(d.Message,
			slog.String("code", string(d.Code)),
			slog.String("pos", d.Pos.String()),
			slog.String("shadow", d.Decl))
	}
	for _, d := range r.Valid {
		if d.ExcludedFromRegistry {
			logger.Debug("shadow excluded from registry", slog.String("shadow", d.Key()))
		}
	}
	return r, decls, nil
}

// Run executes one round. If any diagnostic is reported, Run returns the
// diagnostics as its error and writes nothing.
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.OutDir == "" && cfg.Sink == nil {
		return nil, fmt.Errorf("OutDir is required")
	}
	cfg = applyConfigDefaults(cfg)
	logger := cfg.logger()
	start := time.Now()

	r, decls, err := check(ctx, cfg)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Declarations: len(decls),
		Registered:   len(r.Registered),
		Diagnostics:  r.Diagnostics,
	}
	if err := r.Err(); err != nil {
		return result, err
	}

	in := &golang.Input{
		Mapping: r.Mapping,
		Names:   resolve.Declarations(r.Registered, golang.ProviderType),
	}
	var docOpts []docs.Option
	if cfg.TargetDocsOnly {
		docOpts = append(docOpts, docs.TargetDocsOnly())
	}
	records := docs.Extract(r.Mapping.Declarations(), docOpts...)

	out := cfg.sink()
	gen, err := golang.Generate(ctx, in, golang.GenerateOptions{
		Sink: out,
		Config: golang.GeneratorConfig{
			Package:               cfg.Package,
			FileName:              cfg.FileName,
			InstrumentPackageScan: cfg.InstrumentPackages(),
		},
	})
	if err != nil {
		return result, fmt.Errorf("failed to generate registry: %w", err)
	}
	result.Files = append(result.Files, gen.Files...)

	paths, err := docs.Write(ctx, out, cfg.DocsDir, records)
	if err != nil {
		return result, fmt.Errorf("failed to write documentation: %w", err)
	}
	for _, p := range paths {
		result.Files = append(result.Files, golang.OutputFile{Path: p})
	}

	logger.Info("generated shadow registry",
		slog.String("package", cfg.Package),
		slog.Int("shadows", gen.ShadowsGenerated),
		slog.Int("docs", len(paths)),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}
