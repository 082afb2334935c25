// Package options holds the flags shared by the gen and check commands.
package options

import (
	"log/slog"
	"sort"

	"github.com/broady/shadow/shadowgen"
)

// DefaultPatterns is scanned when no package patterns are given.
var DefaultPatterns = []string{"./..."}

// Flags select the packages to scan and configure the generated package.
type Flags struct {
	Patterns                []string          `arg:"" optional:"" help:"Package patterns to scan (default: ./...)."`
	Dir                     string            `help:"Directory to load packages from." type:"path"`
	Config                  string            `help:"YAML configuration file." short:"c" type:"existingfile"`
	Package                 string            `help:"Import path of the generated package (default: shadows)." short:"p"`
	NoInstrumentPackageScan bool              `help:"Emit an empty instrumentation package list."`
	Option                  map[string]string `help:"Processor option as key=value (package, instrument-package-scan)." short:"A"`
	TargetDocsOnly          bool              `help:"Document targets only from their own doc comments."`
}

// Resolve builds the round configuration. The configuration file is applied
// first, then -A options, then explicit flags.
func (f *Flags) Resolve(logger *slog.Logger) (*shadowgen.Config, error) {
	cfg := &shadowgen.Config{Logger: logger}

	if f.Config != "" {
		fc, err := shadowgen.LoadConfigFile(f.Config)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(fc)
	}

	if len(f.Option) > 0 {
		pairs := make([]string, 0, len(f.Option))
		for k, v := range f.Option {
			pairs = append(pairs, k+"="+v)
		}
		sort.Strings(pairs)
		opts, err := shadowgen.ParseOptions(shadowgen.SplitOptions(pairs))
		if err != nil {
			return nil, err
		}
		cfg = cfg.Merge(opts)
	}

	flags := &shadowgen.Config{
		Package:        f.Package,
		Packages:       f.Patterns,
		Dir:            f.Dir,
		TargetDocsOnly: f.TargetDocsOnly,
	}
	if f.NoInstrumentPackageScan {
		off := false
		flags.InstrumentPackageScan = &off
	}
	cfg = cfg.Merge(flags)

	if len(cfg.Packages) == 0 {
		cfg.Packages = DefaultPatterns
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
