package shadowgen

import (
	"errors"
	"fmt"
	"go/token"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/broady/shadow/shadowgen/docs"
	"github.com/broady/shadow/shadowgen/golang"
	"github.com/broady/shadow/shadowgen/sink"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// DefaultPackage is the generated package used when none is configured.
const DefaultPackage = "shadows"

var (
	configValidator = newValidator()
	schemaDecoder   = newDecoder()
)

// Config holds the configuration for one generation round.
type Config struct {
	// Package is the import path of the generated package. Its last element
	// must be a valid package name.
	// Default: "shadows"
	Package string `validate:"required,importpath"`

	// InstrumentPackageScan controls whether the generated provider lists the
	// target packages eligible for instrumentation.
	// Default: true
	InstrumentPackageScan *bool

	// Packages are the package patterns to scan, resolved relative to Dir.
	// e.g. []string{"./..."}
	Packages []string `validate:"required,min=1,dive,required"`

	// Dir is the directory packages are loaded from. Empty means the current
	// directory.
	Dir string

	// OutDir is the directory artifacts are written to. Required by Run
	// unless Sink is set.
	OutDir string

	// FileName is the generated source file name.
	// Default: "shadows_gen.go"
	FileName string `validate:"omitempty,endswith=.go,excludes=/"`

	// DocsDir is the directory documentation records are written to,
	// relative to OutDir.
	// Default: "docs/json"
	DocsDir string

	// TargetDocsOnly documents a target only from its own doc comment. By
	// default a target without one is described by its shadow's doc comment.
	TargetDocsOnly bool

	// Sink overrides the filesystem sink rooted at OutDir.
	Sink sink.OutputSink

	// Logger receives progress and diagnostics. If nil, slog.Default() is
	// used.
	Logger *slog.Logger
}

// options are the processor options accepted by ParseOptions.
type options struct {
	Package               string `schema:"package"`
	InstrumentPackageScan *bool  `schema:"instrument-package-scan"`
}

// ParseOptions decodes processor options of the form key=value into a
// Config. Recognized keys are "package" and "instrument-package-scan";
// unknown keys are ignored.
func ParseOptions(values map[string][]string) (*Config, error) {
	var opts options
	if err := schemaDecoder.Decode(&opts, values); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &Config{
		Package:               opts.Package,
		InstrumentPackageScan: opts.InstrumentPackageScan,
	}, nil
}

// SplitOptions converts "key=value" pairs into the form ParseOptions
// accepts. A pair without "=" sets the key to "true".
func SplitOptions(pairs []string) map[string][]string {
	values := make(map[string][]string)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			value = "true"
		}
		values[key] = append(values[key], value)
	}
	return values
}

// fileConfig is the structure of a shadow.yaml configuration file.
type fileConfig struct {
	Package               string   `yaml:"package"`
	InstrumentPackageScan *bool    `yaml:"instrument-package-scan"`
	Packages              []string `yaml:"packages"`
	Dir                   string   `yaml:"dir"`
	Out                   string   `yaml:"out"`
	File                  string   `yaml:"file"`
	Docs                  string   `yaml:"docs"`
	TargetDocsOnly        bool     `yaml:"target-docs-only"`
}

// LoadConfigFile reads a YAML configuration file. Relative directories in the
// file are resolved against the file's own directory.
func LoadConfigFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	base := filepath.Dir(filename)
	rel := func(dir string) string {
		if dir == "" || filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(base, dir)
	}
	dir := rel(fc.Dir)
	if dir == "" {
		dir = base
	}

	return &Config{
		Package:               fc.Package,
		InstrumentPackageScan: fc.InstrumentPackageScan,
		Packages:              fc.Packages,
		Dir:                   dir,
		OutDir:                rel(fc.Out),
		FileName:              fc.File,
		DocsDir:               fc.Docs,
		TargetDocsOnly:        fc.TargetDocsOnly,
	}, nil
}

// Merge returns a copy of c with the non-zero fields of o applied on top.
func (c *Config) Merge(o *Config) *Config {
	result := *c
	if o == nil {
		return &result
	}
	if o.Package != "" {
		result.Package = o.Package
	}
	if o.InstrumentPackageScan != nil {
		result.InstrumentPackageScan = o.InstrumentPackageScan
	}
	if len(o.Packages) > 0 {
		result.Packages = o.Packages
	}
	if o.Dir != "" {
		result.Dir = o.Dir
	}
	if o.OutDir != "" {
		result.OutDir = o.OutDir
	}
	if o.FileName != "" {
		result.FileName = o.FileName
	}
	if o.DocsDir != "" {
		result.DocsDir = o.DocsDir
	}
	if o.TargetDocsOnly {
		result.TargetDocsOnly = true
	}
	if o.Sink != nil {
		result.Sink = o.Sink
	}
	if o.Logger != nil {
		result.Logger = o.Logger
	}
	return &result
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	cfg := applyConfigDefaults(c)
	if err := configValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = describe(fe)
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "importpath":
		return fmt.Sprintf("%s %q is not a valid package import path", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s %q failed %s", fe.Field(), fe.Value(), fe.Tag())
	}
}

// InstrumentPackages reports whether instrumentation scanning is enabled.
func (c *Config) InstrumentPackages() bool {
	return c.InstrumentPackageScan == nil || *c.InstrumentPackageScan
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Config) sink() sink.OutputSink {
	if c.Sink != nil {
		return c.Sink
	}
	return sink.NewFilesystemSink(c.OutDir)
}

func applyConfigDefaults(cfg *Config) *Config {
	result := *cfg

	if result.Package == "" {
		result.Package = DefaultPackage
	}
	if result.InstrumentPackageScan == nil {
		on := true
		result.InstrumentPackageScan = &on
	}
	if result.FileName == "" {
		result.FileName = golang.DefaultFileName
	}
	if result.DocsDir == "" {
		result.DocsDir = docs.DefaultDir
	}
	return &result
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("importpath", func(fl validator.FieldLevel) bool {
		return ValidPackage(fl.Field().String())
	})
	return v
}

// ValidPackage reports whether p can be the import path of the generated
// package.
func ValidPackage(p string) bool {
	return module.CheckImportPath(p) == nil && token.IsIdentifier(path.Base(p))
}

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}
