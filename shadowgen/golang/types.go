// Package golang emits the Go source of a shadow registry.
//
// The generated compilation unit declares one type alias per registered
// shadow and a Shadows type implementing shadow.Provider, registered from an
// init function. A service listing names the provider so that tooling can
// discover it without knowing the generated package in advance.
package golang

import (
	"context"

	"github.com/broady/shadow/shadowgen/ir"
	"github.com/broady/shadow/shadowgen/sink"
)

const (
	// DefaultFileName is the name of the generated source file.
	DefaultFileName = "shadows_gen.go"

	// ServicePath is the path of the service listing, relative to the sink.
	ServicePath = "services/" + RuntimePath + ".Provider"

	// RuntimePath is the import path of the runtime package.
	RuntimePath = "github.com/broady/shadow"

	// ProviderType is the name of the generated provider type.
	ProviderType = "Shadows"

	// Header starts every generated file.
	Header = "// Code generated by shadow. DO NOT EDIT."
)

// Input is the resolved declaration set of one round.
type Input struct {
	// Mapping holds the registered declarations.
	Mapping *ir.Mapping

	// Names maps declaration keys to their identifiers in the generated
	// package. Missing names are resolved by the generator.
	Names map[string]string
}

// GenerateOptions configures generation behavior.
type GenerateOptions struct {
	// Sink receives generated output files.
	Sink sink.OutputSink

	// Config contains generator configuration.
	Config GeneratorConfig
}

// GeneratorConfig configures the generated package.
type GeneratorConfig struct {
	// Package is the import path of the generated package. Its last element
	// is the package clause.
	Package string

	// FileName is the generated source file name (default: DefaultFileName).
	FileName string

	// InstrumentPackageScan controls whether the provider lists the target
	// packages eligible for instrumentation. When false the list is empty.
	InstrumentPackageScan bool
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files that were written.
	Files []OutputFile

	// ShadowsGenerated is the number of registered shadows.
	ShadowsGenerated int
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// Generate renders in and writes the registry source and service listing to
// opts.Sink. Nothing is written if rendering fails.
func Generate(ctx context.Context, in *Input, opts GenerateOptions) (*GenerateResult, error) {
	return (&Generator{}).Generate(ctx, in, opts)
}
