package golang

import (
	"bytes"
	"context"
	"fmt"
	"go/token"
	"go/types"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/broady/shadow"
	"github.com/broady/shadow/shadowgen/ir"
	"github.com/broady/shadow/shadowgen/resolve"
	"golang.org/x/tools/imports"
)

// Generator emits Go registry source.
type Generator struct{}

// Name returns the generator's identifier.
func (g *Generator) Name() string {
	return "go"
}

// Generate renders in and writes the registry source and service listing.
func (g *Generator) Generate(ctx context.Context, in *Input, opts GenerateOptions) (*GenerateResult, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if in == nil || in.Mapping == nil {
		return nil, fmt.Errorf("mapping is required")
	}

	cfg := opts.Config
	if cfg.Package == "" {
		return nil, fmt.Errorf("package is required")
	}
	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}

	src, err := Render(in, cfg)
	if err != nil {
		return nil, err
	}
	listing := ServiceListing(cfg.Package)

	result := &GenerateResult{ShadowsGenerated: in.Mapping.Len()}
	for _, f := range []struct {
		path    string
		content []byte
	}{
		{cfg.FileName, src},
		{ServicePath, listing},
	} {
		if err := opts.Sink.WriteFile(ctx, f.path, f.content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		result.Files = append(result.Files, OutputFile{Path: f.path, Size: int64(len(f.content))})
	}
	return result, nil
}

// ServiceListing returns the service listing naming the provider of the
// generated package pkg.
func ServiceListing(pkg string) []byte {
	return []byte(pkg + "." + ProviderType + "\n")
}

// Render returns the formatted registry source.
func Render(in *Input, cfg GeneratorConfig) ([]byte, error) {
	e, err := newEmitter(in, cfg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	e.emit(&buf)

	name := cfg.FileName
	if name == "" {
		name = DefaultFileName
	}
	out, err := imports.Process(name, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format generated source: %w\n%s", err, buf.Bytes())
	}
	return out, nil
}

// emitter holds the resolved state of one rendering.
type emitter struct {
	cfg     GeneratorConfig
	pkgName string
	decls   []*ir.Declaration
	names   map[string]string

	// aliases maps import paths to their local names.
	aliases map[string]string
}

func newEmitter(in *Input, cfg GeneratorConfig) (*emitter, error) {
	e := &emitter{
		cfg:     cfg,
		pkgName: path.Base(cfg.Package),
		decls:   in.Mapping.Declarations(),
	}

	for _, d := range e.decls {
		switch {
		case d.Package == cfg.Package:
			return nil, fmt.Errorf("shadow %s is declared in the generated package %s", d.Key(), cfg.Package)
		case d.PackageName == "main":
			return nil, fmt.Errorf("shadow %s is declared in package main", d.Key())
		case d.Resetter != nil && !token.IsExported(d.Resetter.Name):
			return nil, fmt.Errorf("shadow %s has unexported resetter %s", d.Key(), d.Resetter.Name)
		}
	}

	e.names = resolve.Declarations(e.decls, ProviderType)
	for key, name := range in.Names {
		e.names[key] = name
	}

	pkgs := map[string]string{RuntimePath: "shadow"}
	for _, d := range e.decls {
		pkgs[d.Package] = d.PackageName
		for _, tp := range d.TypeParams {
			collectPackages(tp.Bound, pkgs)
		}
	}

	reserved := []string{"entries", "packageNames", ProviderType, "init"}
	for _, name := range e.names {
		reserved = append(reserved, name)
	}
	e.aliases = resolve.ImportAliases(pkgs, reserved...)
	return e, nil
}

// collectPackages records the packages of the named types in t.
func collectPackages(t types.Type, pkgs map[string]string) {
	if t == nil {
		return
	}
	types.TypeString(t, func(p *types.Package) string {
		pkgs[p.Path()] = p.Name()
		return p.Name()
	})
}

func (e *emitter) runtime(name string) string {
	return e.aliases[RuntimePath] + "." + name
}

func (e *emitter) emit(buf *bytes.Buffer) {
	buf.WriteString(Header + "\n\n")
	fmt.Fprintf(buf, "package %s\n\n", e.pkgName)

	e.emitImports(buf)
	e.emitAliases(buf)
	e.emitProvider(buf)
}

func (e *emitter) emitImports(buf *bytes.Buffer) {
	var std, other []string
	for p := range e.aliases {
		if isStd(p) {
			std = append(std, p)
		} else {
			other = append(other, p)
		}
	}
	sort.Strings(std)
	sort.Strings(other)

	buf.WriteString("import (\n")
	for i, group := range [][]string{std, other} {
		if i > 0 && len(std) > 0 && len(other) > 0 {
			buf.WriteString("\n")
		}
		for _, p := range group {
			if alias := e.aliases[p]; alias != path.Base(p) {
				fmt.Fprintf(buf, "\t%s %s\n", alias, strconv.Quote(p))
			} else {
				fmt.Fprintf(buf, "\t%s\n", strconv.Quote(p))
			}
		}
	}
	buf.WriteString(")\n\n")
}

// isStd reports whether p looks like a standard library import path, using
// the same rule as goimports grouping.
func isStd(p string) bool {
	return !strings.Contains(p, ".")
}

func (e *emitter) emitAliases(buf *bytes.Buffer) {
	for _, d := range e.decls {
		ref := e.aliases[d.Package] + "." + d.Name
		if !d.Generic() {
			fmt.Fprintf(buf, "type %s = %s\n\n", e.names[d.Key()], ref)
			continue
		}

		params := make([]string, len(d.TypeParams))
		args := make([]string, len(d.TypeParams))
		for i, tp := range d.TypeParams {
			params[i] = tp.Name + " " + e.typeString(tp.Bound)
			args[i] = tp.Name
		}
		fmt.Fprintf(buf, "type %s[%s] = %s[%s]\n\n",
			e.names[d.Key()], strings.Join(params, ", "), ref, strings.Join(args, ", "))
	}
}

func (e *emitter) typeString(t types.Type) string {
	if t == nil {
		return "any"
	}
	return types.TypeString(t, func(p *types.Package) string {
		return e.aliases[p.Path()]
	})
}

func (e *emitter) emitProvider(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "// %s lists the shadows registered by this package.\n", ProviderType)
	fmt.Fprintf(buf, "type %s struct{}\n\n", ProviderType)

	entry := e.runtime("Entry")
	if len(e.decls) == 0 {
		fmt.Fprintf(buf, "var entries = []%s{}\n\n", entry)
	} else {
		fmt.Fprintf(buf, "var entries = []%s{\n", entry)
		for _, d := range e.decls {
			buf.WriteString("\t{\n")
			fmt.Fprintf(buf, "\t\tTarget: %s,\n", strconv.Quote(d.TargetName()))
			fmt.Fprintf(buf, "\t\tShadow: %s,\n", strconv.Quote(d.Key()))
			fmt.Fprintf(buf, "\t\tName:   %s,\n", strconv.Quote(e.names[d.Key()]))
			fmt.Fprintf(buf, "\t\tRange:  %s,\n", e.rangeExpr(d.Range))
			buf.WriteString("\t},\n")
		}
		buf.WriteString("}\n\n")
	}

	pkgs := e.packageNames()
	if len(pkgs) == 0 {
		buf.WriteString("var packageNames = []string{}\n\n")
	} else {
		buf.WriteString("var packageNames = []string{\n")
		for _, p := range pkgs {
			fmt.Fprintf(buf, "\t%s,\n", strconv.Quote(p))
		}
		buf.WriteString("}\n\n")
	}

	fmt.Fprintf(buf, "// Entries implements %s.\n", e.runtime("Provider"))
	fmt.Fprintf(buf, "func (%s) Entries() []%s {\n", ProviderType, entry)
	fmt.Fprintf(buf, "\treturn append([]%s(nil), entries...)\n}\n\n", entry)

	fmt.Fprintf(buf, "// ProvidedPackageNames implements %s.\n", e.runtime("Provider"))
	fmt.Fprintf(buf, "func (%s) ProvidedPackageNames() []string {\n", ProviderType)
	buf.WriteString("\treturn append([]string(nil), packageNames...)\n}\n\n")

	fmt.Fprintf(buf, "// Reset implements %s.\n", e.runtime("Provider"))
	var resets []string
	for _, d := range e.decls {
		if d.Resetter != nil && !d.Generic() {
			resets = append(resets, fmt.Sprintf("\tnew(%s).%s()\n", e.names[d.Key()], d.Resetter.Name))
		}
	}
	if len(resets) == 0 {
		fmt.Fprintf(buf, "func (%s) Reset() {}\n\n", ProviderType)
	} else {
		fmt.Fprintf(buf, "func (%s) Reset() {\n", ProviderType)
		for _, r := range resets {
			buf.WriteString(r)
		}
		buf.WriteString("}\n\n")
	}

	buf.WriteString("func init() {\n")
	fmt.Fprintf(buf, "\t%s(%s{})\n", e.runtime("Register"), ProviderType)
	buf.WriteString("}\n")
}

func (e *emitter) rangeExpr(r shadow.Range) string {
	bound := func(v int) string {
		if v == shadow.Unbounded {
			return e.runtime("Unbounded")
		}
		return strconv.Itoa(v)
	}
	return fmt.Sprintf("%s{Min: %s, Max: %s}", e.runtime("Range"), bound(r.Min), bound(r.Max))
}

// packageNames returns the sorted distinct target packages, or nothing when
// instrumentation scanning is disabled.
func (e *emitter) packageNames() []string {
	if !e.cfg.InstrumentPackageScan {
		return nil
	}
	seen := make(map[string]bool)
	var pkgs []string
	for _, d := range e.decls {
		p := d.TargetPackage()
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)
	return pkgs
}
