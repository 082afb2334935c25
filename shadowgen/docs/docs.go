// Package docs extracts documentation records for shadowed types.
//
// A record carries the description of a target type and every named type the
// shadow's visible surface refers to, for consumption by an external
// documentation index.
package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"go/types"
	"strings"

	"github.com/broady/shadow/shadowgen/ir"
	"github.com/broady/shadow/shadowgen/sink"
)

// DefaultDir is the directory records are written to, relative to the sink.
const DefaultDir = "docs/json"

// Record documents one target type.
type Record struct {
	// Target is the qualified name of the documented type.
	Target string `json:"-"`

	// Documentation is the description, verbatim with its trailing newline.
	Documentation string `json:"documentation"`

	// Imports lists the qualified names of the types the shadow surface
	// refers to, in order of first appearance.
	Imports []string `json:"imports"`
}

// Path returns the path of the record's file within dir.
func (r *Record) Path(dir string) string {
	return dir + "/" + strings.ReplaceAll(r.Target, "/", ".") + ".json"
}

// Option configures Extract.
type Option func(*extractor)

// TargetDocsOnly disables the fallback to the shadow's doc comment: targets
// without a doc comment of their own get no record.
func TargetDocsOnly() Option {
	return func(e *extractor) {
		e.targetOnly = true
	}
}

type extractor struct {
	targetOnly bool
}

// Extract returns one record per target type that has a description, in the
// order targets first appear in decls.
//
// The description is the target's own doc comment, or the shadow's when the
// target has none. When several variants shadow one target, the first
// description wins and their imports are merged. Catch-all shadows have no
// target to document. Targets named with name= contribute a description but
// no imports.
func Extract(decls []*ir.Declaration, opts ...Option) []*Record {
	e := &extractor{}
	for _, opt := range opts {
		opt(e)
	}

	var records []*Record
	byTarget := make(map[string]*Record)
	seen := make(map[string]map[string]bool)
	for _, d := range decls {
		if d.CatchAll || d.ExcludedFromRegistry {
			continue
		}
		target := d.TargetName()

		rec, ok := byTarget[target]
		if !ok {
			rec = &Record{Target: target, Imports: []string{}}
			byTarget[target] = rec
			seen[target] = make(map[string]bool)
			records = append(records, rec)
		}
		if rec.Documentation == "" {
			rec.Documentation = e.description(d)
		}
		if d.ByName {
			continue
		}

		c := &collector{seen: seen[target], names: rec.Imports}
		c.add(target)
		for _, tp := range d.TypeParams {
			c.walk(tp.Bound)
		}
		if d.RealObject != nil {
			c.walk(d.RealObject.Type)
		}
		for _, f := range d.Fields {
			c.walk(f.Type)
		}
		for _, m := range d.Surface() {
			if m.Func != nil {
				c.walk(m.Func.Type())
			}
		}
		rec.Imports = c.names
	}

	out := records[:0]
	for _, rec := range records {
		if rec.Documentation != "" {
			out = append(out, rec)
		}
	}
	return out
}

func (e *extractor) description(d *ir.Declaration) string {
	if d.TargetDoc != "" || e.targetOnly {
		return d.TargetDoc
	}
	return d.Doc
}

// collector accumulates qualified type names without duplicates.
type collector struct {
	seen  map[string]bool
	names []string
}

func (c *collector) add(name string) {
	if c.seen[name] {
		return
	}
	c.seen[name] = true
	c.names = append(c.names, name)
}

func (c *collector) walk(t types.Type) {
	switch t := t.(type) {
	case nil:
	case *types.Alias:
		if obj := t.Obj(); obj.Pkg() != nil {
			c.add(obj.Pkg().Path() + "." + obj.Name())
		}
		c.list(t.TypeArgs())
	case *types.Named:
		if obj := t.Obj(); obj.Pkg() != nil {
			c.add(obj.Pkg().Path() + "." + obj.Name())
		}
		c.list(t.TypeArgs())
	case *types.Pointer:
		c.walk(t.Elem())
	case *types.Slice:
		c.walk(t.Elem())
	case *types.Array:
		c.walk(t.Elem())
	case *types.Chan:
		c.walk(t.Elem())
	case *types.Map:
		c.walk(t.Key())
		c.walk(t.Elem())
	case *types.Signature:
		c.tuple(t.Params())
		c.tuple(t.Results())
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			c.walk(t.Field(i).Type())
		}
	}
}

func (c *collector) list(args *types.TypeList) {
	for i := 0; i < args.Len(); i++ {
		c.walk(args.At(i))
	}
}

func (c *collector) tuple(vars *types.Tuple) {
	for i := 0; i < vars.Len(); i++ {
		c.walk(vars.At(i).Type())
	}
}

// Marshal encodes a record as indented JSON without HTML escaping.
func Marshal(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes each record to its file within dir. If dir is empty,
// DefaultDir is used. Nothing is written if two records map to the same
// file.
func Write(ctx context.Context, s sink.OutputSink, dir string, records []*Record) ([]string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	owner := make(map[string]string, len(records))
	for _, rec := range records {
		path := rec.Path(dir)
		if prev, ok := owner[path]; ok {
			return nil, fmt.Errorf("documentation for %s and %s would both be written to %s", prev, rec.Target, path)
		}
		owner[path] = rec.Target
	}

	var paths []string
	for _, rec := range records {
		content, err := Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to encode documentation for %s: %w", rec.Target, err)
		}
		path := rec.Path(dir)
		if err := s.WriteFile(ctx, path, content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
