// Package validate checks scanned shadow declarations and builds the
// version-aware mapping of the valid ones.
//
// Every declaration is checked in full: a round reports all of its
// diagnostics at once, not just the first.
package validate

import (
	"fmt"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/broady/shadow/shadowgen/ir"
)

// Code identifies a class of diagnostic.
type Code string

const (
	UnresolvedTarget         Code = "UnresolvedTarget"
	MissingRealObjectBinding Code = "MissingRealObjectBinding"
	VersionRangeViolation    Code = "VersionRangeViolation"
	GenericArityMismatch     Code = "GenericArityMismatch"
	InvalidDirective         Code = "InvalidDirective"
	DuplicateMember          Code = "DuplicateMember"
	InvalidResetter          Code = "InvalidResetter"
	RealObjectTypeMismatch   Code = "RealObjectTypeMismatch"
	MissingTargetMember      Code = "MissingTargetMember"
	InaccessibleShadow       Code = "InaccessibleShadow"
)

// Diagnostic is a validation error attached to a declaration or one of its
// members.
type Diagnostic struct {
	Code    Code
	Message string
	Pos     token.Position

	// Decl is the fully qualified name of the offending declaration.
	Decl string

	// Member is the offending member's name, if any.
	Member string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Code, d.Message)
}

// Diagnostics is a list of diagnostics. It is an error when non-empty.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// Has reports whether any diagnostic has the given code.
func (ds Diagnostics) Has(code Code) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

// For returns the diagnostics attached to the declaration with the given key.
func (ds Diagnostics) For(decl string) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Decl == decl {
			out = append(out, d)
		}
	}
	return out
}

// Result is the outcome of validating one round.
type Result struct {
	// Valid holds the declarations that passed every check, excluded ones
	// included.
	Valid []*ir.Declaration

	// Registered holds the valid declarations that are not excluded from the
	// registry.
	Registered []*ir.Declaration

	// Mapping partitions Registered by target. It is nil when variants of a
	// target overlap.
	Mapping *ir.Mapping

	Diagnostics Diagnostics
}

// Err returns the diagnostics as an error, or nil if there are none.
func (r *Result) Err() error {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	return r.Diagnostics
}

// Option configures Validate.
type Option func(*checker)

// ForPackage sets the import path of the package the registry is generated
// into. Registered shadows must be importable from it.
func ForPackage(path string) Option {
	return func(c *checker) {
		c.generated = path
	}
}

// Validate checks decls. Non-exported declarations are validated like any
// other but flagged ExcludedFromRegistry.
func Validate(decls []*ir.Declaration, opts ...Option) *Result {
	r := &Result{}
	for _, d := range decls {
		d.ExcludedFromRegistry = !d.Exported

		c := &checker{d: d}
		for _, opt := range opts {
			opt(c)
		}
		diags := c.check()
		if len(diags) > 0 {
			r.Diagnostics = append(r.Diagnostics, diags...)
			continue
		}
		r.Valid = append(r.Valid, d)
		if !d.ExcludedFromRegistry {
			r.Registered = append(r.Registered, d)
		}
	}

	mapping, overlaps := ir.NewMapping(r.Registered)
	for _, o := range overlaps {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Code:    VersionRangeViolation,
			Message: fmt.Sprintf("version range %s overlaps %s %s for %s", o.Second.Range, o.First.Key(), o.First.Range, o.Target),
			Pos:     o.Second.Pos,
			Decl:    o.Second.Key(),
		})
	}
	r.Mapping = mapping

	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		a, b := r.Diagnostics[i].Pos, r.Diagnostics[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return r
}

// checker accumulates the diagnostics of one declaration.
type checker struct {
	d         *ir.Declaration
	generated string
	diags     Diagnostics
}

func (c *checker) decl(code Code, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     c.d.Pos,
		Decl:    c.d.Key(),
	})
}

func (c *checker) member(code Code, m *ir.Member, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     m.Pos,
		Decl:    c.d.Key(),
		Member:  m.Name,
	})
}

func (c *checker) check() Diagnostics {
	d := c.d
	for _, p := range d.Problems {
		c.diags = append(c.diags, Diagnostic{
			Code:    InvalidDirective,
			Message: p.Message,
			Pos:     p.Pos,
			Decl:    d.Key(),
			Member:  p.Member,
		})
	}

	c.checkTarget()
	c.checkRanges()
	c.checkRealObject()
	c.checkLifecycle()
	c.checkTargetMembers()
	c.checkAccess()

	return c.diags
}

func (c *checker) checkTarget() {
	d := c.d
	if d.CatchAll {
		if d.Generic() {
			c.decl(GenericArityMismatch, "%s has %d type parameters, the catch-all shadow takes none", d.Name, len(d.TypeParams))
		}
		return
	}
	if d.TargetRef == "" || d.ByName {
		// An empty target is reported as an invalid directive.
		return
	}
	if d.TargetObj == nil {
		c.decl(UnresolvedTarget, "%s: target type %s not found", d.Name, d.TargetName())
		return
	}

	want := 0
	if named, ok := d.TargetObj.Type().(*types.Named); ok {
		want = named.TypeParams().Len()
	}
	if got := len(d.TypeParams); got != want {
		c.decl(GenericArityMismatch, "%s has %d type parameters, target %s has %d", d.Name, got, d.TargetName(), want)
	}
}

func (c *checker) checkRanges() {
	d := c.d
	if !d.Range.Valid() {
		c.decl(VersionRangeViolation, "%s: invalid version range %s", d.Name, d.Range)
		return
	}
	for _, m := range d.Surface() {
		switch {
		case !m.Range.Valid():
			c.member(VersionRangeViolation, m, "%s.%s: invalid version range %s", d.Name, m.Name, m.Range)
		case !m.Range.Within(d.Range):
			c.member(VersionRangeViolation, m, "%s.%s: version range %s is outside %s", d.Name, m.Name, m.Range, d.Range)
		}
	}
}

func (c *checker) checkRealObject() {
	d := c.d
	if d.RealObject == nil {
		for _, m := range d.Members {
			if m.NeedsReal || d.CatchAll {
				c.member(MissingRealObjectBinding, m, "%s.%s needs the real object but %s has no field tagged `shadow:\"real\"`", d.Name, m.Name, d.Name)
			}
		}
		return
	}

	if d.CatchAll {
		if !types.IsInterface(d.RealObject.Type) {
			c.realMismatch("an interface type")
		}
		return
	}
	if d.TargetObj == nil {
		return
	}
	if !isTarget(d.RealObject.Type, d.TargetObj) {
		c.realMismatch(d.TargetName() + " or a pointer to it")
	}
}

func (c *checker) realMismatch(want string) {
	ro := c.d.RealObject
	c.diags = append(c.diags, Diagnostic{
		Code:    RealObjectTypeMismatch,
		Message: fmt.Sprintf("%s.%s has type %s, want %s", c.d.Name, ro.Field, ro.Type, want),
		Pos:     ro.Pos,
		Decl:    c.d.Key(),
		Member:  ro.Field,
	})
}

// isTarget reports whether t is the target type, an instance of it, or a
// pointer to either.
func isTarget(t types.Type, target *types.TypeName) bool {
	if ptr, ok := types.Unalias(t).(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	return named.Origin().Obj() == target
}

func (c *checker) checkLifecycle() {
	d := c.d
	for _, m := range d.Duplicates {
		c.member(DuplicateMember, m, "%s.%s: %s already has a %s", d.Name, m.Name, d.Name, m.Kind)
	}

	m := d.Resetter
	if m == nil {
		return
	}
	if d.Generic() {
		c.member(InvalidResetter, m, "%s.%s: generic shadows cannot have a resetter", d.Name, m.Name)
		return
	}
	if !token.IsExported(m.Name) {
		c.member(InvalidResetter, m, "%s.%s: resetter must be exported", d.Name, m.Name)
	}
	if !niladic(m) {
		c.member(InvalidResetter, m, "%s.%s: resetter must take no parameters and return nothing, got %s", d.Name, m.Name, m.Signature)
	}
}

func niladic(m *ir.Member) bool {
	if m.Func == nil {
		return m.Signature == "func()"
	}
	sig := m.Func.Type().(*types.Signature)
	return sig.Params().Len() == 0 && sig.Results().Len() == 0
}

// checkTargetMembers matches each implementation against the target's
// method set. Loose and generic shadows are matched by name and arity only.
func (c *checker) checkTargetMembers() {
	d := c.d
	if d.CatchAll || d.TargetObj == nil {
		return
	}
	strict := !d.Loose && !d.Generic()

	// Interface method sets are not reachable through a pointer.
	recv := d.TargetObj.Type()
	if !types.IsInterface(recv) {
		recv = types.NewPointer(recv)
	}

	for _, m := range d.Members {
		if m.Func == nil {
			continue
		}
		obj, _, _ := types.LookupFieldOrMethod(recv, false, d.TargetObj.Pkg(), m.Name)
		fn, ok := obj.(*types.Func)
		if !ok {
			c.member(MissingTargetMember, m, "%s.%s: target %s has no method %s", d.Name, m.Name, d.TargetName(), m.Name)
			continue
		}

		want := fn.Type().(*types.Signature)
		got := m.Func.Type().(*types.Signature)
		if strict {
			if !types.Identical(plain(got), plain(want)) {
				c.member(MissingTargetMember, m, "%s.%s: signature %s does not match %s.%s%s",
					d.Name, m.Name, m.Signature, d.TargetName(), fn.Name(), strings.TrimPrefix(types.TypeString(plain(want), nil), "func"))
			}
			continue
		}
		if got.Params().Len() != want.Params().Len() || got.Results().Len() != want.Results().Len() {
			c.member(MissingTargetMember, m, "%s.%s: takes %d parameters and returns %d results, target %s.%s takes %d and returns %d",
				d.Name, m.Name, got.Params().Len(), got.Results().Len(), d.TargetName(), fn.Name(), want.Params().Len(), want.Results().Len())
		}
	}
}

// plain strips the receiver from sig.
func plain(sig *types.Signature) *types.Signature {
	return types.NewSignatureType(nil, nil, nil, sig.Params(), sig.Results(), sig.Variadic())
}

// checkAccess reports registered shadows the generated package cannot refer
// to.
func (c *checker) checkAccess() {
	d := c.d
	if d.ExcludedFromRegistry {
		return
	}
	switch {
	case d.PackageName == "main":
		c.decl(InaccessibleShadow, "%s is declared in package main, which cannot be imported", d.Name)
	case c.generated != "" && d.Package == c.generated:
		c.decl(InaccessibleShadow, "%s is declared in the generated package %s", d.Name, c.generated)
	case c.generated != "" && !importable(c.generated, d.Package):
		c.decl(InaccessibleShadow, "%s: package %s is internal and cannot be imported from %s", d.Name, d.Package, c.generated)
	}

	for _, tp := range d.TypeParams {
		if why := c.inaccessible(tp.Bound); why != "" {
			c.decl(InaccessibleShadow, "%s: constraint of %s %s", d.Name, tp.Name, why)
		}
	}
}

// inaccessible describes the first part of t that cannot be spelled outside
// its own package, or returns "".
func (c *checker) inaccessible(t types.Type) string {
	switch t := t.(type) {
	case nil, *types.Basic, *types.TypeParam:
	case *types.Alias:
		if why := c.object(t.Obj()); why != "" {
			return why
		}
		return c.inaccessibleList(t.TypeArgs())
	case *types.Named:
		if why := c.object(t.Obj()); why != "" {
			return why
		}
		return c.inaccessibleList(t.TypeArgs())
	case *types.Pointer:
		return c.inaccessible(t.Elem())
	case *types.Slice:
		return c.inaccessible(t.Elem())
	case *types.Array:
		return c.inaccessible(t.Elem())
	case *types.Chan:
		return c.inaccessible(t.Elem())
	case *types.Map:
		if why := c.inaccessible(t.Key()); why != "" {
			return why
		}
		return c.inaccessible(t.Elem())
	case *types.Signature:
		for _, tup := range []*types.Tuple{t.Params(), t.Results()} {
			for i := 0; i < tup.Len(); i++ {
				if why := c.inaccessible(tup.At(i).Type()); why != "" {
					return why
				}
			}
		}
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			if !f.Exported() {
				return fmt.Sprintf("has unexported field %s", f.Name())
			}
			if why := c.inaccessible(f.Type()); why != "" {
				return why
			}
		}
	case *types.Interface:
		for i := 0; i < t.NumExplicitMethods(); i++ {
			m := t.ExplicitMethod(i)
			if !m.Exported() {
				return fmt.Sprintf("has unexported method %s", m.Name())
			}
			if why := c.inaccessible(m.Type()); why != "" {
				return why
			}
		}
		for i := 0; i < t.NumEmbeddeds(); i++ {
			if why := c.inaccessible(t.EmbeddedType(i)); why != "" {
				return why
			}
		}
	case *types.Union:
		for i := 0; i < t.Len(); i++ {
			if why := c.inaccessible(t.Term(i).Type()); why != "" {
				return why
			}
		}
	}
	return ""
}

func (c *checker) inaccessibleList(args *types.TypeList) string {
	for i := 0; i < args.Len(); i++ {
		if why := c.inaccessible(args.At(i)); why != "" {
			return why
		}
	}
	return ""
}

func (c *checker) object(obj *types.TypeName) string {
	pkg := obj.Pkg()
	if pkg == nil {
		return ""
	}
	switch {
	case !obj.Exported():
		return fmt.Sprintf("refers to unexported type %s.%s", pkg.Path(), obj.Name())
	case pkg.Name() == "main":
		return fmt.Sprintf("refers to %s.%s in package main", pkg.Path(), obj.Name())
	case c.generated != "" && !importable(c.generated, pkg.Path()):
		return fmt.Sprintf("refers to %s.%s in internal package %s", pkg.Path(), obj.Name(), pkg.Path())
	}
	return ""
}

// importable reports whether the package at importer may import path under
// the internal package rule.
func importable(importer, path string) bool {
	var parent string
	switch {
	case path == "internal" || strings.HasPrefix(path, "internal/"):
		// Standard library internals.
		return !strings.Contains(strings.Split(importer, "/")[0], ".")
	case strings.HasSuffix(path, "/internal"):
		parent = strings.TrimSuffix(path, "/internal")
	case strings.Contains(path, "/internal/"):
		parent = path[:strings.LastIndex(path, "/internal/")]
	default:
		return true
	}
	return importer == parent || strings.HasPrefix(importer, parent+"/")
}
