package ir

import (
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/broady/shadow"
)

// MemberKind identifies the role of a shadow method.
type MemberKind int

const (
	MemberImplementation MemberKind = iota // //shadow:implementation
	MemberConstructor                      // //shadow:constructor
	MemberResetter                         // //shadow:resetter
)

func (k MemberKind) String() string {
	switch k {
	case MemberImplementation:
		return "implementation"
	case MemberConstructor:
		return "constructor"
	case MemberResetter:
		return "resetter"
	default:
		return "unknown"
	}
}

// Member is a method of a shadow declaration carrying a shadow directive.
type Member struct {
	Kind MemberKind
	Name string

	// Func is the method object. It is nil for hand-built declarations.
	Func *types.Func

	// Signature is the method signature without receiver, qualified relative
	// to the declaring package, e.g. "func(path string) int64".
	Signature string

	// Range is the member's own version range.
	Range shadow.Range

	// InAllVersions is true when the member declares no bounds of its own and
	// therefore exists wherever its declaration does.
	InAllVersions bool

	// NeedsReal is true when the member calls through to the real object.
	NeedsReal bool

	Pos token.Position
}

// TypeParam is a type parameter of a generic shadow declaration.
type TypeParam struct {
	Name string

	// Bound is the constraint; nil means any.
	Bound types.Type
}

// RealObject is the field through which a shadow reaches the instance it
// shadows. It is marked with the struct tag `shadow:"real"`.
type RealObject struct {
	Field string
	Type  types.Type
	Pos   token.Position
}

// Field is an exported field of a shadow struct.
type Field struct {
	Name string
	Type types.Type
}

// Problem is malformed metadata found by the scanner. The scanner records
// problems instead of failing so that the validator can report them together
// with every other diagnostic.
type Problem struct {
	Pos     token.Position
	Member  string
	Message string
}

// Declaration is a type declaration carrying //shadow:implements.
type Declaration struct {
	// Name is the simple name of the shadow type.
	Name string

	// Package is the import path of the declaring package.
	Package string

	// PackageName is the package clause name of the declaring package.
	PackageName string

	// Obj is the type object. It is nil for hand-built declarations.
	Obj *types.TypeName

	Pos      token.Position
	Exported bool

	// TargetRef is the target as written in the directive.
	TargetRef string

	// Target is TargetRef qualified with the declaring package when needed.
	Target GoIdentifier

	// TargetObj is the resolved target type. It is nil when the target could
	// not be resolved and for the catch-all shadow.
	TargetObj *types.TypeName

	// TargetDoc is the doc comment of the target type, if it was found.
	TargetDoc string

	// CatchAll is true for //shadow:implements *.
	CatchAll bool

	// ByName is true when the target was given as name=<target>. Such a
	// target is registered as written and never resolved.
	ByName bool

	// Range is the declaration's version range.
	Range shadow.Range

	// Loose disables strict signature matching against the target.
	Loose bool

	TypeParams  []TypeParam
	RealObject  *RealObject
	Fields      []Field
	Members     []*Member
	Constructor *Member
	Resetter    *Member

	// Duplicates holds constructor and resetter members beyond the first.
	Duplicates []*Member

	// Doc is the declaration's doc comment with directives removed.
	Doc string

	Problems []Problem

	// ExcludedFromRegistry is set by the validator for declarations that are
	// valid but not exported.
	ExcludedFromRegistry bool
}

// ID returns the declaration's qualified identifier.
func (d *Declaration) ID() GoIdentifier {
	return GoIdentifier{Name: d.Name, Package: d.Package}
}

// Key returns the fully qualified source path of the declaration.
func (d *Declaration) Key() string {
	return d.ID().String()
}

// Scope returns the enclosing scopes of the declaration, outermost first.
func (d *Declaration) Scope() []string {
	if d.Package == "" {
		return nil
	}
	return strings.Split(d.Package, "/")
}

// TargetName returns the registry key of the target: its qualified name, or
// "*" for the catch-all shadow.
func (d *Declaration) TargetName() string {
	if d.CatchAll {
		return "*"
	}
	return d.Target.String()
}

// TargetPackage returns the import path of the target, or "" for the
// catch-all shadow.
func (d *Declaration) TargetPackage() string {
	if d.CatchAll {
		return ""
	}
	return d.Target.Package
}

// Generic reports whether the declaration has type parameters.
func (d *Declaration) Generic() bool {
	return len(d.TypeParams) > 0
}

// Surface returns every member in source order: implementations,
// constructor, resetter and duplicates alike.
func (d *Declaration) Surface() []*Member {
	all := make([]*Member, 0, len(d.Members)+2+len(d.Duplicates))
	all = append(all, d.Members...)
	if d.Constructor != nil {
		all = append(all, d.Constructor)
	}
	if d.Resetter != nil {
		all = append(all, d.Resetter)
	}
	all = append(all, d.Duplicates...)

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].Pos, all[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Offset < b.Offset
	})
	return all
}

// SortDeclarations orders declarations by their fully qualified path.
func SortDeclarations(decls []*Declaration) {
	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].Key() < decls[j].Key()
	})
}
