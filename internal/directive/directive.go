// Package directive parses shadow directives from Go comments.
//
// Directives are line comments in the form:
//
//	//shadow:implements <target> [min=N] [max=N] [loose]
//	//shadow:implements name=<target> [min=N] [max=N]
//	//shadow:implementation [min=N] [max=N] [real]
//	//shadow:constructor
//	//shadow:resetter
//
// The implements directive marks a type declaration as a shadow of target.
// Target is an import path qualified type name ("example.com/os.StatFs"), a
// type name in the declaring package ("StatFs"), or "*" for the catch-all
// shadow.
//
// The name= form registers a target by name only, for types that are not
// visible to the generator. Nothing about such a target is checked.
//
// The remaining directives mark methods of a shadow type. Unknown verbs are
// ignored so that future directives do not break older generators.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/broady/shadow"
)

// Prefix starts every shadow directive.
const Prefix = "//shadow:"

// Kind represents the type of directive.
type Kind string

const (
	KindImplements     Kind = "implements"
	KindImplementation Kind = "implementation"
	KindConstructor    Kind = "constructor"
	KindResetter       Kind = "resetter"
)

// CatchAll is the target of a shadow that applies to any type.
const CatchAll = "*"

// Directive represents a parsed shadow directive.
type Directive struct {
	Kind   Kind
	Target string // implements only
	Min    int    // shadow.Unbounded when absent
	Max    int    // shadow.Unbounded when absent
	Loose  bool   // implements only
	ByName bool   // implements only, target given as name=<target>
	Real   bool   // implementation only
	Pos    token.Position
}

// Bounded reports whether the directive declares a version bound.
func (d Directive) Bounded() bool {
	return d.Min != shadow.Unbounded || d.Max != shadow.Unbounded
}

// Range returns the version range declared by the directive.
func (d Directive) Range() shadow.Range {
	return shadow.Range{Min: d.Min, Max: d.Max}
}

// Error is a malformed shadow directive.
// Directive holds whatever could be parsed before the error.
type Error struct {
	Directive Directive
	Text      string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Directive.Pos, e.Text, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Parse parses a single comment line.
// It returns ok=false for comments that are not shadow directives or that use
// an unknown verb.
func Parse(text string) (d Directive, ok bool, err error) {
	if !strings.HasPrefix(text, Prefix) {
		return Directive{}, false, nil
	}

	parts := strings.Fields(strings.TrimPrefix(text, Prefix))
	if len(parts) == 0 {
		return Directive{}, false, nil
	}

	d = Directive{
		Kind: Kind(parts[0]),
		Min:  shadow.Unbounded,
		Max:  shadow.Unbounded,
	}
	args := parts[1:]

	switch d.Kind {
	case KindImplements:
		if len(args) == 0 {
			return d, true, fmt.Errorf("missing target type")
		}
		d.Target = args[0]
		args = args[1:]
		if name, ok := strings.CutPrefix(d.Target, "name="); ok {
			d.Target, d.ByName = name, true
			if err := checkName(name); err != nil {
				return d, true, err
			}
		}
	case KindImplementation, KindConstructor, KindResetter:
	default:
		return Directive{}, false, nil
	}

	for _, arg := range args {
		key, value, hasValue := strings.Cut(arg, "=")
		switch {
		case key == "min" && hasValue:
			if d.Min, err = parseVersion(value); err != nil {
				return d, true, fmt.Errorf("min: %w", err)
			}
		case key == "max" && hasValue:
			if d.Max, err = parseVersion(value); err != nil {
				return d, true, fmt.Errorf("max: %w", err)
			}
		case key == "loose" && !hasValue && d.Kind == KindImplements:
			d.Loose = true
		case key == "real" && !hasValue && d.Kind == KindImplementation:
			d.Real = true
		default:
			return d, true, fmt.Errorf("unknown option %q for //shadow:%s", arg, d.Kind)
		}
	}

	return d, true, nil
}

// checkName validates a target given by name: a type name, optionally
// qualified by an import path.
func checkName(name string) error {
	if name == "" || name == CatchAll {
		return fmt.Errorf("name= needs a type name, got %q", name)
	}
	slash := strings.LastIndex(name, "/")
	if dot := strings.Index(name[slash+1:], "."); dot >= 0 {
		name = name[slash+1+dot+1:]
	} else if slash >= 0 {
		return fmt.Errorf("invalid target name %q", name)
	}
	if !token.IsIdentifier(name) {
		return fmt.Errorf("invalid target name %q", name)
	}
	return nil
}

func parseVersion(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative version %d", v)
	}
	return v, nil
}

// FromComments extracts every shadow directive from a doc comment group.
// Malformed directives are returned as *Error values; parsing continues past
// them so that all problems are reported at once.
func FromComments(fset *token.FileSet, groups ...*ast.CommentGroup) ([]Directive, []error) {
	var (
		directives []Directive
		errs       []error
	)
	for _, cg := range groups {
		if cg == nil {
			continue
		}
		for _, c := range cg.List {
			d, ok, err := Parse(c.Text)
			if !ok {
				continue
			}
			d.Pos = fset.Position(c.Pos())
			if err != nil {
				errs = append(errs, &Error{Directive: d, Text: c.Text, Err: err})
				continue
			}
			directives = append(directives, d)
		}
	}
	return directives, errs
}

// Find returns the first directive of the given kind.
func Find(directives []Directive, kind Kind) (Directive, bool) {
	for _, d := range directives {
		if d.Kind == kind {
			return d, true
		}
	}
	return Directive{}, false
}
