// Package scan discovers shadow declarations in Go source.
//
// The scanner is structural and tolerant: it records malformed metadata on the
// declaration it belongs to and leaves judgement to the validator. Types
// without a //shadow:implements directive are ignored, whatever other
// directives or tags they carry.
package scan

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"sort"
	"strings"

	"github.com/broady/shadow"
	"github.com/broady/shadow/internal/directive"
	"github.com/broady/shadow/shadowgen/ir"
	"golang.org/x/tools/go/packages"
)

// LoadMode is the go/packages mode the scanner needs. Dependencies are loaded
// from source so that target types and their doc comments can be resolved.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

// RealTag is the struct tag value marking the real-object field.
const RealTag = "real"

// Load loads the packages matching patterns, relative to dir.
// If dir is empty, the current directory is used.
//
// Packages with errors are rejected: shadows must type-check, whether or not
// they end up in the registry.
func Load(ctx context.Context, dir string, patterns ...string) ([]*packages.Package, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %s", strings.Join(patterns, " "))
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors[0])
		}
	}

	sort.Slice(pkgs, func(i, j int) bool {
		return pkgs[i].PkgPath < pkgs[j].PkgPath
	})
	return pkgs, nil
}

// Scan returns every shadow declaration in pkgs, sorted by qualified name.
// Targets are resolved against all packages reachable from pkgs.
func Scan(pkgs []*packages.Package) []*ir.Declaration {
	s := &scanner{index: make(map[string]*packages.Package)}
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		s.index[p.PkgPath] = p
	})

	var decls []*ir.Declaration
	for _, pkg := range pkgs {
		decls = append(decls, s.scanPackage(pkg)...)
	}
	ir.SortDeclarations(decls)
	return decls
}

// scanner holds the package index for one Scan call.
type scanner struct {
	index map[string]*packages.Package
}

func (s *scanner) scanPackage(pkg *packages.Package) []*ir.Declaration {
	methods := collectMethods(pkg)

	var decls []*ir.Declaration
	for _, file := range pkg.Syntax {
		for _, d := range file.Decls {
			gd, ok := d.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)

				// An unparenthesized declaration keeps its doc on the GenDecl.
				docs := []*ast.CommentGroup{ts.Doc}
				if !gd.Lparen.IsValid() {
					docs = append(docs, gd.Doc)
				}

				decl := s.declaration(pkg, ts, docs)
				if decl == nil {
					continue
				}
				s.members(pkg, decl, methods[ts.Name.Name])
				decls = append(decls, decl)
			}
		}
	}
	return decls
}

// declaration builds a Declaration for ts, or returns nil if ts carries no
// implements directive.
func (s *scanner) declaration(pkg *packages.Package, ts *ast.TypeSpec, docs []*ast.CommentGroup) *ir.Declaration {
	directives, errs := directive.FromComments(pkg.Fset, docs...)

	var (
		impls    []directive.Directive
		problems []ir.Problem
	)
	for _, d := range directives {
		if d.Kind == directive.KindImplements {
			impls = append(impls, d)
		}
	}
	for _, err := range errs {
		derr, ok := err.(*directive.Error)
		if !ok {
			continue
		}
		if derr.Directive.Kind == directive.KindImplements {
			impls = append(impls, derr.Directive)
		}
		problems = append(problems, ir.Problem{Pos: derr.Directive.Pos, Message: problemText(derr)})
	}
	if len(impls) == 0 {
		return nil
	}

	impl := impls[0]
	for _, extra := range impls[1:] {
		problems = append(problems, ir.Problem{
			Pos:     extra.Pos,
			Message: fmt.Sprintf("multiple //shadow:implements directives on %s", ts.Name.Name),
		})
	}

	obj, _ := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	decl := &ir.Declaration{
		Name:        ts.Name.Name,
		Package:     pkg.PkgPath,
		PackageName: pkg.Name,
		Obj:         obj,
		Pos:         pkg.Fset.Position(ts.Name.Pos()),
		Exported:    ts.Name.IsExported(),
		TargetRef:   impl.Target,
		Range:       impl.Range(),
		Loose:       impl.Loose,
		ByName:      impl.ByName,
		Doc:         docText(docs),
		Problems:    problems,
	}

	switch impl.Target {
	case "":
		// Reported as a problem above.
	case directive.CatchAll:
		decl.CatchAll = true
	default:
		decl.Target = ir.ParseIdentifier(impl.Target)
		if decl.Target.Package == "" {
			decl.Target.Package = pkg.PkgPath
		}
		if impl.ByName {
			break
		}
		decl.TargetObj = s.lookup(decl.Target)
		if decl.TargetObj != nil {
			decl.TargetDoc = s.docOf(decl.TargetObj)
		}
	}

	if obj != nil {
		s.typeParams(decl, obj)
		s.fields(pkg, decl, obj)
	}
	return decl
}

// lookup resolves a qualified type name against the loaded packages.
func (s *scanner) lookup(id ir.GoIdentifier) *types.TypeName {
	pkg, ok := s.index[id.Package]
	if !ok || pkg.Types == nil {
		return nil
	}
	tn, _ := pkg.Types.Scope().Lookup(id.Name).(*types.TypeName)
	return tn
}

// docOf returns the doc comment of a type declared in a loaded package.
func (s *scanner) docOf(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return ""
	}
	pkg, ok := s.index[obj.Pkg().Path()]
	if !ok {
		return ""
	}

	pos := obj.Pos()
	for _, file := range pkg.Syntax {
		if file.Pos() > pos || file.End() < pos {
			continue
		}
		for _, d := range file.Decls {
			gd, ok := d.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				if ts.Name.Pos() != pos {
					continue
				}
				docs := []*ast.CommentGroup{ts.Doc}
				if !gd.Lparen.IsValid() {
					docs = append(docs, gd.Doc)
				}
				return docText(docs)
			}
		}
	}
	return ""
}

func (s *scanner) typeParams(decl *ir.Declaration, obj *types.TypeName) {
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return
	}
	tparams := named.TypeParams()
	for i := 0; i < tparams.Len(); i++ {
		tp := tparams.At(i)
		bound := tp.Constraint()
		if isAny(bound) {
			bound = nil
		}
		decl.TypeParams = append(decl.TypeParams, ir.TypeParam{
			Name:  tp.Obj().Name(),
			Bound: bound,
		})
	}
}

func (s *scanner) fields(pkg *packages.Package, decl *ir.Declaration, obj *types.TypeName) {
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return
	}
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if reflect.StructTag(st.Tag(i)).Get("shadow") == RealTag {
			pos := pkg.Fset.Position(field.Pos())
			if decl.RealObject != nil {
				decl.Problems = append(decl.Problems, ir.Problem{
					Pos:     pos,
					Message: fmt.Sprintf("%s has more than one real-object field", decl.Name),
				})
				continue
			}
			decl.RealObject = &ir.RealObject{Field: field.Name(), Type: field.Type(), Pos: pos}
			continue
		}
		if field.Exported() {
			decl.Fields = append(decl.Fields, ir.Field{Name: field.Name(), Type: field.Type()})
		}
	}
}

// members attaches the directive-carrying methods in funcs to decl.
func (s *scanner) members(pkg *packages.Package, decl *ir.Declaration, funcs []*ast.FuncDecl) {
	for _, fn := range funcs {
		directives, errs := directive.FromComments(pkg.Fset, fn.Doc)
		for _, err := range errs {
			p := ir.Problem{Pos: pkg.Fset.Position(fn.Name.Pos()), Member: fn.Name.Name, Message: err.Error()}
			if derr, ok := err.(*directive.Error); ok {
				p.Pos = derr.Directive.Pos
				p.Message = problemText(derr)
			}
			decl.Problems = append(decl.Problems, p)
		}

		for _, d := range directives {
			m := s.member(pkg, decl, fn, d)
			if m == nil {
				decl.Problems = append(decl.Problems, ir.Problem{
					Pos:     d.Pos,
					Member:  fn.Name.Name,
					Message: fmt.Sprintf("//shadow:%s is not allowed on a method", d.Kind),
				})
				continue
			}

			switch m.Kind {
			case ir.MemberImplementation:
				decl.Members = append(decl.Members, m)
			case ir.MemberConstructor:
				if decl.Constructor == nil {
					decl.Constructor = m
				} else {
					decl.Duplicates = append(decl.Duplicates, m)
				}
			case ir.MemberResetter:
				if decl.Resetter == nil {
					decl.Resetter = m
				} else {
					decl.Duplicates = append(decl.Duplicates, m)
				}
			}
		}
	}
}

func (s *scanner) member(pkg *packages.Package, decl *ir.Declaration, fn *ast.FuncDecl, d directive.Directive) *ir.Member {
	var kind ir.MemberKind
	switch d.Kind {
	case directive.KindImplementation:
		kind = ir.MemberImplementation
	case directive.KindConstructor:
		kind = ir.MemberConstructor
	case directive.KindResetter:
		kind = ir.MemberResetter
	default:
		return nil
	}

	// Missing member bounds are inherited from the declaration.
	r := d.Range()
	if d.Min == shadow.Unbounded {
		r.Min = decl.Range.Min
	}
	if d.Max == shadow.Unbounded {
		r.Max = decl.Range.Max
	}

	m := &ir.Member{
		Kind:          kind,
		Name:          fn.Name.Name,
		Range:         r,
		InAllVersions: !d.Bounded(),
		NeedsReal:     d.Real,
		Pos:           pkg.Fset.Position(fn.Name.Pos()),
	}
	if f, ok := pkg.TypesInfo.Defs[fn.Name].(*types.Func); ok {
		m.Func = f
		m.Signature = signatureString(f, pkg.Types)
	}
	return m
}

// collectMethods indexes the methods of pkg by receiver base type name,
// keeping source order.
func collectMethods(pkg *packages.Package) map[string][]*ast.FuncDecl {
	methods := make(map[string][]*ast.FuncDecl)
	for _, file := range pkg.Syntax {
		for _, d := range file.Decls {
			fn, ok := d.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			if name := recvTypeName(fn.Recv.List[0].Type); name != "" {
				methods[name] = append(methods[name], fn)
			}
		}
	}
	return methods
}

// recvTypeName returns the base type name of a receiver expression such as
// T, *T, T[K] or *T[K, V].
func recvTypeName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}

// docText returns the first non-empty comment text. Directive lines are
// dropped by CommentGroup.Text.
func docText(groups []*ast.CommentGroup) string {
	for _, cg := range groups {
		if cg == nil {
			continue
		}
		if text := cg.Text(); text != "" {
			return text
		}
	}
	return ""
}

// problemText describes a directive error without its position.
func problemText(err *directive.Error) string {
	return fmt.Sprintf("%s: %v", err.Text, err.Err)
}

// signatureString formats a method signature without its receiver.
func signatureString(f *types.Func, pkg *types.Package) string {
	sig, ok := f.Type().(*types.Signature)
	if !ok {
		return ""
	}
	plain := types.NewSignatureType(nil, nil, nil, sig.Params(), sig.Results(), sig.Variadic())
	return types.TypeString(plain, types.RelativeTo(pkg))
}

func isAny(t types.Type) bool {
	if t == nil {
		return true
	}
	iface, ok := t.Underlying().(*types.Interface)
	return ok && iface.Empty()
}
