package scan_test

import (
	"context"
	"strings"
	"testing"

	"github.com/broady/shadow"
	"github.com/broady/shadow/internal/shadowtest"
	"github.com/broady/shadow/shadowgen/ir"
	"github.com/broady/shadow/shadowgen/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoPatterns(t *testing.T) {
	_, err := scan.Load(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no packages specified")
}

func TestScan_StatFs(t *testing.T) {
	decls := shadowtest.Scan(t, "shadows")

	d := shadowtest.Find(t, decls, "ShadowStatFs")
	assert.Equal(t, shadowtest.Path("shadows"), d.Package)
	assert.Equal(t, "shadows", d.PackageName)
	assert.True(t, d.Exported)
	assert.Equal(t, shadowtest.Target("StatFs"), d.TargetName())
	assert.Equal(t, shadow.Range{Min: 18, Max: shadow.Unbounded}, d.Range)
	assert.NotNil(t, d.TargetObj)
	assert.False(t, d.Loose)
	assert.Empty(t, d.Problems)

	require.NotNil(t, d.RealObject)
	assert.Equal(t, "real", d.RealObject.Field)
	assert.Equal(t, "*"+shadowtest.Target("StatFs"), d.RealObject.Type.String())

	require.Len(t, d.Fields, 1, "only exported non-real fields")
	assert.Equal(t, "Path", d.Fields[0].Name)

	require.NotNil(t, d.Constructor)
	assert.Equal(t, "Construct", d.Constructor.Name)
	require.NotNil(t, d.Resetter)
	assert.Equal(t, "Reset", d.Resetter.Name)
	assert.Empty(t, d.Duplicates)

	var names []string
	for _, m := range d.Members {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"BlockSize", "BlockCount", "BlockSizeLong", "BlockCountLong"}, names)

	size := shadowtest.Member(d, "BlockSize")
	assert.True(t, size.InAllVersions)
	assert.Equal(t, d.Range, size.Range, "unbounded members inherit the declaration range")
	assert.Equal(t, "func() int", size.Signature)

	long := shadowtest.Member(d, "BlockCountLong")
	assert.False(t, long.InAllVersions)
	assert.Equal(t, shadow.Range{Min: 20, Max: shadow.Unbounded}, long.Range)
	assert.Equal(t, "func() int64", long.Signature)

	surface := d.Surface()
	assert.Equal(t, "Construct", surface[0].Name)
	assert.Equal(t, "Reset", surface[len(surface)-1].Name)
}

func TestScan_LegacyStatFs(t *testing.T) {
	d := shadowtest.Find(t, shadowtest.Scan(t, "shadows"), "ShadowLegacyStatFs")

	assert.Equal(t, shadow.Range{Min: shadow.Unbounded, Max: 17}, d.Range)

	restat := shadowtest.Member(d, "Restat")
	require.NotNil(t, restat)
	assert.True(t, restat.NeedsReal)
	assert.Equal(t, "func(path string)", restat.Signature)
	assert.Equal(t, shadow.Range{Min: shadow.Unbounded, Max: 17}, restat.Range)

	assert.False(t, shadowtest.Member(d, "BlockSize").NeedsReal)
}

func TestScan_TypeParams(t *testing.T) {
	decls := shadowtest.Scan(t, "shadows")

	box := shadowtest.Find(t, decls, "ShadowBox")
	require.Len(t, box.TypeParams, 1)
	assert.Equal(t, "T", box.TypeParams[0].Name)
	assert.Nil(t, box.TypeParams[0].Bound, "any is reported as no bound")

	pair := shadowtest.Find(t, decls, "ShadowPair")
	require.Len(t, pair.TypeParams, 2)
	assert.Equal(t, "K", pair.TypeParams[0].Name)
	require.NotNil(t, pair.TypeParams[0].Bound)
	assert.Equal(t, "comparable", pair.TypeParams[0].Bound.String())
	assert.Equal(t, "V", pair.TypeParams[1].Name)
	assert.Nil(t, pair.TypeParams[1].Bound)

	assert.True(t, pair.Generic())
	assert.False(t, shadowtest.Find(t, decls, "ShadowDummy").Generic())
}

func TestScan_Documentation(t *testing.T) {
	decls := shadowtest.Scan(t, "shadows")

	obj := shadowtest.Find(t, decls, "ShadowDocumentedObject")
	assert.True(t, obj.Loose)
	assert.Equal(t, "DocumentedObject is an object with documentation.\n\nPlatform documentation goes here!\n", obj.TargetDoc)
	assert.Equal(t, "ShadowDocumentedObject adds docs.\n", obj.Doc, "directives are stripped")

	var names []string
	for _, m := range obj.Members {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Lookup", "Copy", "Mode"}, names, "methods without directives are not members")

	lookup := shadowtest.Member(obj, "Lookup")
	option := shadowtest.Target("Option")
	assert.Equal(t, "func(key string, opts map[string]"+option+") ("+option+", error)", lookup.Signature)

	undoc := shadowtest.Find(t, decls, "ShadowUndocumented")
	assert.Empty(t, undoc.TargetDoc)
	assert.Equal(t, "ShadowUndocumented has its own documentation.\n", undoc.Doc)
	require.Len(t, undoc.Fields, 1)
	assert.Equal(t, "Closed", undoc.Fields[0].Name)
}

func TestScan_Sorted(t *testing.T) {
	decls := shadowtest.Scan(t, "shadows", "outer/shadows")
	for i := 1; i < len(decls); i++ {
		assert.Less(t, decls[i-1].Key(), decls[i].Key())
	}

	var dummies []*ir.Declaration
	for _, d := range decls {
		if d.Name == "ShadowDummy" {
			dummies = append(dummies, d)
		}
	}
	require.Len(t, dummies, 2)
	assert.Equal(t, shadowtest.Target("OtherDummy"), dummies[0].TargetName())
	assert.Equal(t, shadowtest.Target("Dummy"), dummies[1].TargetName())
}

func TestScan_CatchAll(t *testing.T) {
	d := shadowtest.Find(t, shadowtest.Scan(t, "anything"), "ShadowAnything")

	assert.True(t, d.CatchAll)
	assert.Equal(t, "*", d.TargetName())
	assert.True(t, d.Target.IsZero())
	assert.Nil(t, d.TargetObj)
	assert.Equal(t, shadow.All, d.Range)
	require.NotNil(t, d.RealObject)
	assert.Equal(t, "any", d.RealObject.Type.String())
}

func TestScan_ByName(t *testing.T) {
	d := shadowtest.Find(t, shadowtest.Scan(t, "byname"), "ShadowHidden")
	assert.True(t, d.ByName)
	assert.Equal(t, "example.com/internal/vendored.Hidden", d.TargetName())
	assert.Equal(t, "example.com/internal/vendored", d.TargetPackage())
	assert.Nil(t, d.TargetObj)
	assert.Empty(t, d.TargetDoc)
	assert.Equal(t, shadow.Range{Min: 21, Max: shadow.Unbounded}, d.Range)
	assert.Empty(t, d.Problems)
}

func TestScan_InterfaceTarget(t *testing.T) {
	d := shadowtest.Find(t, shadowtest.Scan(t, "iface"), "ShadowOpener")
	require.NotNil(t, d.TargetObj)
	assert.Equal(t, "Opener opens named resources.\n", d.TargetDoc)
	require.NotNil(t, d.RealObject)
	assert.Equal(t, shadowtest.Target("Opener"), d.RealObject.Type.String())
}

func TestScan_Unexported(t *testing.T) {
	decls := shadowtest.Scan(t, "private")
	require.Len(t, decls, 2)

	assert.False(t, shadowtest.Find(t, decls, "shadowHidden").Exported)
	assert.True(t, shadowtest.Find(t, decls, "ShadowVisible").Exported)
}

func TestScan_IgnoresUnrelatedDecorations(t *testing.T) {
	assert.Empty(t, shadowtest.Scan(t, "unrelated"))
}

func TestScan_RecordsProblems(t *testing.T) {
	decls := shadowtest.Scan(t, "broken/multi")

	nope := shadowtest.Find(t, decls, "ShadowNope")
	assert.Nil(t, nope.TargetObj)
	assert.Equal(t, shadowtest.Target("Nope"), nope.TargetName())

	inverted := shadowtest.Find(t, decls, "ShadowInverted")
	assert.False(t, inverted.Range.Valid())

	missing := shadowtest.Find(t, decls, "ShadowMissing")
	require.Len(t, missing.Problems, 1)
	assert.Equal(t, "Name", missing.Problems[0].Member)
	assert.True(t, strings.Contains(missing.Problems[0].Message, `invalid version "soon"`), missing.Problems[0].Message)
	assert.Nil(t, shadowtest.Member(missing, "Name"), "malformed members are dropped")

	require.NotNil(t, missing.Resetter)
	assert.Equal(t, "Reset", missing.Resetter.Name)
	require.Len(t, missing.Duplicates, 1)
	assert.Equal(t, "ResetAgain", missing.Duplicates[0].Name)
}
