package resolve_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/broady/shadow/internal/shadowtest"
	"github.com/broady/shadow/shadowgen/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(path, name string) resolve.Item {
	return resolve.Item{Key: path + "." + name, Name: name, Scope: strings.Split(path, "/")}
}

func TestNames(t *testing.T) {
	tests := []struct {
		name     string
		items    []resolve.Item
		reserved []string
		want     map[string]string
	}{
		{
			name:  "unique names are kept",
			items: []resolve.Item{item("a/b", "X"), item("a/c", "Y")},
			want:  map[string]string{"a/b.X": "X", "a/c.Y": "Y"},
		},
		{
			name:  "innermost scope",
			items: []resolve.Item{item("a/b", "X"), item("a/c", "X")},
			want:  map[string]string{"a/b.X": "XB", "a/c.X": "XC"},
		},
		{
			name:  "shared innermost scope",
			items: []resolve.Item{item("a/b/c", "X"), item("d/b/c", "X")},
			want:  map[string]string{"a/b/c.X": "XABC", "d/b/c.X": "XDBC"},
		},
		{
			name:  "different depths",
			items: []resolve.Item{item("x/shadows", "S"), item("x/outer/shadows", "S")},
			want:  map[string]string{"x/shadows.S": "SXShadows", "x/outer/shadows.S": "SOuterShadows"},
		},
		{
			name:  "suffix avoids existing names",
			items: []resolve.Item{item("a/c", "X"), item("b/d", "X"), item("z", "XC")},
			want:  map[string]string{"a/c.X": "XAC", "b/d.X": "XBD", "z.XC": "XC"},
		},
		{
			name:     "reserved",
			items:    []resolve.Item{item("a/b", "Shadows")},
			reserved: []string{"Shadows"},
			want:     map[string]string{"a/b.Shadows": "ShadowsB"},
		},
		{
			name:  "scopes are sanitized",
			items: []resolve.Item{item("gopkg.in/yaml.v3", "Node"), item("example.com/my-yaml", "Node")},
			want:  map[string]string{"gopkg.in/yaml.v3.Node": "NodeYamlV3", "example.com/my-yaml.Node": "NodeMyYaml"},
		},
		{
			name: "identical scopes",
			items: []resolve.Item{
				{Key: "one", Name: "X", Scope: []string{"p"}},
				{Key: "two", Name: "X", Scope: []string{"p"}},
			},
			want: map[string]string{"one": "XP1", "two": "XP2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve.Names(tt.items, tt.reserved...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNames_UniqueAndDeterministic(t *testing.T) {
	var items []resolve.Item
	for _, path := range []string{"a", "a/b", "c/b", "c/d", "e/a/b", "f/g"} {
		for _, name := range []string{"X", "Y", "XB", "XAB"} {
			items = append(items, item(path, name))
		}
	}

	want := resolve.Names(items)
	require.Len(t, want, len(items))

	seen := make(map[string]string)
	for key, name := range want {
		if other, ok := seen[name]; ok {
			t.Fatalf("%s and %s both resolved to %s", key, other, name)
		}
		seen[name] = key
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]resolve.Item(nil), items...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, want, resolve.Names(shuffled))
	}
}

func TestDeclarations(t *testing.T) {
	decls := shadowtest.Scan(t, "shadows", "outer/shadows")

	names := resolve.Declarations(decls, "Shadows")
	assert.Equal(t, "ShadowDummyTestdataShadows", names[shadowtest.Path("shadows")+".ShadowDummy"])
	assert.Equal(t, "ShadowDummyOuterShadows", names[shadowtest.Path("outer/shadows")+".ShadowDummy"])
	assert.Equal(t, "ShadowStatFs", names[shadowtest.Path("shadows")+".ShadowStatFs"])
}

func TestImportAliases(t *testing.T) {
	got := resolve.ImportAliases(map[string]string{
		shadowtest.Path("shadows"):       "shadows",
		shadowtest.Path("outer/shadows"): "shadows",
		"github.com/broady/shadow":       "shadow",
		"io":                             "io",
	}, "entries")

	assert.Equal(t, map[string]string{
		shadowtest.Path("shadows"):       "shadowsTestdata",
		shadowtest.Path("outer/shadows"): "shadowsOuter",
		"github.com/broady/shadow":       "shadow",
		"io":                             "io",
	}, got)
}
