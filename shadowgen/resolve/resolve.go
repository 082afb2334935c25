// Package resolve assigns unique identifiers to shadows that are flattened
// into one generated package.
//
// A name that is unique keeps its spelling. Names shared by several items are
// suffixed with their innermost enclosing scopes, one more scope at a time
// until every candidate is unique. Resolution is a pure function of its input,
// so identifiers are stable only for a fixed input set: adding an item that
// collides with an existing one can rename both.
package resolve

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/broady/shadow/shadowgen/ir"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Item is a name to resolve.
type Item struct {
	// Key identifies the item, typically its fully qualified path.
	Key string

	// Name is the item's simple name.
	Name string

	// Scope holds the enclosing scopes, outermost first.
	Scope []string
}

// Names returns a unique identifier for every item, keyed by Item.Key.
// Reserved names are never assigned; an item whose simple name is reserved is
// disambiguated as if it collided.
func Names(items []Item, reserved ...string) map[string]string {
	groups := make(map[string][]Item)
	for _, it := range items {
		groups[it.Name] = append(groups[it.Name], it)
	}

	taken := make(map[string]bool)
	for _, r := range reserved {
		taken[r] = true
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]string, len(items))
	var collided []string
	for _, name := range names {
		if len(groups[name]) == 1 && !taken[name] {
			out[groups[name][0].Key] = name
			taken[name] = true
			continue
		}
		collided = append(collided, name)
	}

	for _, name := range collided {
		group := groups[name]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Key < group[j].Key
		})
		for i, ident := range disambiguate(group, taken) {
			out[group[i].Key] = ident
			taken[ident] = true
		}
	}
	return out
}

// disambiguate suffixes each item with its innermost d scopes, growing d until
// the candidates are unique and free.
func disambiguate(group []Item, taken map[string]bool) []string {
	depth := 0
	for _, it := range group {
		depth = max(depth, len(it.Scope))
	}

	cands := make([]string, len(group))
	for d := 1; d <= depth; d++ {
		for i, it := range group {
			n := min(d, len(it.Scope))
			cands[i] = it.Name + suffix(it.Scope[len(it.Scope)-n:])
		}
		if free(cands, taken) {
			return cands
		}
	}

	// Only reachable when scopes coincide; fall back to the sorted position.
	for i := range cands {
		base := cands[i]
		if base == "" {
			base = group[i].Name
		}
		for n := i + 1; ; n += len(group) {
			cands[i] = base + strconv.Itoa(n)
			if !taken[cands[i]] {
				break
			}
		}
	}
	return cands
}

func free(cands []string, taken map[string]bool) bool {
	seen := make(map[string]bool, len(cands))
	for _, c := range cands {
		if seen[c] || taken[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

// suffix title-cases each scope and drops characters that cannot appear in
// an identifier, so "yaml.v3" becomes "YamlV3".
func suffix(scopes []string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, s := range scopes {
		for _, word := range strings.FieldsFunc(s, notIdent) {
			b.WriteString(title.String(word))
		}
	}
	return b.String()
}

func notIdent(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Declarations resolves the identifiers of decls in the generated package,
// keyed by Declaration.Key. The scope of a declaration is its import path.
func Declarations(decls []*ir.Declaration, reserved ...string) map[string]string {
	items := make([]Item, len(decls))
	for i, d := range decls {
		items[i] = Item{Key: d.Key(), Name: d.Name, Scope: d.Scope()}
	}
	return Names(items, reserved...)
}

// ImportAliases resolves the local names of imported packages. pkgs maps
// import paths to package names; the result maps import paths to aliases.
// A package keeps its own name unless another import shares it.
func ImportAliases(pkgs map[string]string, reserved ...string) map[string]string {
	items := make([]Item, 0, len(pkgs))
	for path, name := range pkgs {
		scope := strings.Split(path, "/")
		items = append(items, Item{Key: path, Name: name, Scope: scope[:len(scope)-1]})
	}
	return Names(items, reserved...)
}
