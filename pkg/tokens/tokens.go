// Package tokens holds the canonical design token tables: symbolic names
// organized as a category tree, flattened to dash-joined CSS custom property
// names, with one table per theme variant and a legacy-name mapping.
package tokens

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies what a token's literal value represents.
type Kind string

const (
	KindColor         Kind = "color"
	KindSpacing       Kind = "spacing"
	KindFontSize      Kind = "fontSize"
	KindRadius        Kind = "radius"
	KindShadow        Kind = "shadow"
	KindZIndex        Kind = "zIndex"
	KindDuration      Kind = "duration"
	KindWeight        Kind = "weight"
	KindLetterSpacing Kind = "letterSpacing"
	KindMaxWidth      Kind = "maxWidth"
)

// kindByCategory maps a token path's first segment to its kind.
var kindByCategory = map[string]Kind{
	"color":          KindColor,
	"spacing":        KindSpacing,
	"font-size":      KindFontSize,
	"radius":         KindRadius,
	"shadow":         KindShadow,
	"z-index":        KindZIndex,
	"duration":       KindDuration,
	"weight":         KindWeight,
	"letter-spacing": KindLetterSpacing,
	"max-width":      KindMaxWidth,
}

// Token is one symbolic name standing in for a literal design value.
type Token struct {
	// Path is the ordered category segments, e.g. ["color","brand","secondary"].
	Path []string
	// Name is the flattened dash-joined form, e.g. "color-brand-secondary".
	Name string
	// Value is the literal the token resolves to, e.g. "#FFD700".
	Value string
	// Kind is derived from the first path segment.
	Kind Kind
}

// CSSVar returns the custom property name, e.g. "--color-brand-secondary".
func (t Token) CSSVar() string { return "--" + t.Name }

// Ref returns the symbolic reference form used in page text,
// e.g. "var(--color-brand-secondary)".
func (t Token) Ref() string { return "var(" + t.CSSVar() + ")" }

// Table is an immutable mapping from flattened token name to Token for one
// theme variant. Built once at load; regenerated, never mutated, on reload.
type Table struct {
	Theme   string
	byName  map[string]Token
	byValue map[string][]Token // value -> tokens, sorted by path
}

// newTable builds the lookup indexes from a token slice.
func newTable(theme string, toks []Token) *Table {
	t := &Table{
		Theme:   theme,
		byName:  make(map[string]Token, len(toks)),
		byValue: make(map[string][]Token),
	}
	for _, tok := range toks {
		t.byName[tok.Name] = tok
		t.byValue[tok.Value] = append(t.byValue[tok.Value], tok)
	}
	for v := range t.byValue {
		sort.Slice(t.byValue[v], func(i, j int) bool {
			return t.byValue[v][i].Name < t.byValue[v][j].Name
		})
	}
	return t
}

// Lookup returns the token with the given flattened name.
func (t *Table) Lookup(name string) (Token, bool) {
	tok, ok := t.byName[name]
	return tok, ok
}

// ByValue returns the token whose literal value equals v exactly. Ties
// (several tokens sharing one value) resolve to the lexicographically
// earliest path, deterministically.
func (t *Table) ByValue(v string) (Token, bool) {
	toks := t.byValue[v]
	if len(toks) == 0 {
		return Token{}, false
	}
	return toks[0], true
}

// Len returns the number of tokens in the table.
func (t *Table) Len() int { return len(t.byName) }

// Names returns all flattened token names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns the tokens in name-sorted order.
func (t *Table) All() []Token {
	out := make([]Token, 0, len(t.byName))
	for _, n := range t.Names() {
		out = append(out, t.byName[n])
	}
	return out
}

// Validate checks the table for internal consistency. Returns a slice of
// validation errors (empty if valid).
func (t *Table) Validate() []error {
	var errs []error
	for name, tok := range t.byName {
		if len(tok.Path) == 0 {
			errs = append(errs, fmt.Errorf("token %q: empty path", name))
			continue
		}
		if _, ok := kindByCategory[tok.Path[0]]; !ok {
			errs = append(errs, fmt.Errorf("token %q: unknown category %q", name, tok.Path[0]))
		}
		if strings.TrimSpace(tok.Value) == "" {
			errs = append(errs, fmt.Errorf("token %q: empty value", name))
		}
	}
	return errs
}

// EmitCSS renders the table as a flat runtime-variable listing for the
// rendering layer. The default theme emits a bare :root block; variants emit
// a [data-theme="name"] scoped block.
func (t *Table) EmitCSS() string {
	var b strings.Builder
	if t.Theme == "" || t.Theme == DefaultTheme {
		b.WriteString(":root {\n")
	} else {
		fmt.Fprintf(&b, "[data-theme=%q] {\n", t.Theme)
	}
	for _, tok := range t.All() {
		fmt.Fprintf(&b, "  %s: %s;\n", tok.CSSVar(), tok.Value)
	}
	b.WriteString("}\n")
	return b.String()
}
