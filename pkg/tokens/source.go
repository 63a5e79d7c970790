package tokens

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultTheme is the theme used when no selection has been persisted.
const DefaultTheme = "default"

// Source is the parsed token source file: one table per theme variant plus
// the legacy-name mapping. Variant themes overlay the default table, so a
// variant only lists the tokens it overrides or adds.
type Source struct {
	tables map[string]*Table
	legacy LegacyMap
}

// sourceFile mirrors the YAML layout of site/tokens.yaml.
type sourceFile struct {
	Themes map[string]map[string]any `yaml:"themes"`
	Legacy map[string]legacyEntry    `yaml:"legacy"`
}

type legacyEntry struct {
	Replacement string `yaml:"replacement"`
	Reason      string `yaml:"reason"`
}

// Load reads and parses the token source at path.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token source: %w", err)
	}
	src, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// Parse builds a Source from raw YAML. The default theme must exist; every
// flattened path must be unique within its theme.
func Parse(data []byte) (*Source, error) {
	var sf sourceFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse token source: %w", err)
	}
	if _, ok := sf.Themes[DefaultTheme]; !ok {
		return nil, fmt.Errorf("token source has no %q theme", DefaultTheme)
	}

	src := &Source{
		tables: make(map[string]*Table, len(sf.Themes)),
		legacy: make(LegacyMap, len(sf.Legacy)),
	}

	defaults, err := flatten(sf.Themes[DefaultTheme])
	if err != nil {
		return nil, fmt.Errorf("theme %q: %w", DefaultTheme, err)
	}
	src.tables[DefaultTheme] = newTable(DefaultTheme, defaults)

	for theme, tree := range sf.Themes {
		if theme == DefaultTheme {
			continue
		}
		overrides, err := flatten(tree)
		if err != nil {
			return nil, fmt.Errorf("theme %q: %w", theme, err)
		}
		src.tables[theme] = newTable(theme, overlay(defaults, overrides))
	}

	for name, e := range sf.Legacy {
		if e.Replacement == "" {
			return nil, fmt.Errorf("legacy entry %q has no replacement", name)
		}
		src.legacy[name] = LegacyEntry{
			Name:        name,
			Replacement: e.Replacement,
			Reason:      e.Reason,
		}
	}

	for theme, table := range src.tables {
		if errs := table.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("theme %q: %w", theme, errs[0])
		}
	}
	return src, nil
}

// Table returns the table for the given theme, or false if the theme is
// not declared in the source.
func (s *Source) Table(theme string) (*Table, bool) {
	t, ok := s.tables[theme]
	return t, ok
}

// Default returns the default theme's table.
func (s *Source) Default() *Table { return s.tables[DefaultTheme] }

// Themes returns the declared theme names in sorted order.
func (s *Source) Themes() []string {
	names := make([]string, 0, len(s.tables))
	for n := range s.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Legacy returns the deprecated-name mapping.
func (s *Source) Legacy() LegacyMap { return s.legacy }

// flatten walks the nested category tree depth-first, joining segments with
// dashes. Leaves must be scalars; duplicate flattened paths are an error.
func flatten(tree map[string]any) ([]Token, error) {
	var toks []Token
	seen := make(map[string]bool)

	var walk func(path []string, node any) error
	walk = func(path []string, node any) error {
		switch v := node.(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if err := walk(append(path, k), v[k]); err != nil {
					return err
				}
			}
			return nil
		case string, int, float64:
			name := joinPath(path)
			if seen[name] {
				return fmt.Errorf("duplicate token path %q", name)
			}
			seen[name] = true
			toks = append(toks, Token{
				Path:  append([]string(nil), path...),
				Name:  name,
				Value: fmt.Sprintf("%v", v),
				Kind:  kindByCategory[path[0]],
			})
			return nil
		default:
			return fmt.Errorf("token %q: unsupported value type %T", joinPath(path), node)
		}
	}

	for _, k := range sortedKeys(tree) {
		if err := walk([]string{k}, tree[k]); err != nil {
			return nil, err
		}
	}
	return toks, nil
}

// overlay applies variant overrides on top of the default token set.
func overlay(defaults, overrides []Token) []Token {
	merged := make(map[string]Token, len(defaults)+len(overrides))
	for _, t := range defaults {
		merged[t.Name] = t
	}
	for _, t := range overrides {
		merged[t.Name] = t
	}
	out := make([]Token, 0, len(merged))
	for _, t := range merged {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func joinPath(path []string) string {
	out := path[0]
	for _, seg := range path[1:] {
		out += "-" + seg
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
