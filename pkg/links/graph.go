// Package links models the declared site link graph and applies it to page
// markup: edge rewriting, breadcrumb trails, and category-keyed related
// blocks.
package links

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Edge is one directed link requirement: page From should link to page To
// with the given anchor text. Relation-tagged edges are descriptive only —
// they record semantic linkage policy and never require a rendered anchor.
type Edge struct {
	From       string
	To         string
	AnchorText string
	Relation   string
}

// PageMeta is the per-page declaration carried by the graph source: display
// title, hierarchy parent, and the category that keys additive blocks.
type PageMeta struct {
	Path     string
	Title    string
	Parent   string
	Category string
}

// Block is an additive markup fragment inserted into every page of a
// category. Marker is a substring whose presence marks the block as already
// inserted, keeping insertion idempotent.
type Block struct {
	Category string
	Marker   string
	HTML     string
}

// Graph is the ordered collection of edges grouped by source page, plus the
// page metadata and insertion blocks. Immutable once loaded.
type Graph struct {
	pages  map[string]PageMeta
	edges  []Edge
	byFrom map[string][]Edge
	blocks []Block
}

// graphFile mirrors the YAML layout of site/links.yaml.
type graphFile struct {
	Pages map[string]struct {
		Title    string `yaml:"title"`
		Parent   string `yaml:"parent"`
		Category string `yaml:"category"`
	} `yaml:"pages"`
	Links []struct {
		From string `yaml:"from"`
		To   []struct {
			Path   string `yaml:"path"`
			Anchor string `yaml:"anchor"`
			Relate string `yaml:"relate"`
		} `yaml:"to"`
	} `yaml:"links"`
	Blocks []struct {
		Category string `yaml:"category"`
		Marker   string `yaml:"marker"`
		HTML     string `yaml:"html"`
	} `yaml:"blocks"`
}

// Load reads and parses the link graph source at path. A read failure here
// is fatal to the whole run, unlike per-page failures.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read link graph source: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse builds a Graph from raw YAML, rejecting duplicate
// (from, to, anchor) triples.
func Parse(data []byte) (*Graph, error) {
	var gf graphFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("failed to parse link graph source: %w", err)
	}

	g := &Graph{
		pages:  make(map[string]PageMeta, len(gf.Pages)),
		byFrom: make(map[string][]Edge),
	}
	for path, p := range gf.Pages {
		g.pages[path] = PageMeta{
			Path:     path,
			Title:    p.Title,
			Parent:   p.Parent,
			Category: p.Category,
		}
	}

	seen := make(map[[3]string]bool)
	for i, rec := range gf.Links {
		if rec.From == "" {
			return nil, fmt.Errorf("links[%d]: from is required", i)
		}
		for j, to := range rec.To {
			if to.Path == "" {
				return nil, fmt.Errorf("links[%d].to[%d]: path is required", i, j)
			}
			key := [3]string{rec.From, to.Path, to.Anchor}
			if seen[key] {
				return nil, fmt.Errorf("duplicate edge %s -> %s (%q)", rec.From, to.Path, to.Anchor)
			}
			seen[key] = true
			e := Edge{
				From:       rec.From,
				To:         to.Path,
				AnchorText: to.Anchor,
				Relation:   to.Relate,
			}
			g.edges = append(g.edges, e)
			g.byFrom[e.From] = append(g.byFrom[e.From], e)
		}
	}

	for i, b := range gf.Blocks {
		if b.Category == "" || b.HTML == "" {
			return nil, fmt.Errorf("blocks[%d]: category and html are required", i)
		}
		g.blocks = append(g.blocks, Block(b))
	}
	return g, nil
}

// Edges returns every edge in source order.
func (g *Graph) Edges() []Edge { return g.edges }

// EdgesFrom returns the edges whose source is page, in source order.
func (g *Graph) EdgesFrom(page string) []Edge { return g.byFrom[page] }

// Page returns the declared metadata for a page path.
func (g *Graph) Page(path string) (PageMeta, bool) {
	p, ok := g.pages[path]
	return p, ok
}

// BlocksFor returns the additive blocks keyed to a page's category.
func (g *Graph) BlocksFor(category string) []Block {
	var out []Block
	for _, b := range g.blocks {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out
}

// Validate checks that every edge endpoint is a page known to exist.
// Relation-tagged edges are validated too so the tag stays usable if a
// future feature renders them.
func (g *Graph) Validate(exists func(page string) bool) []error {
	var errs []error
	for _, e := range g.edges {
		if !exists(e.From) {
			errs = append(errs, fmt.Errorf("edge source %q: page does not exist", e.From))
		}
		if !exists(e.To) {
			errs = append(errs, fmt.Errorf("edge %s -> %s: target does not exist", e.From, e.To))
		}
	}
	for path, p := range g.pages {
		if p.Parent != "" {
			if _, ok := g.pages[p.Parent]; !ok {
				errs = append(errs, fmt.Errorf("page %q: parent %q is not declared", path, p.Parent))
			}
		}
	}
	return errs
}

// Ancestry returns the chain root-first for a page, excluding the page
// itself. Cycles and undeclared parents terminate the walk with an error.
func (g *Graph) Ancestry(page string) ([]PageMeta, error) {
	var chain []PageMeta
	visited := map[string]bool{page: true}
	cur, ok := g.pages[page]
	if !ok {
		return nil, fmt.Errorf("page %q is not declared in the graph", page)
	}
	for cur.Parent != "" {
		if visited[cur.Parent] {
			return nil, fmt.Errorf("ancestry cycle at %q", cur.Parent)
		}
		visited[cur.Parent] = true
		parent, ok := g.pages[cur.Parent]
		if !ok {
			return nil, fmt.Errorf("page %q: parent %q is not declared", cur.Path, cur.Parent)
		}
		chain = append([]PageMeta{parent}, chain...)
		cur = parent
	}
	return chain, nil
}
