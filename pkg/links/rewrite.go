package links

import (
	"sort"
	"strings"
)

// ApplyEdges rewrites existing anchors on a page so they conform to the
// graph's non-relation edges from that page. An anchor matches an edge when
// its visible text equals the edge's anchor text or its href already targets
// the edge's destination; matching anchors get their href rewritten to the
// edge target and every other attribute is preserved. Edges with no matching
// anchor are not fabricated here — insertion is the separate additive step.
func ApplyEdges(pageText, pageID string, graph *Graph) string {
	edges := graph.EdgesFrom(pageID)
	if len(edges) == 0 {
		return pageText
	}

	type edit struct {
		start, end int
		repl       string
	}
	var edits []edit
	claimed := make(map[int]bool) // anchor OpenStart -> already rewritten

	anchors := FindAnchors(pageText)
	for _, e := range edges {
		if e.Relation != "" {
			continue
		}
		want := RelHref(pageID, e.To)
		for _, a := range anchors {
			if claimed[a.OpenStart] || a.HrefStart < 0 {
				continue
			}
			internal := !IsExternal(a.Href) && !IsFragment(a.Href)
			if internal && NormalizeHref(pageID, a.Href) == e.To {
				// Already targets the edge destination; leave the author's
				// href form alone.
				claimed[a.OpenStart] = true
				continue
			}
			if a.Text != e.AnchorText {
				continue
			}
			claimed[a.OpenStart] = true
			edits = append(edits, edit{start: a.HrefStart, end: a.HrefEnd, repl: want})
		}
	}

	if len(edits) == 0 {
		return pageText
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	prev := 0
	for _, e := range edits {
		b.WriteString(pageText[prev:e.start])
		b.WriteString(e.repl)
		prev = e.end
	}
	b.WriteString(pageText[prev:])
	return b.String()
}
