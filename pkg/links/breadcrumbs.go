package links

import (
	"fmt"
	"regexp"
	"strings"
)

// breadcrumbMarker identifies an already-inserted trail so synthesis stays
// idempotent.
const breadcrumbMarker = `class="breadcrumbs"`

var (
	heroOpenRe = regexp.MustCompile(`(?i)<(\w+)\b[^>]*class\s*=\s*["'][^"']*\b(?:hero|banner)\b[^"']*["'][^>]*>`)
	mainOpenRe = regexp.MustCompile(`(?i)<main\b[^>]*>`)
)

// ErrNoInsertionPoint is returned when a page has neither a hero/banner
// region nor a main content region to anchor an insertion. The page is left
// unmodified for that feature only.
type ErrNoInsertionPoint struct {
	Page    string
	Feature string
}

func (e *ErrNoInsertionPoint) Error() string {
	return fmt.Sprintf("%s: no insertion point for %s", e.Page, e.Feature)
}

// BreadcrumbTrail renders the ordered trail for a page from its declared
// ancestry: every non-terminal entry links to its section root, the terminal
// entry is plain text equal to the page's own title.
func BreadcrumbTrail(pageID string, graph *Graph) (string, error) {
	meta, ok := graph.Page(pageID)
	if !ok {
		return "", fmt.Errorf("page %q is not declared in the graph", pageID)
	}
	chain, err := graph.Ancestry(pageID)
	if err != nil {
		return "", err
	}
	if len(chain) == 0 {
		// Root pages carry no trail.
		return "", nil
	}

	var b strings.Builder
	b.WriteString(`<nav class="breadcrumbs" aria-label="Breadcrumb">`)
	for _, ancestor := range chain {
		title := ancestor.Title
		if title == "" {
			title = ancestor.Path
		}
		fmt.Fprintf(&b, `<a href="%s">%s</a> &rsaquo; `, RelHref(pageID, ancestor.Path), title)
	}
	title := meta.Title
	if title == "" {
		title = meta.Path
	}
	fmt.Fprintf(&b, `<span aria-current="page">%s</span></nav>`, title)
	return b.String(), nil
}

// InsertBreadcrumbs synthesizes and places the trail: immediately after the
// primary hero/banner region when present, otherwise immediately inside the
// main content region. Returns ErrNoInsertionPoint when neither exists.
// Pages not declared in the graph have no ancestry and pass through
// unchanged, like pages without a category in InsertBlocks.
func InsertBreadcrumbs(pageText, pageID string, graph *Graph) (string, error) {
	if _, ok := graph.Page(pageID); !ok {
		return pageText, nil
	}
	if strings.Contains(pageText, breadcrumbMarker) {
		return pageText, nil
	}
	trail, err := BreadcrumbTrail(pageID, graph)
	if err != nil {
		return pageText, err
	}
	if trail == "" {
		return pageText, nil
	}

	if loc := heroOpenRe.FindStringSubmatchIndex(pageText); loc != nil {
		tag := pageText[loc[2]:loc[3]]
		end := findElementEnd(pageText, tag, loc[1])
		return pageText[:end] + "\n" + trail + pageText[end:], nil
	}
	if loc := mainOpenRe.FindStringIndex(pageText); loc != nil {
		return pageText[:loc[1]] + "\n" + trail + pageText[loc[1]:], nil
	}
	return pageText, &ErrNoInsertionPoint{Page: pageID, Feature: "breadcrumbs"}
}

// InsertBlocks appends the category-keyed additive blocks for a page just
// before the main region closes. Blocks whose marker is already present are
// skipped so repeated runs insert nothing new.
func InsertBlocks(pageText, pageID string, graph *Graph) (string, error) {
	meta, ok := graph.Page(pageID)
	if !ok || meta.Category == "" {
		return pageText, nil
	}
	blocks := graph.BlocksFor(meta.Category)
	if len(blocks) == 0 {
		return pageText, nil
	}

	var pending []string
	for _, blk := range blocks {
		if blk.Marker != "" && strings.Contains(pageText, blk.Marker) {
			continue
		}
		pending = append(pending, strings.TrimRight(blk.HTML, "\n"))
	}
	if len(pending) == 0 {
		return pageText, nil
	}

	closeIdx := strings.Index(strings.ToLower(pageText), "</main>")
	if closeIdx < 0 {
		return pageText, &ErrNoInsertionPoint{Page: pageID, Feature: "related blocks"}
	}
	insert := strings.Join(pending, "\n") + "\n"
	return pageText[:closeIdx] + insert + pageText[closeIdx:], nil
}

// findElementEnd walks forward from the end of an opening tag to the end of
// the matching close tag, tracking nesting depth for same-named elements.
// Falls back to the opening tag's end when the close tag is missing.
func findElementEnd(text, tag string, from int) int {
	lower := strings.ToLower(text)
	tag = strings.ToLower(tag)
	open := "<" + tag
	closeTag := "</" + tag + ">"

	depth := 1
	pos := from
	for depth > 0 {
		nextOpen := strings.Index(lower[pos:], open)
		nextClose := strings.Index(lower[pos:], closeTag)
		if nextClose < 0 {
			return from
		}
		// A same-named descendant opens before our close tag.
		if nextOpen >= 0 && nextOpen < nextClose && isTagBoundary(lower, pos+nextOpen+len(open)) {
			depth++
			pos += nextOpen + len(open)
			continue
		}
		depth--
		pos += nextClose + len(closeTag)
	}
	return pos
}

// isTagBoundary reports whether the byte at i terminates a tag name.
func isTagBoundary(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	c := s[i]
	return c == ' ' || c == '>' || c == '\t' || c == '\n' || c == '/'
}
