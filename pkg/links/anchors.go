package links

import (
	"path"
	"regexp"
	"sort"
	"strings"
)

// Anchor is one <a> element found in page text.
type Anchor struct {
	Href string
	// Text is the visible text with nested tags stripped and whitespace
	// collapsed.
	Text string
	// Line is the 1-based line of the opening tag.
	Line int
	// OpenStart/OpenEnd delimit the opening tag; HrefStart/HrefEnd delimit
	// the href attribute value inside it.
	OpenStart, OpenEnd int
	HrefStart, HrefEnd int
}

var (
	anchorOpenRe = regexp.MustCompile(`(?is)<a\b[^>]*>`)
	hrefAttrRe   = regexp.MustCompile(`(?i)href\s*=\s*"([^"]*)"|href\s*=\s*'([^']*)'`)
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// externalSchemes are href prefixes the auditor treats as external targets.
var externalSchemes = []string{
	"http://", "https://", "mailto:", "tel:", "data:", "javascript:", "//",
}

// FindAnchors scans page text for anchors in document order. Anchors with no
// closing tag run to end of text; malformed markup never aborts the scan.
func FindAnchors(text string) []Anchor {
	var anchors []Anchor
	for _, m := range anchorOpenRe.FindAllStringIndex(text, -1) {
		open := text[m[0]:m[1]]
		a := Anchor{OpenStart: m[0], OpenEnd: m[1], HrefStart: -1, HrefEnd: -1}

		if hm := hrefAttrRe.FindStringSubmatchIndex(open); hm != nil {
			g := 2
			if hm[2] < 0 {
				g = 4
			}
			a.HrefStart = m[0] + hm[g]
			a.HrefEnd = m[0] + hm[g+1]
			a.Href = text[a.HrefStart:a.HrefEnd]
		}

		rest := text[m[1]:]
		if close := strings.Index(strings.ToLower(rest), "</a>"); close >= 0 {
			a.Text = visibleText(rest[:close])
		} else {
			a.Text = visibleText(rest)
		}
		a.Line = 1 + strings.Count(text[:m[0]], "\n")
		anchors = append(anchors, a)
	}
	sort.SliceStable(anchors, func(i, j int) bool {
		return anchors[i].OpenStart < anchors[j].OpenStart
	})
	return anchors
}

// visibleText strips nested tags and collapses whitespace.
func visibleText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// IsExternal reports whether an href targets an external scheme.
func IsExternal(href string) bool {
	for _, prefix := range externalSchemes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}

// IsFragment reports whether an href is a same-page fragment reference.
func IsFragment(href string) bool {
	return strings.HasPrefix(href, "#")
}

// NormalizeHref resolves an internal href against the directory of the page
// it appears on, returning a site-root-relative page path. Fragments and
// query strings are dropped; a leading slash anchors at the site root.
func NormalizeHref(fromPage, href string) string {
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	if href == "" {
		return fromPage
	}
	if strings.HasPrefix(href, "/") {
		return path.Clean(strings.TrimPrefix(href, "/"))
	}
	return path.Clean(path.Join(path.Dir(fromPage), href))
}

// RelHref renders a site-root-relative target as an href usable from
// fromPage's directory.
func RelHref(fromPage, toPage string) string {
	fromDir := path.Dir(fromPage)
	if fromDir == "." {
		return toPage
	}
	ups := strings.Count(fromDir, "/") + 1
	return strings.Repeat("../", ups) + toPage
}
