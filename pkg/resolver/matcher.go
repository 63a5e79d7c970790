// Package resolver detects raw design literals in page text and rewrites
// them to symbolic token references, reporting everything it cannot resolve.
package resolver

import (
	"iter"
	"regexp"
	"sort"
)

// LiteralKind tags which pattern class matched a literal.
type LiteralKind string

const (
	LiteralColor    LiteralKind = "color"
	LiteralShadow   LiteralKind = "shadow"
	LiteralLength   LiteralKind = "length"
	LiteralDuration LiteralKind = "duration"
	LiteralWeight   LiteralKind = "weight"
	LiteralZIndex   LiteralKind = "z-index"
)

// Span is a half-open byte range [Start, End) within the scanned text.
type Span struct {
	Start, End int
}

// Match is one literal occurrence found in page text.
type Match struct {
	Text   string
	Kind   LiteralKind
	Line   int // 1-based
	Column int // 1-based byte column
	Span   Span
}

// LiteralPattern recognizes one class of literal values. New literal kinds
// are added by implementing this interface, not by branching on pattern
// index.
type LiteralPattern interface {
	Kind() LiteralKind
	// Find returns the spans of every occurrence in document order.
	Find(text string) []Span
}

// regexpPattern implements LiteralPattern with a compiled regexp. When group
// is nonzero, only that capture group is reported (used for property-scoped
// literals like font-weight values).
type regexpPattern struct {
	kind  LiteralKind
	re    *regexp.Regexp
	group int
}

func (p *regexpPattern) Kind() LiteralKind { return p.kind }

func (p *regexpPattern) Find(text string) []Span {
	idx := p.re.FindAllStringSubmatchIndex(text, -1)
	spans := make([]Span, 0, len(idx))
	for _, m := range idx {
		start, end := m[2*p.group], m[2*p.group+1]
		if start < 0 {
			continue
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

// Default patterns in scan order. Shadow is scanned ahead of color so a
// shadow's trailing color component stays part of the shadow span; for
// identical spans the kindPriority ranking (color > shadow > length >
// duration > weight) decides which class reports, so no span is ever
// reported twice.
var defaultPatterns = []LiteralPattern{
	&regexpPattern{kind: LiteralShadow, re: regexp.MustCompile(
		`\b-?\d+(?:px)?\s+-?\d+(?:px)?\s+\d+(?:px)?(?:\s+-?\d+(?:px)?)?\s+(?:#[0-9a-fA-F]{3,8}\b|rgba?\([^)]*\)|hsla?\([^)]*\))`)},
	&regexpPattern{kind: LiteralColor, re: regexp.MustCompile(
		`#[0-9a-fA-F]{8}\b|#[0-9a-fA-F]{6}\b|#[0-9a-fA-F]{3,4}\b|\brgba?\([^)]*\)|\bhsla?\([^)]*\)`)},
	&regexpPattern{kind: LiteralLength, re: regexp.MustCompile(
		`\b\d+(?:\.\d+)?(?:px|rem|em|vw|vh|ch|%)`)},
	&regexpPattern{kind: LiteralDuration, re: regexp.MustCompile(
		`\b\d+(?:\.\d+)?(?:ms|s)\b`)},
	&regexpPattern{kind: LiteralWeight, re: regexp.MustCompile(
		`font-weight:\s*([1-9]00)\b`), group: 1},
	&regexpPattern{kind: LiteralZIndex, re: regexp.MustCompile(
		`z-index:\s*(-?\d+)\b`), group: 1},
}

// kindPriority ranks classes for identical-span deduplication.
var kindPriority = map[LiteralKind]int{
	LiteralColor:    0,
	LiteralShadow:   1,
	LiteralLength:   2,
	LiteralDuration: 3,
	LiteralWeight:   4,
	LiteralZIndex:   5,
}

// tokenRefRe matches the symbolic reference syntax. Literals inside an
// existing reference are never reported.
var tokenRefRe = regexp.MustCompile(`var\(\s*--[A-Za-z0-9_-]+\s*(?:,[^)]*)?\)`)

// DefaultAllowed are values considered intentionally literal; matches equal
// to one of these are suppressed.
var DefaultAllowed = []string{
	"0", "auto", "none", "inherit", "initial", "unset",
	"transparent", "currentColor", "100%",
}

// Matcher scans text for literal values of known kinds.
type Matcher struct {
	patterns []LiteralPattern
	allowed  map[string]bool
}

// NewMatcher returns a matcher with the default pattern set and exception
// list.
func NewMatcher() *Matcher {
	m := &Matcher{
		patterns: defaultPatterns,
		allowed:  make(map[string]bool, len(DefaultAllowed)),
	}
	for _, v := range DefaultAllowed {
		m.allowed[v] = true
	}
	return m
}

// Allow adds values to the allowed-literal exception set.
func (m *Matcher) Allow(values ...string) {
	for _, v := range values {
		m.allowed[v] = true
	}
}

// Matches returns the literal occurrences in text as a finite sequence in
// document order. No work happens until iteration starts: the scan is
// deferred into the iterator, and breaking out of the loop stops delivery.
// The full pattern search still runs before the first yield — cross-class
// deduplication needs every pattern's spans up front. Occurrences inside an
// existing var(--...) reference are excluded; overlapping pattern classes
// are deduplicated by the fixed priority order.
func (m *Matcher) Matches(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for _, match := range m.scan(text) {
			if !yield(match) {
				return
			}
		}
	}
}

// scan does the actual pattern search; Matches wraps it in an iterator.
func (m *Matcher) scan(text string) []Match {
	refSpans := findSpans(tokenRefRe, text)

	type rankedMatch struct {
		Match
		priority int
	}
	var accepted []rankedMatch

	for _, p := range m.patterns {
		prio := kindPriority[p.Kind()]
		for _, span := range p.Find(text) {
			val := text[span.Start:span.End]
			if m.allowed[val] {
				continue
			}
			if overlapsAny(span, refSpans) {
				continue
			}
			keep := true
			for i, a := range accepted {
				if !overlaps(span, a.Span) {
					continue
				}
				// Identical span claimed by two classes: the
				// higher-priority class wins. Partial overlaps keep the
				// span accepted first (a shadow swallows its color and
				// length components).
				if span == a.Span && prio < a.priority {
					accepted[i] = rankedMatch{
						Match:    Match{Text: val, Kind: p.Kind(), Span: span},
						priority: prio,
					}
				}
				keep = false
				break
			}
			if !keep {
				continue
			}
			accepted = append(accepted, rankedMatch{
				Match:    Match{Text: val, Kind: p.Kind(), Span: span},
				priority: prio,
			})
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Span.Start < accepted[j].Span.Start
	})

	lines := newLineIndex(text)
	out := make([]Match, len(accepted))
	for i, a := range accepted {
		a.Match.Line, a.Match.Column = lines.locate(a.Span.Start)
		out[i] = a.Match
	}
	return out
}

func findSpans(re *regexp.Regexp, text string) []Span {
	idx := re.FindAllStringIndex(text, -1)
	spans := make([]Span, len(idx))
	for i, m := range idx {
		spans[i] = Span{Start: m[0], End: m[1]}
	}
	return spans
}

func overlaps(a, b Span) bool {
	return a.Start < b.End && b.Start < a.End
}

func overlapsAny(s Span, spans []Span) bool {
	for _, other := range spans {
		if overlaps(s, other) {
			return true
		}
	}
	return false
}

// lineIndex maps byte offsets to 1-based line/column pairs.
type lineIndex struct {
	starts []int
}

func newLineIndex(text string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (li *lineIndex) locate(offset int) (line, col int) {
	i := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1
	return i + 1, offset - li.starts[i] + 1
}
