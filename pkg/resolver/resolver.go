package resolver

import (
	"regexp"
	"sort"
	"strings"

	"github.com/gnana997/sitespec/pkg/findings"
	"github.com/gnana997/sitespec/pkg/tokens"
)

// Options controls resolution behavior.
type Options struct {
	// ApplyLegacy rewrites deprecated references to their successors.
	// Resolution is conservative by default: legacy references are only
	// flagged, never upgraded, unless this is set.
	ApplyLegacy bool
}

// Result is the outcome of resolving one page.
type Result struct {
	// Text is the rewritten page text. Equal to the input when nothing
	// resolved.
	Text string
	// Findings are the issues that could not be fixed by rewriting:
	// hardcoded literals with no equal-value token, undefined references,
	// and legacy references (unless ApplyLegacy upgraded them).
	Findings []findings.Finding
	// Replacements is the number of literal occurrences rewritten.
	Replacements int
}

// varNameRe captures the custom property name inside a symbolic reference.
var varNameRe = regexp.MustCompile(`var\(\s*(--[A-Za-z0-9_-]+)\s*(?:,[^)]*)?\)`)

// Resolver rewrites page text against a token table.
type Resolver struct {
	matcher *Matcher
}

// New returns a Resolver with the default literal matcher.
func New() *Resolver {
	return &Resolver{matcher: NewMatcher()}
}

// NewWithMatcher returns a Resolver using a caller-configured matcher.
func NewWithMatcher(m *Matcher) *Resolver {
	return &Resolver{matcher: m}
}

// Resolve replaces every matched literal whose value exactly equals some
// token's value with that token's symbolic reference, and reports what it
// could not resolve. Running Resolve on its own output yields no further
// changes.
func (r *Resolver) Resolve(page, text string, table *tokens.Table, legacy tokens.LegacyMap, opts Options) Result {
	type edit struct {
		span Span
		repl string
	}
	var edits []edit
	var fs []findings.Finding
	lines := newLineIndex(text)

	// Pass 1: existing symbolic references. Undefined names are findings;
	// legacy names are findings with a suggested successor, upgraded only
	// on request.
	for _, m := range varNameRe.FindAllStringSubmatchIndex(text, -1) {
		nameStart, nameEnd := m[2], m[3]
		name := text[nameStart:nameEnd]
		trimmed := strings.TrimPrefix(name, "--")
		if _, ok := table.Lookup(trimmed); ok {
			continue
		}
		line, col := lines.locate(nameStart)
		if entry, ok := legacy.Lookup(name); ok {
			if opts.ApplyLegacy {
				edits = append(edits, edit{
					span: Span{Start: nameStart, End: nameEnd},
					repl: entry.Replacement,
				})
				continue
			}
			f := findings.Finding{
				Kind:       findings.KindLegacyToken,
				Page:       page,
				Line:       line,
				Column:     col,
				Detail:     "deprecated token " + name,
				Suggestion: "var(" + entry.Replacement + ")",
			}
			if entry.Reason != "" {
				f.Detail += " (" + entry.Reason + ")"
			}
			fs = append(fs, f)
			continue
		}
		fs = append(fs, findings.Finding{
			Kind:   findings.KindUndefinedToken,
			Page:   page,
			Line:   line,
			Column: col,
			Detail: "reference " + name + " has no table entry",
		})
	}

	// Pass 2: raw literals. Exact-value matches rewrite to the token
	// reference; everything else is reported and left untouched — tokens
	// are never invented.
	for match := range r.matcher.Matches(text) {
		if tok, ok := table.ByValue(match.Text); ok {
			edits = append(edits, edit{span: match.Span, repl: tok.Ref()})
			continue
		}
		fs = append(fs, findings.Finding{
			Kind:   findings.KindHardcodedLiteral,
			Page:   page,
			Line:   match.Line,
			Column: match.Column,
			Detail: string(match.Kind) + " literal " + match.Text + " has no matching token",
		})
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].span.Start < edits[j].span.Start })

	var b strings.Builder
	prev := 0
	for _, e := range edits {
		b.WriteString(text[prev:e.span.Start])
		b.WriteString(e.repl)
		prev = e.span.End
	}
	b.WriteString(text[prev:])

	findings.Sort(fs)
	return Result{
		Text:         b.String(),
		Findings:     fs,
		Replacements: len(edits),
	}
}

// Scan reports what Resolve would find without producing rewritten text.
// Used by the auditor's dry-run mode.
func (r *Resolver) Scan(page, text string, table *tokens.Table, legacy tokens.LegacyMap) []findings.Finding {
	res := r.Resolve(page, text, table, legacy, Options{})
	return res.Findings
}
