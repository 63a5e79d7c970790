// Package findings defines the consistency issues reported by the resolver,
// the link rewriter, and the auditor, plus deterministic aggregation and
// rendering of a whole run's results.
package findings

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a single finding.
type Kind string

const (
	KindHardcodedLiteral    Kind = "hardcoded-literal"
	KindUndefinedToken      Kind = "undefined-token"
	KindLegacyToken         Kind = "legacy-token"
	KindBrokenLink          Kind = "broken-link"
	KindMissingExpectedLink Kind = "missing-expected-link"
	KindPageReadError       Kind = "page-read-error"
	KindNoInsertionPoint    Kind = "no-insertion-point"
)

// kindOrder fixes the tie-break order for findings on the same line.
var kindOrder = map[Kind]int{
	KindPageReadError:       0,
	KindHardcodedLiteral:    1,
	KindUndefinedToken:      2,
	KindLegacyToken:         3,
	KindBrokenLink:          4,
	KindMissingExpectedLink: 5,
	KindNoInsertionPoint:    6,
}

// Finding is one reported consistency issue. Findings are created fresh on
// every run and never persisted.
type Finding struct {
	Kind       Kind   `json:"kind"`
	Page       string `json:"page"`
	Line       int    `json:"line"`
	Column     int    `json:"column,omitempty"`
	Detail     string `json:"detail"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (f Finding) String() string {
	s := fmt.Sprintf("%s:%d: %s: %s", f.Page, f.Line, f.Kind, f.Detail)
	if f.Suggestion != "" {
		s += " (suggestion: " + f.Suggestion + ")"
	}
	return s
}

// Sort orders findings deterministically: page, then line, then column,
// then kind, then detail. Stable across runs for identical input.
func Sort(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if kindOrder[a.Kind] != kindOrder[b.Kind] {
			return kindOrder[a.Kind] < kindOrder[b.Kind]
		}
		return a.Detail < b.Detail
	})
}

// Report aggregates the findings of one run, grouped per page.
type Report struct {
	Findings []Finding `json:"findings"`
}

// NewReport sorts fs and wraps it in a Report.
func NewReport(fs []Finding) *Report {
	Sort(fs)
	return &Report{Findings: fs}
}

// Empty reports whether the run produced zero findings.
func (r *Report) Empty() bool { return len(r.Findings) == 0 }

// ByPage returns the findings grouped by page, pages in sorted order.
func (r *Report) ByPage() []PageFindings {
	var out []PageFindings
	for _, f := range r.Findings {
		if n := len(out); n > 0 && out[n-1].Page == f.Page {
			out[n-1].Findings = append(out[n-1].Findings, f)
			continue
		}
		out = append(out, PageFindings{Page: f.Page, Findings: []Finding{f}})
	}
	return out
}

// PageFindings holds one page's findings in document order.
type PageFindings struct {
	Page     string    `json:"page"`
	Findings []Finding `json:"findings"`
}

// CountByKind tallies findings per kind.
func (r *Report) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, f := range r.Findings {
		counts[f.Kind]++
	}
	return counts
}

// RenderText formats the report for terminal output: one block per page,
// findings line-ascending, then a summary line.
func (r *Report) RenderText() string {
	if r.Empty() {
		return "no findings\n"
	}
	var b strings.Builder
	for _, pf := range r.ByPage() {
		fmt.Fprintf(&b, "%s\n", pf.Page)
		for _, f := range pf.Findings {
			fmt.Fprintf(&b, "  line %d: [%s] %s\n", f.Line, f.Kind, f.Detail)
			if f.Suggestion != "" {
				fmt.Fprintf(&b, "    suggestion: %s\n", f.Suggestion)
			}
		}
	}
	fmt.Fprintf(&b, "\n%d finding(s)", len(r.Findings))
	counts := r.CountByKind()
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, "\n  %s: %d", k, counts[Kind(k)])
	}
	b.WriteString("\n")
	return b.String()
}
