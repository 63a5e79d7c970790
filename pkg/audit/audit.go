// Package audit is the read-only consistency verifier: it scans pages
// against the token table and link graph and aggregates findings without
// mutating anything.
package audit

import (
	"log/slog"
	"sync"

	"github.com/gnana997/sitespec/pkg/findings"
	"github.com/gnana997/sitespec/pkg/links"
	"github.com/gnana997/sitespec/pkg/resolver"
	"github.com/gnana997/sitespec/pkg/site"
	"github.com/gnana997/sitespec/pkg/tokens"
	"github.com/gnana997/sitespec/pkg/util"
)

// Auditor runs single-pass, read-only audits. Pages share no mutable state
// beyond the read-only table and graph, so they are processed in parallel.
type Auditor struct {
	site     *site.Site
	table    *tokens.Table
	legacy   tokens.LegacyMap
	graph    *links.Graph
	resolver *resolver.Resolver
	logger   *slog.Logger

	// Workers overrides the worker count when > 0.
	Workers int
}

// New builds an auditor over the given inputs.
func New(s *site.Site, table *tokens.Table, legacy tokens.LegacyMap, graph *links.Graph, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		site:     s,
		table:    table,
		legacy:   legacy,
		graph:    graph,
		resolver: resolver.New(),
		logger:   logger,
	}
}

// Run audits every page and returns the aggregated report. A single page's
// read failure becomes its own finding and processing continues; findings
// are ordered page-then-line so two runs over identical input are
// byte-identical.
func (a *Auditor) Run() *findings.Report {
	pages := a.site.Pages()
	perPage := make([][]findings.Finding, len(pages))

	workers := util.GetOptimalPoolSizeWithOverride(a.Workers)
	if workers > len(pages) {
		workers = len(pages)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perPage[i] = a.AuditPage(pages[i])
			}
		}()
	}
	for i := range pages {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var all []findings.Finding
	for _, fs := range perPage {
		all = append(all, fs...)
	}
	report := findings.NewReport(all)
	a.logger.Info("audit complete", "pages", len(pages), "findings", len(report.Findings))
	return report
}

// AuditPage audits one page: token consistency through the resolver's
// dry-run mode, then link consistency against the graph and known page set.
func (a *Auditor) AuditPage(page string) []findings.Finding {
	text, err := a.site.Read(page)
	if err != nil {
		return []findings.Finding{{
			Kind:   findings.KindPageReadError,
			Page:   page,
			Line:   1,
			Detail: err.Error(),
		}}
	}

	fs := a.resolver.Scan(page, text, a.table, a.legacy)
	fs = append(fs, a.auditLinks(page, text)...)
	findings.Sort(fs)
	return fs
}

// auditLinks checks both directions: every internal anchor resolves to a
// known page, and every non-relation edge from this page is materialized as
// an anchor.
func (a *Auditor) auditLinks(page, text string) []findings.Finding {
	var fs []findings.Finding
	anchors := links.FindAnchors(text)

	// Targets this page actually links to, for edge presence checks.
	linked := make(map[string]bool)

	for _, anchor := range anchors {
		if anchor.HrefStart < 0 || anchor.Href == "" {
			continue
		}
		if links.IsExternal(anchor.Href) || links.IsFragment(anchor.Href) {
			continue
		}
		target := links.NormalizeHref(page, anchor.Href)
		linked[target] = true
		if !a.site.Exists(target) {
			fs = append(fs, findings.Finding{
				Kind:   findings.KindBrokenLink,
				Page:   page,
				Line:   anchor.Line,
				Detail: "anchor targets nonexistent page " + target + " (href " + anchor.Href + ")",
			})
		}
	}

	for _, edge := range a.graph.EdgesFrom(page) {
		if edge.Relation != "" {
			// Descriptive only; never required as a rendered anchor.
			continue
		}
		// An edge is materialized only by an anchor whose href resolves to
		// the edge target; matching visible text on some other link does not
		// count.
		if linked[edge.To] {
			continue
		}
		if !a.site.Exists(edge.To) {
			// The target is missing entirely; reported as broken rather
			// than missing so the fix (create or remove) is obvious.
			fs = append(fs, findings.Finding{
				Kind:   findings.KindBrokenLink,
				Page:   page,
				Line:   1,
				Detail: "declared edge targets nonexistent page " + edge.To,
			})
			continue
		}
		fs = append(fs, findings.Finding{
			Kind:   findings.KindMissingExpectedLink,
			Page:   page,
			Line:   1,
			Detail: "no anchor for declared edge to " + edge.To + " (" + edge.AnchorText + ")",
		})
	}
	return fs
}
