package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/sitespec/pkg/findings"
	"github.com/gnana997/sitespec/pkg/links"
	"github.com/gnana997/sitespec/pkg/site"
	"github.com/gnana997/sitespec/pkg/tokens"
)

const auditTokens = `
themes:
  default:
    color:
      brand:
        secondary: "#FFD700"
    spacing:
      md: 16px
legacy:
  --old-space-1:
    replacement: --spacing-md
`

const auditGraph = `
pages:
  index.html:
    title: Home
  services/pricing.html:
    title: Pricing
    parent: index.html
links:
  - from: services/pricing.html
    to:
      - path: services/quote.html
        anchor: Request a quote
      - path: index.html
        anchor: Home
      - path: services/roofing.html
        relate: sibling
`

type fixture struct {
	site    *site.Site
	auditor *Auditor
}

func newFixture(t *testing.T, pages map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	for rel, content := range pages {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	s, err := site.New(site.DefaultConfig(root), nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	src, err := tokens.Parse([]byte(auditTokens))
	require.NoError(t, err)
	g, err := links.Parse([]byte(auditGraph))
	require.NoError(t, err)

	return &fixture{site: s, auditor: New(s, src.Default(), src.Legacy(), g, nil)}
}

func kinds(fs []findings.Finding) []findings.Kind {
	out := make([]findings.Kind, len(fs))
	for i, f := range fs {
		out[i] = f.Kind
	}
	return out
}

func TestAuditCleanSite(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"index.html": `<main><p style="color: var(--color-brand-secondary)">Hi</p></main>`,
		"services/pricing.html": `<main>
<a href="quote.html">Request a quote</a>
<a href="../index.html">Home</a>
</main>`,
		"services/quote.html": `<main>Quote form</main>`,
	})

	report := fx.auditor.Run()
	assert.True(t, report.Empty(), "unexpected findings: %v", report.Findings)
}

func TestAuditReportsHardcodedLiteralAndLegacy(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"index.html": `<main style="color: #123456; margin: var(--old-space-1)">x</main>`,
	})

	fs := fx.auditor.AuditPage("index.html")
	assert.ElementsMatch(t,
		[]findings.Kind{findings.KindHardcodedLiteral, findings.KindLegacyToken},
		kinds(fs))
}

func TestAuditReportsBrokenAnchor(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"index.html": `<main><a href="missing.html">Gone</a></main>`,
	})

	fs := fx.auditor.AuditPage("index.html")
	require.Len(t, fs, 1)
	assert.Equal(t, findings.KindBrokenLink, fs[0].Kind)
	assert.Contains(t, fs[0].Detail, "missing.html")
}

func TestAuditSkipsExternalAndFragmentAnchors(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"index.html": `<main>
<a href="https://example.com/pricing">Pricing off-site</a>
<a href="mailto:sales@example.com">Email us</a>
<a href="#top">Back to top</a>
</main>`,
	})

	assert.Empty(t, fx.auditor.AuditPage("index.html"))
}

func TestAuditReportsMissingExpectedLink(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"index.html":            `<main>Home</main>`,
		"services/pricing.html": `<main><a href="../index.html">Home</a></main>`,
		"services/quote.html":   `<main>Quote form</main>`,
	})

	fs := fx.auditor.AuditPage("services/pricing.html")
	require.Len(t, fs, 1)
	assert.Equal(t, findings.KindMissingExpectedLink, fs[0].Kind)
	assert.Contains(t, fs[0].Detail, "services/quote.html")
}

func TestAuditEdgeToAbsentTargetIsBroken(t *testing.T) {
	// services/quote.html is declared as an edge target but the file does
	// not exist; the finding points at the absent page, not a missing anchor.
	fx := newFixture(t, map[string]string{
		"index.html":            `<main>Home</main>`,
		"services/pricing.html": `<main><a href="../index.html">Home</a></main>`,
	})

	fs := fx.auditor.AuditPage("services/pricing.html")
	require.Len(t, fs, 1)
	assert.Equal(t, findings.KindBrokenLink, fs[0].Kind)
	assert.Contains(t, fs[0].Detail, "services/quote.html")
}

func TestAuditRelationEdgesNeverRequired(t *testing.T) {
	// services/roofing.html appears only as a relate-tagged edge; its absence
	// from both the disk and the page's anchors is not a finding.
	fx := newFixture(t, map[string]string{
		"index.html": `<main>Home</main>`,
		"services/pricing.html": `<main>
<a href="quote.html">Request a quote</a>
<a href="../index.html">Home</a>
</main>`,
		"services/quote.html": `<main>Quote form</main>`,
	})

	assert.Empty(t, fx.auditor.AuditPage("services/pricing.html"))
}

func TestAuditTextMatchAloneDoesNotSatisfyEdge(t *testing.T) {
	// The anchor's visible text matches the declared quote edge but its href
	// targets the home page; the page never links to the quote target, so
	// the edge is still missing.
	fx := newFixture(t, map[string]string{
		"index.html":            `<main>Home</main>`,
		"services/pricing.html": `<main><a href="../index.html">Request a quote</a></main>`,
		"services/quote.html":   `<main>Quote form</main>`,
	})

	fs := fx.auditor.AuditPage("services/pricing.html")
	require.Len(t, fs, 1)
	assert.Equal(t, findings.KindMissingExpectedLink, fs[0].Kind)
	assert.Contains(t, fs[0].Detail, "services/quote.html")
}

func TestAuditPageReadFailureIsolated(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"index.html": `<main>ok</main>`,
		"gone.html":  `<main>soon gone</main>`,
	})
	require.NoError(t, os.Remove(filepath.Join(fx.site.Root(), "gone.html")))

	report := fx.auditor.Run()
	require.Len(t, report.Findings, 1)
	assert.Equal(t, findings.KindPageReadError, report.Findings[0].Kind)
	assert.Equal(t, "gone.html", report.Findings[0].Page)
}

func TestAuditRunDeterministic(t *testing.T) {
	pages := map[string]string{
		"index.html":            `<main style="color: #999999"><a href="nope.html">Nope</a></main>`,
		"services/pricing.html": `<main style="padding: 3px">x</main>`,
		"services/quote.html":   `<main>Quote form</main>`,
	}
	fx := newFixture(t, pages)

	first := fx.auditor.Run()
	second := fx.auditor.Run()
	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.RenderText(), second.RenderText())
}

func TestAuditWorkerOverride(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"index.html": `<main>ok</main>`,
	})
	fx.auditor.Workers = 1
	assert.True(t, fx.auditor.Run().Empty())
}
