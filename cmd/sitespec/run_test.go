package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- config fallback chain ---

func TestResolvePathsDefault(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, filepath.Join(root, "site", "tokens.yaml"), resolveTokensPath(root, ""))
	assert.Equal(t, filepath.Join(root, "site", "links.yaml"), resolveLinksPath(root, ""))
}

func TestResolvePathsFlagOverride(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "/etc/tokens.yaml", resolveTokensPath(root, "/etc/tokens.yaml"))
	assert.Equal(t, "/etc/links.yaml", resolveLinksPath(root, "/etc/links.yaml"))
}

func TestResolvePathsFromProjectConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".sitespec"), 0o755))
	cfg := "version: \"1\"\ntokens_path: design/tokens.yaml\nlinks_path: design/links.yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".sitespec", "config.yaml"), []byte(cfg), 0o644))

	assert.Equal(t, filepath.Join(root, "design", "tokens.yaml"), resolveTokensPath(root, ""))
	assert.Equal(t, filepath.Join(root, "design", "links.yaml"), resolveLinksPath(root, ""))
	// A flag still beats the project config.
	assert.Equal(t, "/x.yaml", resolveTokensPath(root, "/x.yaml"))
}

func TestLoadProjectConfigMissing(t *testing.T) {
	cfg, err := loadProjectConfig(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

// --- end-to-end command runs over a fixture site ---

func writeFixtureSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"site/tokens.yaml": `
themes:
  default:
    color:
      brand:
        secondary: "#FFD700"
    spacing:
      md: 16px
  dark:
    color:
      brand:
        secondary: "#B8860B"
legacy:
  --old-space-1:
    replacement: --spacing-md
`,
		"site/links.yaml": `
pages:
  index.html:
    title: Home
  services/pricing.html:
    title: Pricing
    parent: index.html
links:
  - from: services/pricing.html
    to:
      - path: index.html
        anchor: Home
`,
		"index.html": `<main style="color: #FFD700"><a href="services/pricing.html">Pricing</a></main>`,
		// On disk but not declared in links.yaml; the link pass must leave
		// it alone rather than report it.
		"about.html": `<main><p>About us</p></main>`,
		"services/pricing.html": `<main>
<a href="../index.html">Home</a>
</main>`,
	}
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

func TestRunAuditCleanAfterTokensAndLinks(t *testing.T) {
	root := writeFixtureSite(t)
	pricing := filepath.Join(root, filepath.FromSlash("services/pricing.html"))
	require.NoError(t, os.WriteFile(pricing, []byte(`<main style="margin: var(--old-space-1)">
<a href="../index.html">Home</a>
</main>`), 0o644))

	// The deprecated reference makes the first audit dirty.
	clean, err := runAudit([]string{"--root", root})
	require.NoError(t, err)
	assert.False(t, clean)

	clean, err = runTokens([]string{"--root", root, "--fix-legacy"})
	require.NoError(t, err)
	assert.True(t, clean)

	text0, err := os.ReadFile(pricing)
	require.NoError(t, err)
	assert.Contains(t, string(text0), "var(--spacing-md)")

	text, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "var(--color-brand-secondary)")
	assert.NotContains(t, string(text), "#FFD700")

	clean, err = runLinks([]string{"--root", root})
	require.NoError(t, err)
	assert.True(t, clean)

	text, err = os.ReadFile(pricing)
	require.NoError(t, err)
	assert.Contains(t, string(text), `<nav class="breadcrumbs"`)

	// The undeclared page passes through the link step untouched.
	about, err := os.ReadFile(filepath.Join(root, "about.html"))
	require.NoError(t, err)
	assert.Equal(t, `<main><p>About us</p></main>`, string(about))

	clean, err = runAudit([]string{"--root", root})
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestRunTokensDryRunLeavesPages(t *testing.T) {
	root := writeFixtureSite(t)
	before, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)

	clean, err := runTokens([]string{"--root", root, "--dry-run"})
	require.NoError(t, err)
	assert.True(t, clean)

	after, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunThemeSetPersists(t *testing.T) {
	root := writeFixtureSite(t)

	clean, err := runTheme([]string{"set", "--root", root, "dark"})
	require.NoError(t, err)
	assert.True(t, clean)

	state, err := os.ReadFile(filepath.Join(root, ".sitespec", "theme.json"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(state), `"dark"`))

	// The next invocation restores the selection.
	clean, err = runTheme([]string{"get", "--root", root})
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestRunThemeSetRejectsUnknown(t *testing.T) {
	root := writeFixtureSite(t)
	_, err := runTheme([]string{"set", "--root", root, "neon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neon")
}

func TestRunAuditRejectsUnknownFormat(t *testing.T) {
	root := writeFixtureSite(t)
	_, err := runAudit([]string{"--root", root, "--format", "xml"})
	require.Error(t, err)
}

func TestRunAuditFailsWithoutSources(t *testing.T) {
	_, err := runAudit([]string{"--root", t.TempDir()})
	require.Error(t, err)
}
