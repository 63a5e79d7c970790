package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

func TestDiscoverSortedRelativePaths(t *testing.T) {
	root := writeTestSite(t, map[string]string{
		"index.html":            "<main></main>",
		"services/pricing.html": "<main></main>",
		"about.htm":             "<main></main>",
		"notes.txt":             "not a page",
	})

	pages, err := Discover(DefaultConfig(root))
	require.NoError(t, err)
	assert.Equal(t, []string{"about.htm", "index.html", "services/pricing.html"}, pages)
}

func TestDiscoverHonorsExcludes(t *testing.T) {
	root := writeTestSite(t, map[string]string{
		"index.html":              "<main></main>",
		"dist/index.html":         "built output",
		"node_modules/pkg/a.html": "vendored",
		".sitespec/theme.json":    "{}",
	})

	pages, err := Discover(DefaultConfig(root))
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, pages)
}

func TestDiscoverRejectsBadPattern(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Include = []string{"[broken"}
	_, err := Discover(cfg)
	require.Error(t, err)
}

func TestSiteReadWriteAndExists(t *testing.T) {
	root := writeTestSite(t, map[string]string{
		"index.html": "<main>original</main>",
	})
	s, err := New(DefaultConfig(root), nil)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Exists("index.html"))
	assert.False(t, s.Exists("services/quote.html"))

	text, err := s.Read("index.html")
	require.NoError(t, err)
	assert.Equal(t, "<main>original</main>", text)

	require.NoError(t, s.Write("index.html", "<main>rewritten</main>"))
	text, err = s.Read("index.html")
	require.NoError(t, err)
	assert.Equal(t, "<main>rewritten</main>", text)
}

func TestSiteReadMissingPage(t *testing.T) {
	root := writeTestSite(t, map[string]string{"index.html": "x"})
	s, err := New(DefaultConfig(root), nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Read("gone.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.html")
}

func TestSiteRefreshPicksUpNewPages(t *testing.T) {
	root := writeTestSite(t, map[string]string{"index.html": "x"})
	s, err := New(DefaultConfig(root), nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.html"), []byte("y"), 0o644))
	require.NoError(t, s.Refresh())
	assert.True(t, s.Exists("new.html"))
	assert.Equal(t, []string{"index.html", "new.html"}, s.Pages())
}

func TestPageCacheHitsAndInvalidation(t *testing.T) {
	root := writeTestSite(t, map[string]string{"index.html": "first"})
	pc, err := NewPageCache(4, nil)
	require.NoError(t, err)
	defer pc.Close()

	abs := filepath.Join(root, "index.html")
	data, err := pc.Get(abs)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	_, err = pc.Get(abs)
	require.NoError(t, err)
	hits, misses, _ := pc.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)

	require.NoError(t, os.WriteFile(abs, []byte("second"), 0o644))
	pc.Invalidate(abs)
	data, err = pc.Get(abs)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestPageCacheBytesSurviveInvalidationAndEviction(t *testing.T) {
	root := writeTestSite(t, map[string]string{
		"a.html": "page a",
		"b.html": "page b",
		"c.html": "page c",
	})
	pc, err := NewPageCache(1, nil)
	require.NoError(t, err)
	defer pc.Close()

	held, err := pc.Get(filepath.Join(root, "a.html"))
	require.NoError(t, err)

	// Evict a.html from the single-entry cache, then invalidate the rest.
	_, err = pc.Get(filepath.Join(root, "b.html"))
	require.NoError(t, err)
	_, err = pc.Get(filepath.Join(root, "c.html"))
	require.NoError(t, err)
	pc.Invalidate(filepath.Join(root, "c.html"))

	// The slice handed out before eviction still reads the original bytes.
	assert.Equal(t, "page a", string(held))
}

func TestPageCacheEmptyFile(t *testing.T) {
	root := writeTestSite(t, map[string]string{"empty.html": ""})
	pc, err := NewPageCache(4, nil)
	require.NoError(t, err)
	defer pc.Close()

	data, err := pc.Get(filepath.Join(root, "empty.html"))
	require.NoError(t, err)
	assert.Empty(t, data)
}
