package site

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWatchedSite(t *testing.T, opts WatchOptions) (*Site, chan string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<main></main>"), 0o644))

	s, err := New(DefaultConfig(root), nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	changed := make(chan string, 16)
	w, err := NewWatcher(s, opts, func(path string) { changed <- path }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return s, changed
}

func waitForChange(t *testing.T, changed chan string) string {
	t.Helper()
	select {
	case path := <-changed:
		return path
	case <-time.After(3 * time.Second):
		t.Fatal("no change callback within timeout")
		return ""
	}
}

func TestWatcherReportsPageWrite(t *testing.T) {
	s, changed := newWatchedSite(t, WatchOptions{DebounceMs: 50})

	abs := filepath.Join(s.Root(), "index.html")
	require.NoError(t, os.WriteFile(abs, []byte("<main>edited</main>"), 0o644))

	assert.Equal(t, abs, waitForChange(t, changed))
}

func TestWatcherIgnoresNonPageFiles(t *testing.T) {
	s, changed := newWatchedSite(t, WatchOptions{DebounceMs: 50})

	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("x"), 0o644))

	select {
	case path := <-changed:
		t.Fatalf("unexpected callback for %s", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherSeesExtraSourceFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<main></main>"), 0o644))
	tokensPath := filepath.Join(root, "tokens.yaml")
	require.NoError(t, os.WriteFile(tokensPath, []byte("themes:\n  default: {}\n"), 0o644))

	s, err := New(DefaultConfig(root), nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	changed := make(chan string, 16)
	w, err := NewWatcher(s, WatchOptions{DebounceMs: 50, ExtraPaths: []string{tokensPath}},
		func(path string) { changed <- path }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(tokensPath, []byte("themes:\n  default:\n    spacing:\n      md: 16px\n"), 0o644))
	assert.Equal(t, tokensPath, waitForChange(t, changed))
}

func TestWatcherStopIdempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("x"), 0o644))
	s, err := New(DefaultConfig(root), nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	w, err := NewWatcher(s, DefaultWatchOptions(), func(string) {}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcherDebouncesBursts(t *testing.T) {
	s, changed := newWatchedSite(t, WatchOptions{DebounceMs: 150})

	abs := filepath.Join(s.Root(), "index.html")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(abs, []byte("<main>burst</main>"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	waitForChange(t, changed)
	select {
	case <-changed:
		t.Fatal("burst produced more than one callback")
	case <-time.After(400 * time.Millisecond):
	}
}
