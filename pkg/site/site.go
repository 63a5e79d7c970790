package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Site is the discovered page set over one root directory. Page identifiers
// are site-root-relative slash paths ("services/roof-repair.html").
type Site struct {
	root   string
	cache  *PageCache
	logger *slog.Logger

	mu      sync.RWMutex
	pages   []string
	pageSet map[string]bool
	config  Config
}

// New discovers the page set under cfg.Root.
func New(cfg Config, logger *slog.Logger) (*Site, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve site root: %w", err)
	}
	cache, err := NewPageCache(0, logger)
	if err != nil {
		return nil, err
	}
	s := &Site{root: absRoot, cache: cache, logger: logger, config: cfg}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh re-runs discovery and drops the page cache. Used by watch mode.
func (s *Site) Refresh() error {
	pages, err := Discover(s.config)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = pages
	s.pageSet = make(map[string]bool, len(pages))
	for _, p := range pages {
		s.pageSet[p] = true
	}
	s.cache.Close()
	s.logger.Debug("site refreshed", "pages", len(pages))
	return nil
}

// Root returns the absolute site root.
func (s *Site) Root() string { return s.root }

// Pages returns the page identifiers in sorted order.
func (s *Site) Pages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.pages))
	copy(out, s.pages)
	return out
}

// Exists reports whether a page identifier is in the known page set.
func (s *Site) Exists(page string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageSet[page]
}

// Abs returns the filesystem path for a page identifier.
func (s *Site) Abs(page string) string {
	return filepath.Join(s.root, filepath.FromSlash(page))
}

// Read returns a page's full text through the cache.
func (s *Site) Read(page string) (string, error) {
	data, err := s.cache.Get(s.Abs(page))
	if err != nil {
		return "", fmt.Errorf("failed to read page %s: %w", page, err)
	}
	return string(data), nil
}

// Write replaces a page's content on disk (full read, full transform, full
// write — never streamed) and invalidates its cache entry.
func (s *Site) Write(page, text string) error {
	abs := s.Abs(page)
	s.cache.Invalidate(abs)
	if err := os.WriteFile(abs, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write page %s: %w", page, err)
	}
	return nil
}

// Close releases the page cache.
func (s *Site) Close() { s.cache.Close() }
