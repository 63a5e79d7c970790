// Package site owns the page set: discovery of page files under the site
// root, cached page reads, and change watching.
package site

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Config controls page discovery.
type Config struct {
	// Root is the site root directory.
	Root string
	// Include glob patterns for page files.
	Include []string
	// Exclude glob patterns.
	Exclude []string
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig(root string) Config {
	return Config{
		Root: root,
		Include: []string{
			"**/*.html",
			"**/*.htm",
		},
		Exclude: []string{
			".git/**",
			".sitespec/**",
			"node_modules/**",
			"dist/**",
			"build/**",
		},
	}
}

// Discover walks the root applying include/exclude globs. Returns sorted
// site-root-relative slash paths for deterministic output.
func Discover(cfg Config) ([]string, error) {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var pages []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		for _, pattern := range cfg.Exclude {
			matched, _ := doublestar.PathMatch(pattern, relPath)
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		matched := false
		for _, pattern := range cfg.Include {
			if m, _ := doublestar.PathMatch(pattern, relPath); m {
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}

		pages = append(pages, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(pages)
	return pages, nil
}
