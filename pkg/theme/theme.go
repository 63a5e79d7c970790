// Package theme holds the process-wide theme selection: which token table
// variant is active. Persistence is an injected port so the selection logic
// stays free of ambient global state and tests run against an in-memory
// fake.
package theme

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gnana997/sitespec/pkg/tokens"
)

// Store is the persistence port for the single theme-name entry.
type Store interface {
	// Load returns the persisted theme name. Absent or corrupted state
	// returns ("", nil) — it is treated as "no selection", never an error.
	Load() (string, error)
	// Save persists the theme name.
	Save(name string) error
}

// InvalidThemeError reports a caller-requested theme outside the enumerated
// set. Explicit requests fail loudly; only persisted state falls back
// silently.
type InvalidThemeError struct {
	Name string
}

func (e *InvalidThemeError) Error() string {
	return fmt.Sprintf("invalid theme %q", e.Name)
}

// Selector is the single mutation point for the active theme.
type Selector struct {
	mu      sync.RWMutex
	current string
	valid   map[string]bool
	store   Store
	logger  *slog.Logger
}

// NewSelector builds a selector over the given enumerated theme set and
// restores any persisted selection. A persisted value outside the set falls
// back silently to the default.
func NewSelector(themes []string, store Store, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Selector{
		current: tokens.DefaultTheme,
		valid:   make(map[string]bool, len(themes)+1),
		store:   store,
		logger:  logger,
	}
	s.valid[tokens.DefaultTheme] = true
	for _, t := range themes {
		s.valid[t] = true
	}

	if store != nil {
		persisted, err := store.Load()
		switch {
		case err != nil:
			logger.Warn("failed to load persisted theme, using default", "error", err)
		case s.valid[persisted]:
			s.current = persisted
		case persisted != "":
			logger.Warn("persisted theme not in enumerated set, using default", "theme", persisted)
		}
	}
	return s
}

// Get returns the current selection. Pure read, side-effect-free.
func (s *Selector) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set validates name against the enumerated set and makes it the active
// theme. Persistence is a best-effort side effect: a save failure is logged
// and swallowed, the in-memory selection mutates regardless. An invalid name
// fails with InvalidThemeError and leaves the previous selection untouched.
func (s *Selector) Set(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid[name] {
		return &InvalidThemeError{Name: name}
	}
	s.current = name
	if s.store != nil {
		if err := s.store.Save(name); err != nil {
			s.logger.Warn("failed to persist theme selection", "theme", name, "error", err)
		}
	}
	return nil
}

// Themes returns the enumerated set in sorted order.
func (s *Selector) Themes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.valid))
	for t := range s.valid {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
