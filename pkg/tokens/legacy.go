package tokens

import "strings"

// LegacyEntry maps one deprecated symbolic name to its current successor.
// Legacy entries are advisory: the resolver flags them and only rewrites on
// explicit request, never during normal resolution.
type LegacyEntry struct {
	// Name is the deprecated custom property, e.g. "--space-1".
	Name string
	// Replacement is the current custom property, e.g. "--space-sm".
	Replacement string
	// Reason is the human-readable rationale for the deprecation.
	Reason string
}

// LegacyMap is the deprecated-name lookup, keyed by custom property name.
type LegacyMap map[string]LegacyEntry

// Lookup returns the entry for a custom property name. Accepts the name with
// or without the leading dashes.
func (m LegacyMap) Lookup(name string) (LegacyEntry, bool) {
	if e, ok := m[name]; ok {
		return e, true
	}
	e, ok := m["--"+strings.TrimPrefix(name, "--")]
	return e, ok
}
