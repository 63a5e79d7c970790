package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func collect(m *Matcher, text string) []Match {
	var out []Match
	for match := range m.Matches(text) {
		out = append(out, match)
	}
	return out
}

// --- Tests ---

func TestMatchesColorAndLength(t *testing.T) {
	text := "  color: #FFD700;\n  padding: 16px 8px;\n"
	got := collect(NewMatcher(), text)

	require.Len(t, got, 3)
	assert.Equal(t, "#FFD700", got[0].Text)
	assert.Equal(t, LiteralColor, got[0].Kind)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, 10, got[0].Column)

	assert.Equal(t, "16px", got[1].Text)
	assert.Equal(t, LiteralLength, got[1].Kind)
	assert.Equal(t, 2, got[1].Line)
	assert.Equal(t, "8px", got[2].Text)
}

func TestMatchesDurationWeightZIndex(t *testing.T) {
	text := "transition: all 150ms;\nfont-weight: 600;\nz-index: 40;\n"
	got := collect(NewMatcher(), text)

	require.Len(t, got, 3)
	assert.Equal(t, LiteralDuration, got[0].Kind)
	assert.Equal(t, "150ms", got[0].Text)
	assert.Equal(t, LiteralWeight, got[1].Kind)
	assert.Equal(t, "600", got[1].Text)
	assert.Equal(t, LiteralZIndex, got[2].Kind)
	assert.Equal(t, "40", got[2].Text)
}

func TestShadowSwallowsComponents(t *testing.T) {
	text := "box-shadow: 0 2px 8px rgba(0,0,0,0.15);"
	got := collect(NewMatcher(), text)

	require.Len(t, got, 1)
	assert.Equal(t, LiteralShadow, got[0].Kind)
	assert.Equal(t, "0 2px 8px rgba(0,0,0,0.15)", got[0].Text)
}

func TestSymbolicReferencesExcluded(t *testing.T) {
	text := "color: var(--color-brand-primary); border: 1px solid #333;"
	got := collect(NewMatcher(), text)

	require.Len(t, got, 2)
	assert.Equal(t, "1px", got[0].Text)
	assert.Equal(t, "#333", got[1].Text)
}

func TestAllowedLiteralsSuppressed(t *testing.T) {
	m := NewMatcher()
	text := "margin: 0; background: transparent; width: 100%; height: 50%;"
	got := collect(m, text)

	require.Len(t, got, 1)
	assert.Equal(t, "50%", got[0].Text)

	m.Allow("50%")
	assert.Empty(t, collect(m, text))
}

func TestMatchesInDocumentOrder(t *testing.T) {
	text := "a: 4px;\nb: #FFF;\nc: 250ms;\n"
	got := collect(NewMatcher(), text)

	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Span.Start, got[i-1].Span.Start)
		assert.GreaterOrEqual(t, got[i].Line, got[i-1].Line)
	}
}

// countingPattern records how often Find runs.
type countingPattern struct {
	calls int
}

func (p *countingPattern) Kind() LiteralKind  { return LiteralLength }
func (p *countingPattern) Find(string) []Span { p.calls++; return nil }

func TestMatchesDefersScanUntilIteration(t *testing.T) {
	p := &countingPattern{}
	m := &Matcher{patterns: []LiteralPattern{p}, allowed: map[string]bool{}}

	seq := m.Matches("width: 4px;")
	assert.Zero(t, p.calls)

	for range seq {
	}
	assert.Equal(t, 1, p.calls)
}

func TestSequenceStopsOnYieldFalse(t *testing.T) {
	text := "a: 4px; b: 8px; c: 12px;"
	count := 0
	for range NewMatcher().Matches(text) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
