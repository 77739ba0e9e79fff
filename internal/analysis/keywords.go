package analysis

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Matcher counts keyword hits in free text using Unicode-aware case folding.
type Matcher struct {
	keywords []string
	caser    cases.Caser
}

// NewMatcher builds a matcher over the given keyword vocabulary. Empty and
// duplicate keywords are dropped.
func NewMatcher(keywords []string) *Matcher {
	caser := cases.Lower(language.English)
	seen := make(map[string]struct{}, len(keywords))
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		folded := caser.String(strings.TrimSpace(kw))
		if folded == "" {
			continue
		}
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		cleaned = append(cleaned, folded)
	}
	return &Matcher{keywords: cleaned, caser: caser}
}

// Count returns how many distinct keywords appear in text. A keyword that
// appears ten times still counts once; the number measures vocabulary
// coverage, not frequency.
func (m *Matcher) Count(text string) int {
	if text == "" || len(m.keywords) == 0 {
		return 0
	}
	lower := m.caser.String(text)
	hits := 0
	for _, kw := range m.keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

// MatchesAny reports whether at least one keyword appears in text.
func (m *Matcher) MatchesAny(text string) bool {
	if text == "" {
		return false
	}
	lower := m.caser.String(text)
	for _, kw := range m.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RelevanceFromHits converts a distinct-keyword hit count into a 0..1
// relevance score. Five distinct keywords saturate the scale.
func RelevanceFromHits(hits int) float64 {
	if hits <= 0 {
		return 0
	}
	score := float64(hits) / 5.0
	if score > 1.0 {
		return 1.0
	}
	return score
}
