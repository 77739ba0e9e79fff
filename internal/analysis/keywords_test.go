package analysis_test

import (
	"testing"

	"civicintel/internal/analysis"
)

func TestMatcherCountsDistinctKeywords(t *testing.T) {
	m := analysis.NewMatcher([]string{"affordable housing", "zoning", "ADU", "zoning"})

	text := "The zoning amendment covers affordable housing. Zoning again. And zoning once more."
	if got := m.Count(text); got != 2 {
		t.Errorf("Count = %d, want 2 (distinct keywords, not occurrences)", got)
	}
}

func TestMatcherIsCaseInsensitive(t *testing.T) {
	m := analysis.NewMatcher([]string{"Affordable Housing"})
	if got := m.Count("discussion of AFFORDABLE HOUSING funding"); got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
	if !m.MatchesAny("affordable housing") {
		t.Error("MatchesAny = false for case-folded match")
	}
}

func TestMatcherEmptyInputs(t *testing.T) {
	m := analysis.NewMatcher([]string{"housing", "", "  "})
	if got := m.Count(""); got != 0 {
		t.Errorf("Count of empty text = %d", got)
	}
	if m.MatchesAny("") {
		t.Error("MatchesAny of empty text = true")
	}
	empty := analysis.NewMatcher(nil)
	if got := empty.Count("housing everywhere"); got != 0 {
		t.Errorf("Count with empty vocabulary = %d", got)
	}
}

func TestRelevanceFromHits(t *testing.T) {
	cases := []struct {
		hits int
		want float64
	}{
		{0, 0},
		{1, 0.2},
		{3, 0.6},
		{5, 1.0},
		{12, 1.0},
		{-1, 0},
	}
	for _, tc := range cases {
		if got := analysis.RelevanceFromHits(tc.hits); got != tc.want {
			t.Errorf("RelevanceFromHits(%d) = %v, want %v", tc.hits, got, tc.want)
		}
	}
}
