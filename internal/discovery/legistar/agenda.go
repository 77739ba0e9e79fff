package legistar

import (
	"fmt"
	"sort"
	"strings"

	"civicintel/internal/analysis"
)

// ScoreRelevance scores an event's housing relevance from its agenda
// items. Events without items fall back to body-name matching: housing
// and land-use bodies score 0.3, everything else 0.1. Five distinct
// keyword hits across the combined item text saturate at 1.0.
func ScoreRelevance(event Event, matcher *analysis.Matcher) float64 {
	if len(event.Items) == 0 {
		if HousingBody(event.BodyName) {
			return 0.3
		}
		return 0.1
	}

	var parts []string
	for _, item := range event.Items {
		parts = append(parts, item.Title, item.MatterName, item.ActionText, item.MatterType)
	}
	combined := strings.TrimSpace(strings.Join(parts, " "))
	if combined == "" {
		return 0.1
	}
	return analysis.RelevanceFromHits(matcher.Count(combined))
}

// HousingBody reports whether a body name suggests housing or land-use
// jurisdiction.
func HousingBody(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range []string{"housing", "planning", "land use", "zoning"} {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// FormatAgendaText renders an event's agenda items as analysis-ready text.
func FormatAgendaText(event Event) string {
	lines := []string{
		"Meeting: " + event.BodyName,
		"Date: " + event.Date,
		"Location: " + event.Location,
		"",
		"AGENDA ITEMS:",
		"",
	}
	for i, item := range event.Items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item.Title))
		if item.MatterName != "" {
			lines = append(lines, "   Matter: "+item.MatterName)
		}
		if item.MatterType != "" {
			lines = append(lines, "   Type: "+item.MatterType)
		}
		if item.MatterStatus != "" {
			lines = append(lines, "   Status: "+item.MatterStatus)
		}
		if item.ActionText != "" {
			lines = append(lines, "   Action: "+item.ActionText)
		}
		if len(item.Votes) > 0 {
			lines = append(lines, "   Votes: "+SummarizeVotes(item.Votes))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// SummarizeVotes collapses vote records into "Value: count" pairs sorted
// by value name.
func SummarizeVotes(votes []Vote) string {
	if len(votes) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for _, v := range votes {
		value := v.Value
		if value == "" {
			value = "Unknown"
		}
		counts[value]++
	}
	values := make([]string, 0, len(counts))
	for value := range counts {
		values = append(values, value)
	}
	sort.Strings(values)
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, fmt.Sprintf("%s: %d", value, counts[value]))
	}
	return strings.Join(parts, ", ")
}
