package analysis

import (
	"fmt"
	"strings"

	"civicintel/internal/meetings"
)

// RenderSummary generates the markdown summary companion for an analysis
// object. Sections with no content are omitted entirely.
func RenderSummary(obj map[string]any, rec meetings.Record) string {
	var lines []string
	lines = append(lines,
		"# Meeting Summary: "+rec.Title,
		"**Jurisdiction:** "+rec.Jurisdiction,
		"**Date:** "+rec.Date,
		"**Source:** "+rec.VideoURL,
		"",
	)

	if summary := str(obj, "summary"); summary != "" {
		lines = append(lines, "## Executive Summary", summary, "")
	}

	if topics := items(obj, "housing_topics"); len(topics) > 0 {
		lines = append(lines, "## Housing Topics")
		for _, t := range topics {
			if s, ok := t.(string); ok {
				lines = append(lines, "- "+s)
			}
		}
		lines = append(lines, "")
	}

	if proposals := items(obj, "policy_proposals"); len(proposals) > 0 {
		lines = append(lines, "## Policy Proposals")
		for _, p := range proposals {
			entry, ok := p.(map[string]any)
			if !ok {
				continue
			}
			status := strOr(entry, "status", "unknown")
			ptype := strOr(entry, "type", "proposal")
			desc := str(entry, "description")
			line := fmt.Sprintf("- **[%s]** %s - *%s*", strings.ToUpper(ptype), desc, status)
			if vote := str(entry, "vote_result"); vote != "" && vote != "null" {
				line += fmt.Sprintf(" (Vote: %s)", vote)
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	if projects := items(obj, "projects"); len(projects) > 0 {
		lines = append(lines, "## Projects")
		for _, p := range projects {
			entry, ok := p.(map[string]any)
			if !ok {
				continue
			}
			name := str(entry, "name")
			if name == "" {
				name = strOr(entry, "address", "Unknown")
			}
			line := "- **" + name + "**"
			if units := num(entry, "units_total"); units != "" {
				line += " | " + units + " units"
			}
			if affordable := num(entry, "units_affordable"); affordable != "" {
				line += fmt.Sprintf(" (%s affordable @ %s)", affordable, str(entry, "affordability_level"))
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	if funding := items(obj, "funding"); len(funding) > 0 {
		lines = append(lines, "## Funding")
		for _, f := range funding {
			entry, ok := f.(map[string]any)
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("- **%s** from %s - %s",
				strOr(entry, "amount", "?"),
				strOr(entry, "source", "?"),
				str(entry, "purpose")))
		}
		lines = append(lines, "")
	}

	if sentiment, ok := obj["sentiment"].(map[string]any); ok && len(sentiment) > 0 {
		lines = append(lines, "## Sentiment",
			"**Overall:** "+strOr(sentiment, "overall", "N/A"))
		if details := str(sentiment, "details"); details != "" {
			lines = append(lines, "", details)
		}
		if pub := str(sentiment, "public_comment_summary"); pub != "" {
			lines = append(lines, "", "**Public Comment:** "+pub)
		}
		lines = append(lines, "")
	}

	if actions := items(obj, "actions"); len(actions) > 0 {
		lines = append(lines, "## Actions & Next Steps")
		for _, a := range actions {
			if s, ok := a.(string); ok {
				lines = append(lines, "- "+s)
			}
		}
		lines = append(lines, "")
	}

	if quotes := items(obj, "quotes"); len(quotes) > 0 {
		lines = append(lines, "## Notable Quotes")
		for _, q := range quotes {
			entry, ok := q.(map[string]any)
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("> %q - *%s*",
				str(entry, "quote"),
				strOr(entry, "speaker", "Unknown")))
			if ctx := str(entry, "context"); ctx != "" {
				lines = append(lines, "> _"+ctx+"_")
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, fmt.Sprintf("---\n*Housing Relevance Score: %v*", scoreValue(obj)))
	return strings.Join(lines, "\n")
}

func scoreValue(obj map[string]any) any {
	if raw, ok := obj["housing_relevance_score"]; ok {
		return raw
	}
	return 0
}

func str(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func strOr(obj map[string]any, key, fallback string) string {
	if v := str(obj, key); v != "" {
		return v
	}
	return fallback
}

func items(obj map[string]any, key string) []any {
	if v, ok := obj[key].([]any); ok {
		return v
	}
	return nil
}

// num formats a numeric field, tolerating both JSON numbers and strings.
func num(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case string:
		return v
	default:
		return ""
	}
}
