package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractObject pulls a JSON object out of a model response. It tries a
// fenced code block, then the whole text, then the outermost brace pair.
// When nothing parses it returns a marker object carrying the raw text so
// the failure is inspectable instead of silently dropped.
func ExtractObject(text string) map[string]any {
	if match := fencedJSON.FindStringSubmatch(text); match != nil {
		if obj := tryParse(match[1]); obj != nil {
			return obj
		}
	}

	if obj := tryParse(text); obj != nil {
		return obj
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if obj := tryParse(text[start : end+1]); obj != nil {
				return obj
			}
		}
	}

	return map[string]any{
		"raw_response": text,
		"parse_error":  true,
	}
}

func tryParse(candidate string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &obj); err != nil {
		return nil
	}
	return obj
}

// RelevanceScore reads housing_relevance_score from an extracted analysis
// object, clamped to 0..1. Missing or malformed values read as zero.
func RelevanceScore(obj map[string]any) float64 {
	raw, ok := obj["housing_relevance_score"]
	if !ok {
		return 0
	}
	score, ok := raw.(float64)
	if !ok {
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
