package channel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var monthNumbers = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4,
	"jun": 6, "jul": 7, "aug": 8, "sep": 9, "sept": 9,
	"oct": 10, "nov": 11, "dec": 12,
}

var (
	monthNamePattern = regexp.MustCompile(`(?i)([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{4})`)
	slashPattern     = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)
	isoPattern       = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
)

// ExtractDate pulls a meeting date out of a video title, returning it in
// YYYY-MM-DD form. Patterns are tried most-specific first: a month name,
// then slash or dash numeric dates, then an ISO date. Unrecognized month
// words fall through to the next pattern rather than failing.
func ExtractDate(title string) string {
	if m := monthNamePattern.FindStringSubmatch(title); m != nil {
		if month, ok := monthNumbers[strings.ToLower(m[1])]; ok {
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			return formatDate(year, month, day)
		}
	}
	if m := slashPattern.FindStringSubmatch(title); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 {
			return formatDate(year, month, day)
		}
	}
	if m := isoPattern.FindStringSubmatch(title); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 {
			return formatDate(year, month, day)
		}
	}
	return ""
}

// NormalizeUploadDate reformats a compact upload date (YYYYMMDD) into
// YYYY-MM-DD. Anything else passes through unchanged.
func NormalizeUploadDate(raw string) string {
	if len(raw) == 8 && isAllDigits(raw) {
		return raw[:4] + "-" + raw[4:6] + "-" + raw[6:8]
	}
	return raw
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func formatDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
