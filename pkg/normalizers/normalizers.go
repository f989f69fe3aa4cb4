// Package normalizers provides field normalization functions for company records
package normalizers

import (
	"regexp"
	"strings"
	"unicode"
)

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeCompanyName normalizes a company name for comparison
// - Lowercase
// - Remove common corporate suffixes (Inc., Corp., LLC, etc.)
// - Remove punctuation and collapse whitespace
func NormalizeCompanyName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	suffixes := []string{" incorporated", " corporation", " inc.", " inc", " corp.", " corp", " llc", " ltd.", " ltd", " plc", " co.", " co", " gmbh", " s.a.", " holdings", " group"}
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			s = s[:len(s)-len(suffix)]
		}
	}

	var result strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
			prevSpace = false
		} else if unicode.IsSpace(r) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
		}
	}

	return strings.TrimSpace(result.String())
}

// NormalizeIndustry normalizes an industry label (lowercase, collapse whitespace)
func NormalizeIndustry(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return spaceRe.ReplaceAllString(s, " ")
}

// NormalizeMarket normalizes a geographic market name
func NormalizeMarket(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeTicker normalizes a stock ticker symbol
func NormalizeTicker(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// SplitList splits a comma-joined list into normalized, non-empty items
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := NormalizeMarket(part)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
