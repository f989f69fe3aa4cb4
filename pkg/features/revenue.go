package features

import (
	"strconv"
	"strings"
)

// ParseRevenueAmount parses a revenue figure reported as a currency string,
// e.g. "$12.5M" or "1,200,000". Suffixes M and B expand to millions and
// billions. Returns 0 when the value cannot be parsed.
func ParseRevenueAmount(amount string) float64 {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "B") || strings.HasSuffix(s, "b"):
		multiplier = 1e9
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M") || strings.HasSuffix(s, "m"):
		multiplier = 1e6
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}

	return value * multiplier
}
