// Package fields provides tolerant coercion of loosely-typed capture fields
// (blank strings, locale-formatted numbers) into the numeric values the HAR
// schema requires. Every function degrades to the caller's default instead
// of returning an error.
package fields

import (
	"strconv"
	"strings"
)

// SafeInt converts a source field to an integer. Blank input, thousands
// separators and trailing decimals are tolerated; anything else yields def.
func SafeInt(value string, def int) int {
	clean := cleanNumber(value)
	if clean == "" || !looksNumeric(clean) {
		return def
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return def
	}
	return int(f)
}

// SafeFloat converts a source field to a float64 with the same cleaning
// rules as SafeInt, returning def on any failure.
func SafeFloat(value string, def float64) float64 {
	clean := cleanNumber(value)
	if clean == "" || !looksNumeric(clean) {
		return def
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return def
	}
	return f
}

// cleanNumber trims surrounding whitespace and strips thousands separators.
func cleanNumber(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), ",", "")
}

// looksNumeric reports whether the cleaned string contains only digits plus
// optional sign and decimal point characters, with at least one digit.
// Exponent notation is deliberately rejected.
func looksNumeric(clean string) bool {
	digits := 0
	for _, r := range clean {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '-' || r == '.':
		default:
			return false
		}
	}
	return digits > 0
}
