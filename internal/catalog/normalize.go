// Package catalog loads the master parts/pricing reference and the
// per-category option tables into in-memory indexes keyed by normalized
// part numbers.
package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	intFloatPattern = regexp.MustCompile(`^(\d+)\.0$`)
	numericPattern  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	nonDigitPattern = regexp.MustCompile(`\D`)
)

// NormalizePartNumber folds the part number formats that coexist in the
// reference sheets: surrounding space, decimal commas, and numeric cells
// exported as floats ("5500.0" for part 5500).
func NormalizePartNumber(s string) string {
	t := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if m := intFloatPattern.FindStringSubmatch(t); m != nil {
		return m[1]
	}
	if numericPattern.MatchString(t) {
		if f, err := strconv.ParseFloat(t, 64); err == nil && f == math.Trunc(f) {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return t
}

// DigitsOnly strips every non-digit rune.
func DigitsOnly(s string) string {
	return nonDigitPattern.ReplaceAllString(s, "")
}

// ParseMoney parses a price cell, tolerating a decimal comma.
func ParseMoney(s string) (float64, bool) {
	t := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if t == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatMoney renders a price with two decimals.
func FormatMoney(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
