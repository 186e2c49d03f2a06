package utils

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal amount string as it arrives from clients.
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// tolerates surrounding whitespace and a trailing euro sign.
// The boolean reports whether the string was parseable; callers that sum
// amounts treat unparseable input as zero so a bad string can never poison
// a total.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	if s == "" {
		return decimal.Zero, false
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if s == "" || strings.Count(s, ".") > 1 {
		return decimal.Zero, false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, false
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// SumAmounts sums a set of amount strings, skipping entries that do not
// parse. The result is exact; rounding happens only at display time.
func SumAmounts(amounts []string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		if d, ok := ParseAmount(a); ok {
			total = total.Add(d)
		}
	}
	return total
}

// FormatAmount formats an amount for display with two decimal places.
// Example: amount 12.3456 returns "12.35"
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
