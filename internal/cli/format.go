package cli

import (
	"fmt"
	"math"
	"strings"
)

// FormatIndianCurrency formats a number in Indian currency style.
// e.g., 1234567.89 -> ₹12,34,567.89
func FormatIndianCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	intPart := int64(amount)
	fracPart := int64(math.Round((amount - float64(intPart)) * 100))
	if fracPart == 100 {
		intPart++
		fracPart = 0
	}

	formatted := formatIndianNumber(intPart)

	result := fmt.Sprintf("₹%s.%02d", formatted, fracPart)
	if negative {
		result = "-" + result
	}
	return result
}

// formatIndianNumber applies Indian digit grouping (lakh/crore).
// e.g., 1234567 -> 12,34,567
func formatIndianNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	// Last 3 digits, then groups of 2
	var parts []string
	parts = append(parts, s[len(s)-3:])
	s = s[:len(s)-3]

	for len(s) > 2 {
		parts = append([]string{s[len(s)-2:]}, parts...)
		s = s[:len(s)-2]
	}
	if len(s) > 0 {
		parts = append([]string{s}, parts...)
	}

	return strings.Join(parts, ",")
}

// FormatPercent formats a percentage with 2 decimal places.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatPnL formats a P&L value with a sign prefix.
func FormatPnL(pnl float64) string {
	if pnl >= 0 {
		return "+" + FormatIndianCurrency(pnl)
	}
	return FormatIndianCurrency(pnl)
}

// FormatRatio formats a ratio, rendering the +Inf sentinel as "inf".
func FormatRatio(r float64) string {
	if math.IsInf(r, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", r)
}
