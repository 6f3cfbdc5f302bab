package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney converts a user-formatted money string to a decimal.
// Accepts common estimate-export formats like:
// - "20,725.00"
// - "$4,145.00"
// - "($240.00)" (accounting negative)
// - "USD 1,200"
//
// Keep digits, '.', and a leading '-' only.
func ParseMoney(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("invalid value")
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "USD", "")
	s = strings.ReplaceAll(s, "usd", "")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}

	// Strip everything except digits and '.'.
	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" || clean == "." {
		return decimal.Zero, fmt.Errorf("invalid value")
	}
	if neg {
		clean = "-" + clean
	}

	val, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, err
	}
	return val, nil
}

// LooksLikeMoney reports whether a token parses as a money value without
// being a bare integer that could be a quantity. A '$' prefix, parentheses,
// a thousands separator, or a two-decimal fraction qualifies.
func LooksLikeMoney(token string) bool {
	s := strings.TrimSpace(token)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "$") || strings.HasPrefix(s, "(") {
		_, err := ParseMoney(s)
		return err == nil
	}
	if strings.Contains(s, ",") || strings.Contains(s, ".") {
		_, err := ParseMoney(s)
		return err == nil
	}
	return false
}
