package campaign

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatUnits renders a base-unit amount with decimals fractional digits,
// trimming trailing zeros. 1500000 with 6 decimals is "1.5".
func FormatUnits(n *big.Int, decimals uint8) string {
	if n == nil {
		return "0"
	}
	neg := n.Sign() < 0
	s := new(big.Int).Abs(n).String()
	d := int(decimals)

	if d > 0 {
		if len(s) <= d {
			s = strings.Repeat("0", d-len(s)+1) + s
		}
		whole, frac := s[:len(s)-d], strings.TrimRight(s[len(s)-d:], "0")
		s = whole
		if frac != "" {
			s += "." + frac
		}
	}
	if neg {
		s = "-" + s
	}
	return s
}

// ParseUnits converts a decimal token amount such as "12.5" into base units.
// More fractional digits than decimals is an error rather than a silent
// truncation.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(body, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", s, decimals)
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))

	n, ok := new(big.Int).SetString(digits, 10)
	if !ok || strings.ContainsAny(digits, "+-") {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}
