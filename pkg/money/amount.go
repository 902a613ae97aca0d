package money

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Mask replaces every formatted amount while balances are hidden
const Mask = "****"

// decimalComma matches "12,50" style input; grouped thousands never match
var decimalComma = regexp.MustCompile(`^[+-]?\d+,\d{1,2}$`)

var (
	ErrEmptyAmount   = errors.New("amount is required")
	ErrInvalidAmount = errors.New("invalid amount format")
)

// ParseAmount converts user input like "1200", "12.50" or "12,50" into a float.
// Signs are allowed; callers that need a magnitude check it themselves.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAmount
	}

	if strings.Contains(s, ",") {
		if !decimalComma.MatchString(s) {
			return 0, ErrInvalidAmount
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	// decimal rejects NaN and Inf, so the float is always finite
	return d.InexactFloat64(), nil
}

// Format renders an amount with exactly two decimals, rounding half away from zero.
// E.g., 1234.5 → "1234.50", 0.005 → "0.01"
func Format(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Formatter renders amounts for display with a currency symbol and optional masking
type Formatter struct {
	Symbol string
	Hidden bool
}

// Amount renders a signed amount, e.g. "₹-2000.00"
func (f Formatter) Amount(v float64) string {
	if f.Hidden {
		return Mask
	}
	return f.Symbol + Format(v)
}

// Balance renders the magnitude with a CR (non-negative) or DR (negative) suffix
func (f Formatter) Balance(v float64) string {
	if f.Hidden {
		return Mask
	}
	suffix := "CR"
	if v < 0 {
		suffix = "DR"
		v = -v
	}
	return f.Symbol + Format(v) + " " + suffix
}
