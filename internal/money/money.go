// Package money converts between the decimal amounts used by the domain and
// the integer cents persisted in SQLite.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrOutOfRange is returned when an amount does not fit in int64 cents.
var ErrOutOfRange = errors.New("amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// maxUnitDigits is the number of integer digits in MaxInt64 cents.
const maxUnitDigits = 17

// ToCents scales d by 100 and rounds half away from zero.
// 3.14 -> 314, 0.005 -> 1, -0.005 -> -1.
//
// The magnitude is checked from the exponent before any arithmetic, so
// amounts such as 1e200000 are rejected without being expanded.
func ToCents(d decimal.Decimal) (int64, error) {
	if d.IsZero() {
		return 0, nil
	}
	// |d| < 10^digits
	digits := d.NumDigits() + int(d.Exponent())
	if digits > maxUnitDigits {
		return 0, fmt.Errorf("to cents: %d integer digits: %w", digits, ErrOutOfRange)
	}
	if digits < -2 {
		return 0, nil
	}
	c := d.Mul(hundred).Round(0)
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, fmt.Errorf("to cents: %w", ErrOutOfRange)
	}
	return c.IntPart(), nil
}

// FromCents is the exact inverse of ToCents for values with at most two
// fractional digits.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// Format renders an amount with two fractional digits, e.g. "35.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Parse reads a decimal string such as "12.50".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}
