// Package money converts between decimal dollar amounts at the API boundary and the
// integer cents used everywhere else.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrOutOfRange is returned for amounts whose cents do not fit in an int64.
var ErrOutOfRange = errors.New("amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ToCents converts a dollar amount to cents, rounding half away from zero.
// 12.345 -> 1235, -0.005 -> -1.
func ToCents(dollars decimal.Decimal) (int64, error) {
	cents := dollars.Mul(hundred).Round(0)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, ErrOutOfRange
	}

	return cents.IntPart(), nil
}

// FromCents returns the exact dollar value of an amount in cents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Dollars returns cents as a float for JSON payloads. Never use it for arithmetic.
func Dollars(cents int64) float64 {
	return FromCents(cents).InexactFloat64()
}

// Format renders cents as "$1234.56". Negative amounts render as "-$12.50".
func Format(cents int64) string {
	if cents < 0 {
		return "-$" + FromCents(-cents).StringFixed(2)
	}

	return "$" + FromCents(cents).StringFixed(2)
}
