// Package money implements fixed-point currency arithmetic in integer minor
// units (cents). Amounts paid and owed are stored and compared as cents so
// that replaying a long expense history cannot accumulate floating drift;
// decimal arithmetic is reserved for user-entered percentages and share
// weights, which are not currency.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a currency amount in integer minor units (1/100 of a unit).
type Cents int64

// Tolerance is the maximum difference, in cents, at which two currency
// amounts are considered equal. User input arrives with two decimal places,
// so one cent absorbs any client-side rounding.
const Tolerance Cents = 1

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a decimal currency amount to cents, rounding half
// away from zero at the second decimal place.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Parse converts a decimal string like "45.00" or "0.5" to cents.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// Decimal returns the amount as a decimal with two fractional digits.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Float returns the amount as a float64 for display-oriented callers.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

// String formats the amount with two decimal places, e.g. "45.00".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// WithinTolerance reports whether two amounts differ by at most Tolerance.
func WithinTolerance(a, b Cents) bool {
	return (a - b).Abs() <= Tolerance
}

// SplitEqual divides total into n parts that sum exactly to total. After
// integer division, the first total%n parts carry one extra cent, so the
// allocation is deterministic in participant order.
func SplitEqual(total Cents, n int) []Cents {
	if n <= 0 {
		return nil
	}
	base := total / Cents(n)
	rem := total % Cents(n)
	parts := make([]Cents, n)
	for i := range parts {
		parts[i] = base
		if Cents(i) < rem {
			parts[i]++
		}
	}
	return parts
}

// SplitByWeights divides total proportionally to the given weights, using
// cumulative rounding so the parts sum exactly to total regardless of the
// weights' precision. Returns nil if the weights sum to zero or any weight
// is negative.
func SplitByWeights(total Cents, weights []decimal.Decimal) []Cents {
	sum := decimal.Zero
	for _, w := range weights {
		if w.IsNegative() {
			return nil
		}
		sum = sum.Add(w)
	}
	if sum.IsZero() {
		return nil
	}

	parts := make([]Cents, len(weights))
	totalDec := decimal.NewFromInt(int64(total))
	cumWeight := decimal.Zero
	var allocated Cents
	for i, w := range weights {
		cumWeight = cumWeight.Add(w)
		cumCents := Cents(totalDec.Mul(cumWeight).Div(sum).Round(0).IntPart())
		parts[i] = cumCents - allocated
		allocated = cumCents
	}
	return parts
}
