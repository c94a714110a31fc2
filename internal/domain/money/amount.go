// Package money provides a fixed-point currency amount used by the invoicing
// domain. Amounts are held as integer minor units (cents) so arithmetic and
// equality are exact; floats appear only at system boundaries.
package money

import (
	"fmt"
	"math"
)

// scale is the number of minor units per major unit.
const scale = 100

// ErrCurrencyMismatch indicates arithmetic between amounts of different currencies.
type ErrCurrencyMismatch struct {
	Left  string
	Right string
}

func (e ErrCurrencyMismatch) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

// Amount is an immutable currency-tagged value. The zero value is a zero
// amount with an empty currency code; prefer Zero for a tagged zero.
type Amount struct {
	cents    int64
	currency string
}

// FromDecimal builds an Amount from a decimal value, rounding half away from
// zero at the minor unit (100.999 becomes 101.00).
func FromDecimal(amount float64, currency string) Amount {
	return Amount{
		cents:    int64(math.Round(amount * scale)),
		currency: currency,
	}
}

// FromCents builds an Amount directly from minor units. Used when hydrating
// persisted values.
func FromCents(cents int64, currency string) Amount {
	return Amount{cents: cents, currency: currency}
}

// Zero returns a zero-valued amount tagged with the given currency.
func Zero(currency string) Amount {
	return Amount{currency: currency}
}

// Add returns the exact minor-unit sum. Operands must share a currency.
func (a Amount) Add(other Amount) (Amount, error) {
	if a.currency != other.currency {
		return Amount{}, ErrCurrencyMismatch{Left: a.currency, Right: other.currency}
	}
	return Amount{cents: a.cents + other.cents, currency: a.currency}, nil
}

// Equals reports whether both currency and minor-unit value match.
func (a Amount) Equals(other Amount) bool {
	return a.currency == other.currency && a.cents == other.cents
}

// Decimal converts back to a decimal value. Boundary use only (display, API
// payloads); never compare amounts through it.
func (a Amount) Decimal() float64 {
	return float64(a.cents) / scale
}

// Cents returns the raw minor-unit value.
func (a Amount) Cents() int64 {
	return a.cents
}

// Currency returns the ISO currency code the amount is tagged with.
func (a Amount) Currency() string {
	return a.currency
}

func (a Amount) String() string {
	return fmt.Sprintf("%.2f %s", a.Decimal(), a.currency)
}
