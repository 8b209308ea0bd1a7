// Money parsing and budget-progress helpers.
//
// Amounts are decimal.Decimal throughout: balances are signed, transaction
// amounts and budget limits are strictly positive. Formatting for export is
// plain decimal with no currency symbol and no thousands separators.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a user-supplied amount string to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rejects empty, malformed and non-positive values.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError("amount", "must not be empty")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", "must be a number")
	}
	if !d.IsPositive() {
		return decimal.Zero, NewValidationError("amount", "must be positive")
	}
	return d, nil
}

// Progress returns the budget's consumption as a percentage clamped to 100.
// The second result is false when the limit is not positive, in which case
// progress is undefined and no division is attempted.
func (b Budget) Progress() (decimal.Decimal, bool) {
	if !b.Amount.IsPositive() {
		return decimal.Zero, false
	}
	p := b.Spent.Div(b.Amount).Mul(hundred)
	if p.GreaterThan(hundred) {
		return hundred, true
	}
	return p, true
}

// Over reports whether accumulated spend exceeds the budget limit.
func (b Budget) Over() bool {
	return b.Spent.GreaterThan(b.Amount)
}
