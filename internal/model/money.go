package model

import "github.com/shopspring/decimal"

// HasCents reports whether d carries at most two decimal places.
func HasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// ValidateAmount checks that amount is strictly positive with at most two decimal places.
func ValidateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError(field, "must be greater than zero")
	}
	if !HasCents(amount) {
		return NewValidationError(field, "must have at most 2 decimal places")
	}
	return nil
}
