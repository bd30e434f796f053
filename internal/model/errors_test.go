package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestErrorsUnwrapToSentinels(t *testing.T) {
	verr := NewValidationError("amount", "must be positive")
	assert.ErrorIs(t, fmt.Errorf("credit: %w", verr), ErrValidation)
	assert.Equal(t, "invalid amount: must be positive", verr.Error())

	ferr := &InsufficientFundsError{Bucket: "balance", Available: decimal.NewFromInt(5), Requested: decimal.NewFromInt(8)}
	assert.ErrorIs(t, ferr, ErrInsufficientFunds)
	assert.Equal(t, "insufficient funds in balance: have 5.00, need 8.00", ferr.Error())

	nerr := &NotFoundError{Kind: "child", ID: "abc"}
	assert.ErrorIs(t, nerr, ErrNotFound)
	assert.False(t, errors.Is(nerr, ErrValidation))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrValidation, ErrInsufficientFunds, ErrNotFound, ErrStateCorrupt, ErrUnauthorized}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "sentinel %d matches %d", i, j)
			}
		}
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"10", false},
		{"0.01", false},
		{"12.50", false},
		{"0", true},
		{"-5", true},
		{"1.005", true},
	}
	for _, tt := range tests {
		err := ValidateAmount("amount", decimal.RequireFromString(tt.in))
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrValidation, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
	}
	assert.True(t, HasCents(decimal.RequireFromString("3.10")))
	assert.False(t, HasCents(decimal.RequireFromString("3.101")))
}
