package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piggybank-dev/piggybank/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormat(t *testing.T) {
	assert.Equal(t, "₹12.50", Format(dec("12.5"), model.CurrencyINR))
	assert.Equal(t, "$0.00", Format(decimal.Zero, model.CurrencyUSD))
	assert.Equal(t, "$1234.57", Format(dec("1234.567"), model.CurrencyUSD))
}

func TestFormatShort(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"999.99", "$999"},
		{"1000", "$1.0K"},
		{"1250", "$1.3K"},
		{"2500000", "$2.5M"},
		{"0.4", "$0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatShort(dec(tt.amount), model.CurrencyUSD), "FormatShort(%s)", tt.amount)
	}
}

func TestParse(t *testing.T) {
	cur, err := Parse("usd")
	require.NoError(t, err)
	assert.Equal(t, model.CurrencyUSD, cur)

	_, err = Parse("EUR")
	assert.ErrorIs(t, err, model.ErrValidation, "valid ISO but unsupported")

	_, err = Parse("bogus")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSymbolAndName(t *testing.T) {
	assert.Equal(t, "₹", Symbol(model.CurrencyINR))
	assert.Equal(t, "US Dollars", Name(model.CurrencyUSD))
	assert.Equal(t, "EUR", Symbol("EUR"))
}

func TestParseAmount(t *testing.T) {
	assert.True(t, ParseAmount("12.34").Equal(dec("12.34")))
	assert.True(t, ParseAmount(" 7 ").Equal(dec("7")))
	assert.True(t, ParseAmount("abc").IsZero())
	assert.True(t, ParseAmount("-5").IsZero())
}
