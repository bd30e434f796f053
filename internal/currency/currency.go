// Package currency formats and parses money amounts for display.
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/piggybank-dev/piggybank/internal/model"
)

var symbols = map[model.Currency]string{
	model.CurrencyINR: "₹",
	model.CurrencyUSD: "$",
}

var names = map[model.Currency]string{
	model.CurrencyINR: "Indian Rupees",
	model.CurrencyUSD: "US Dollars",
}

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
)

// Supported returns the currencies the app can be configured with.
func Supported() []model.Currency {
	return []model.Currency{model.CurrencyINR, model.CurrencyUSD}
}

// Parse validates an ISO 4217 code and checks that it is supported.
func Parse(code string) (model.Currency, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", model.NewValidationError("currency", fmt.Sprintf("%q is not an ISO 4217 code", code))
	}
	cur := model.Currency(unit.String())
	if _, ok := symbols[cur]; !ok {
		return "", model.NewValidationError("currency", fmt.Sprintf("%s is not supported", cur))
	}
	return cur, nil
}

// Symbol returns the display symbol, falling back to the code itself.
func Symbol(cur model.Currency) string {
	if s, ok := symbols[cur]; ok {
		return s
	}
	return string(cur)
}

// Name returns the long name of the currency.
func Name(cur model.Currency) string {
	if n, ok := names[cur]; ok {
		return n
	}
	return string(cur)
}

// Format renders amount with two decimals, e.g. "₹12.50".
func Format(amount decimal.Decimal, cur model.Currency) string {
	return Symbol(cur) + amount.StringFixed(2)
}

// FormatShort renders a compact amount: "$1.2M", "₹3.4K", or whole units below a thousand.
func FormatShort(amount decimal.Decimal, cur model.Currency) string {
	sym := Symbol(cur)
	switch {
	case amount.GreaterThanOrEqual(million):
		return sym + amount.Div(million).StringFixed(1) + "M"
	case amount.GreaterThanOrEqual(thousand):
		return sym + amount.Div(thousand).StringFixed(1) + "K"
	default:
		return sym + amount.Floor().String()
	}
}

// ParseAmount leniently parses user input: unparseable text yields zero and
// negative values clamp to zero. Callers validate positivity themselves.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
