// Package format renders transaction values for terminal display and export.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/schoolpay/internal/model"
)

// DefaultCurrency is assumed when a transaction carries no currency code.
const DefaultCurrency = "USD"

var currencySymbols = map[string]string{
	"USD": "$",
	"INR": "₹",
	"EUR": "€",
	"GBP": "£",
}

// Currency formats amount with two decimals and thousands separators. Absent
// amounts render as N/A. Codes without a known symbol are prefixed verbatim.
func Currency(amount decimal.NullDecimal, code string) string {
	if !amount.Valid {
		return model.NotAvailable
	}
	return CurrencyValue(amount.Decimal, code)
}

// CurrencyValue formats a present amount.
func CurrencyValue(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	number := groupThousands(amount)
	if symbol, ok := currencySymbols[code]; ok {
		return sign + symbol + number
	}
	return sign + code + " " + number
}

// englishNumbers groups whole units with commas regardless of the user's locale.
var englishNumbers = message.NewPrinter(language.English)

func groupThousands(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	if len(whole) <= 3 {
		return fixed
	}
	units := amount.Round(2).Truncate(0)
	if !units.BigInt().IsInt64() {
		return fixed
	}
	return englishNumbers.Sprintf("%d", units.IntPart()) + "." + frac
}
