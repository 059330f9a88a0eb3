package utils

import (
	"github.com/Rhymond/go-money"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// defaultPrecision is used for codes go-money does not know.
const defaultPrecision = 2

// LookupCurrency returns the catalogue entry for code, or false when unknown.
func LookupCurrency(code string) (domain.Currency, bool) {
	cur := money.GetCurrency(code)
	if cur == nil {
		return domain.Currency{}, false
	}
	return domain.Currency{
		CurrencyCode: cur.Code,
		Symbol:       cur.Grapheme,
		Precision:    cur.Fraction,
	}, true
}

// CurrencyPrecision returns the number of minor-unit digits for code.
func CurrencyPrecision(code string) int {
	if cur, ok := LookupCurrency(code); ok {
		return cur.Precision
	}
	return defaultPrecision
}

// FormatWithCurrencyPrecision rounds amount to the currency's minor unit.
// Example: 12.3456 USD returns "12.35", 12.3456 JPY returns "12".
func FormatWithCurrencyPrecision(amount decimal.Decimal, code string) string {
	return amount.StringFixed(int32(CurrencyPrecision(code)))
}

// DisplayAmount renders amount with the currency symbol, e.g. "$1,234.50".
// Unknown codes fall back to the rounded number followed by the code.
func DisplayAmount(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return FormatWithPrecision(amount, defaultPrecision) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

// FormatWithPrecision formats an amount with the given precision.
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}
