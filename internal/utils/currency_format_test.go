package utils_test

import (
	"testing"

	"github.com/SscSPs/spice_ledger/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatWithCurrencyPrecision(t *testing.T) {
	amount := decimal.RequireFromString("12.3456")
	assert.Equal(t, "12.35", utils.FormatWithCurrencyPrecision(amount, "USD"))
	assert.Equal(t, "12", utils.FormatWithCurrencyPrecision(amount, "JPY"))
	assert.Equal(t, "12.35", utils.FormatWithCurrencyPrecision(amount, "ZZZ"))
}

func TestLookupCurrency(t *testing.T) {
	usd, ok := utils.LookupCurrency("USD")
	assert.True(t, ok)
	assert.Equal(t, "USD", usd.CurrencyCode)
	assert.Equal(t, 2, usd.Precision)
	assert.Equal(t, "$", usd.Symbol)

	_, ok = utils.LookupCurrency("ZZZ")
	assert.False(t, ok)
}

func TestDisplayAmount(t *testing.T) {
	assert.Equal(t, "$1,234.50", utils.DisplayAmount(decimal.RequireFromString("1234.5"), "USD"))
	assert.Equal(t, "10.00 ZZZ", utils.DisplayAmount(decimal.NewFromInt(10), "ZZZ"))
}
