package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency describes an ISO 4217 currency known to the ledger.
type Currency struct {
	CurrencyCode string `json:"currencyCode"`
	Symbol       string `json:"symbol"`
	Precision    int    `json:"precision"`
}

// ExchangeRate converts one unit of FromCurrency into Rate units of ToCurrency,
// effective from DateEffective until superseded.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateId"`
	FromCurrency   string          `json:"fromCurrency"`
	ToCurrency     string          `json:"toCurrency"`
	Rate           decimal.Decimal `json:"rate"`
	DateEffective  time.Time       `json:"dateEffective"`
	AuditFields
}

// IsCurrencyCode reports whether s looks like a three-letter upper-case code.
func IsCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
