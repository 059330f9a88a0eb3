package dto

import "github.com/SscSPs/spice_ledger/internal/core/domain"

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyCode string `json:"currencyCode"`
	Symbol       string `json:"symbol"`
	Precision    int    `json:"precision"`
	IsBase       bool   `json:"isBase"`
}

// ToCurrencyResponse converts a domain.Currency, flagging the ledger's base currency.
func ToCurrencyResponse(c domain.Currency, baseCurrency string) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode: c.CurrencyCode,
		Symbol:       c.Symbol,
		Precision:    c.Precision,
		IsBase:       c.CurrencyCode == baseCurrency,
	}
}
