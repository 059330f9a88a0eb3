package dto

import (
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExchangeRateRequest defines the structure for creating a new exchange rate.
type CreateExchangeRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrency" binding:"required,currency"`
	ToCurrencyCode   string          `json:"toCurrency" binding:"required,currency,nefield=FromCurrencyCode"`
	Rate             decimal.Decimal `json:"rate" binding:"required"`
	DateEffective    string          `json:"dateEffective" binding:"required,ledgerdate"`
}

// ListExchangeRatesParams filters rates by pair. Empty codes match any currency.
type ListExchangeRatesParams struct {
	FromCurrencyCode string `form:"from" binding:"omitempty,currency"`
	ToCurrencyCode   string `form:"to" binding:"omitempty,currency"`
}

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	ExchangeRateID   string          `json:"exchangeRateId"`
	FromCurrencyCode string          `json:"fromCurrency"`
	ToCurrencyCode   string          `json:"toCurrency"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    string          `json:"dateEffective"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy    string          `json:"lastUpdatedBy"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   rate.ExchangeRateID,
		FromCurrencyCode: rate.FromCurrency,
		ToCurrencyCode:   rate.ToCurrency,
		Rate:             rate.Rate,
		DateEffective:    rate.DateEffective.Format(domain.DateLayout),
		CreatedAt:        rate.CreatedAt,
		CreatedBy:        rate.CreatedBy,
		LastUpdatedAt:    rate.LastUpdatedAt,
		LastUpdatedBy:    rate.LastUpdatedBy,
	}
}

// ToListExchangeRateResponse converts a slice of domain.ExchangeRate to a slice of ExchangeRateResponse DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = ToExchangeRateResponse(&rates[i])
	}
	return responses
}

// ConvertParams are the query parameters of GET /exchange-rates/convert.
type ConvertParams struct {
	Amount string `form:"amount" binding:"required"`
	From   string `form:"from" binding:"required,currency"`
	To     string `form:"to" binding:"required,currency"`
	AsOf   string `form:"asOf" binding:"omitempty,ledgerdate"`
}

// ConvertResponse is the result of a currency conversion.
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	AsOf      string          `json:"asOf"`
	Rate      decimal.Decimal `json:"rate"`
	Converted decimal.Decimal `json:"converted"`
	Display   string          `json:"display"`
}
