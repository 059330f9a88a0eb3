package services

import (
	"context"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a supported currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all supported currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// BaseCurrency is the currency every entry is balanced in.
	BaseCurrency() string
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
}

// CurrencyConverter resolves exchange rates as of a date.
type CurrencyConverter interface {
	// Rate returns the most recent rate effective on or before asOf, falling back
	// to the inverse pair. Rate(x, x) is always 1.
	Rate(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (decimal.Decimal, error)

	// Convert multiplies amount by Rate.
	Convert(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string, asOf time.Time) (decimal.Decimal, error)
}

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	CurrencyConverter

	// ListExchangeRates returns stored rates, newest first.
	ListExchangeRates(ctx context.Context, fromCurrency, toCurrency string) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate stores a rate, replacing one with the same pair and date.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, userID string) (*domain.ExchangeRate, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
