package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rates
type ExchangeRateReader interface {
	// FindLatestRate returns the most recent rate for the exact pair effective on or
	// before asOf, or apperrors.ErrNotFound.
	FindLatestRate(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (*domain.ExchangeRate, error)

	// ListExchangeRates returns rates for a pair, newest first. Empty codes match any currency.
	ListExchangeRates(ctx context.Context, fromCurrency, toCurrency string) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rates
type ExchangeRateWriter interface {
	// SaveExchangeRate inserts a rate or replaces the one with the same pair and effective date.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines exchange rate reads and writes
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
