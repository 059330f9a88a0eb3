package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
)

type rateKey struct {
	from, to string
	date     time.Time
}

// ExchangeRateRepository keeps exchange rates in memory, one per pair and effective date.
type ExchangeRateRepository struct {
	mu    sync.RWMutex
	rates map[rateKey]domain.ExchangeRate
}

// NewExchangeRateRepository creates an empty rate table.
func NewExchangeRateRepository() *ExchangeRateRepository {
	return &ExchangeRateRepository{rates: make(map[rateKey]domain.ExchangeRate)}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*ExchangeRateRepository)(nil)

func (r *ExchangeRateRepository) FindLatestRate(_ context.Context, fromCurrency, toCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *domain.ExchangeRate
	for k, rate := range r.rates {
		if k.from != fromCurrency || k.to != toCurrency || k.date.After(asOf) {
			continue
		}
		if best == nil || k.date.After(best.DateEffective) {
			best = &rate
		}
	}
	if best == nil {
		return nil, fmt.Errorf("rate %s/%s: %w", fromCurrency, toCurrency, apperrors.ErrNotFound)
	}
	return best, nil
}

func (r *ExchangeRateRepository) ListExchangeRates(_ context.Context, fromCurrency, toCurrency string) ([]domain.ExchangeRate, error) {
	r.mu.RLock()
	rates := make([]domain.ExchangeRate, 0, len(r.rates))
	for k, rate := range r.rates {
		if (fromCurrency == "" || k.from == fromCurrency) && (toCurrency == "" || k.to == toCurrency) {
			rates = append(rates, rate)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(rates, func(a, b domain.ExchangeRate) int {
		return b.DateEffective.Compare(a.DateEffective)
	})
	return rates, nil
}

func (r *ExchangeRateRepository) SaveExchangeRate(_ context.Context, rate domain.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := rateKey{from: rate.FromCurrency, to: rate.ToCurrency, date: domain.DateOf(rate.DateEffective)}
	if existing, ok := r.rates[k]; ok {
		rate.ExchangeRateID = existing.ExchangeRateID
		rate.CreatedAt = existing.CreatedAt
		rate.CreatedBy = existing.CreatedBy
	}
	r.rates[k] = rate
	return nil
}
