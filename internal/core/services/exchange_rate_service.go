package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// inverseRatePlaces bounds the precision of a rate derived from the opposite pair.
const inverseRatePlaces int32 = 10

// exchangeRateService is the currency converter.
type exchangeRateService struct {
	BaseService
	rateRepo    portsrepo.ExchangeRateRepositoryFacade
	currencySvc portssvc.CurrencyReaderSvc
	now         func() time.Time
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, currencySvc portssvc.CurrencyReaderSvc) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo:    rateRepo,
		currencySvc: currencySvc,
		now:         time.Now,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// Rate uses the most recently effective of the direct and the inverse pair on
// or before asOf. On the same effective date the direct rate wins.
func (s *exchangeRateService) Rate(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (decimal.Decimal, error) {
	from, to := strings.ToUpper(fromCurrency), strings.ToUpper(toCurrency)
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	asOf = domain.DateOf(asOf)

	direct, err := s.latestRate(ctx, from, to, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	inverse, err := s.latestRate(ctx, to, from, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	if inverse != nil && !inverse.Rate.IsPositive() {
		inverse = nil
	}

	switch {
	case direct != nil && (inverse == nil || !inverse.DateEffective.After(direct.DateEffective)):
		return direct.Rate, nil
	case inverse != nil:
		return decimal.NewFromInt(1).DivRound(inverse.Rate, inverseRatePlaces), nil
	}
	return decimal.Zero, &apperrors.RateNotFoundError{From: from, To: to, AsOf: asOf}
}

// latestRate returns nil when the pair has no rate on or before asOf.
func (s *exchangeRateService) latestRate(ctx context.Context, from, to string, asOf time.Time) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindLatestRate(ctx, from, to, asOf)
	if err == nil {
		return rate, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	s.LogError(ctx, err, "Failed to look up exchange rate", slog.String("from", from), slog.String("to", to))
	return nil, fmt.Errorf("failed to look up rate %s/%s: %w", from, to, err)
}

func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string, asOf time.Time) (decimal.Decimal, error) {
	rate, err := s.Rate(ctx, fromCurrency, toCurrency, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// CreateExchangeRate handles the creation of a new exchange rate.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	from, to := strings.ToUpper(req.FromCurrencyCode), strings.ToUpper(req.ToCurrencyCode)
	if !req.Rate.IsPositive() {
		return nil, apperrors.NewValidationError("rate", "exchange rate must be positive")
	}
	if from == to {
		return nil, apperrors.NewValidationError("toCurrency", "from and to currency codes cannot be the same")
	}
	for _, c := range []struct{ field, code string }{{"fromCurrency", from}, {"toCurrency", to}} {
		if _, err := s.currencySvc.GetCurrencyByCode(ctx, c.code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError(c.field, "currency %s is not supported", c.code)
			}
			return nil, fmt.Errorf("failed to validate currency %s: %w", c.code, err)
		}
	}
	effective, err := domain.ParseDate(req.DateEffective)
	if err != nil {
		return nil, apperrors.NewValidationError("dateEffective", "%s", err.Error())
	}

	rate := domain.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		FromCurrency:   from,
		ToCurrency:     to,
		Rate:           req.Rate,
		DateEffective:  effective,
		AuditFields:    domain.NewAuditFields(creatorUserID, s.now()),
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "Failed to save exchange rate", slog.String("from", from), slog.String("to", to))
		return nil, fmt.Errorf("failed to create exchange rate in service: %w", err)
	}

	s.LogInfo(ctx, "Exchange rate saved",
		slog.String("from", from), slog.String("to", to),
		slog.String("rate", rate.Rate.String()), slog.String("date_effective", req.DateEffective))
	return &rate, nil
}

func (s *exchangeRateService) ListExchangeRates(ctx context.Context, fromCurrency, toCurrency string) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListExchangeRates(ctx, strings.ToUpper(fromCurrency), strings.ToUpper(toCurrency))
	if err != nil {
		s.LogError(ctx, err, "Failed to list exchange rates")
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}
