package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/utils"
)

// currencyService serves the configured currency list from the go-money catalogue.
type currencyService struct {
	BaseService
	baseCurrency string
	supported    []string
}

// NewCurrencyService creates a CurrencyService. The base currency is always supported.
func NewCurrencyService(baseCurrency string, supported []string) portssvc.CurrencySvcFacade {
	baseCurrency = strings.ToUpper(baseCurrency)
	codes := []string{baseCurrency}
	for _, c := range supported {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" && !slices.Contains(codes, c) {
			codes = append(codes, c)
		}
	}
	return &currencyService{baseCurrency: baseCurrency, supported: codes}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) BaseCurrency() string {
	return s.baseCurrency
}

// GetCurrencyByCode returns the currency when it is both configured and known to the catalogue.
func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	code := strings.ToUpper(currencyCode)
	if !slices.Contains(s.supported, code) {
		return nil, fmt.Errorf("currency %s is not supported: %w", code, apperrors.ErrNotFound)
	}
	cur, ok := utils.LookupCurrency(code)
	if !ok {
		s.LogWarn(ctx, "Configured currency missing from catalogue", "currency_code", code)
		return nil, fmt.Errorf("currency %s: %w", code, apperrors.ErrNotFound)
	}
	return &cur, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	res := make([]domain.Currency, 0, len(s.supported))
	for _, code := range s.supported {
		if cur, ok := utils.LookupCurrency(code); ok {
			res = append(res, cur)
		}
	}
	return res, nil
}
