package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(base BaseRepository) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{BaseRepository: base}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const exchangeRateColumns = `exchange_rate_id, from_currency, to_currency, rate, date_effective,
		created_at, created_by, last_updated_at, last_updated_by`

func scanExchangeRate(row pgx.Row) (domain.ExchangeRate, error) {
	var er domain.ExchangeRate
	err := row.Scan(
		&er.ExchangeRateID,
		&er.FromCurrency,
		&er.ToCurrency,
		&er.Rate,
		&er.DateEffective,
		&er.CreatedAt,
		&er.CreatedBy,
		&er.LastUpdatedAt,
		&er.LastUpdatedBy,
	)
	er.DateEffective = domain.DateOf(er.DateEffective)
	return er, err
}

// SaveExchangeRate inserts a rate, replacing the rate already stored for the same pair and date.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (exchange_rate_id, from_currency, to_currency, rate, date_effective,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT uq_exchange_rates_pair_date
		DO UPDATE SET rate = EXCLUDED.rate, last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.DB.Exec(ctx, query,
		rate.ExchangeRateID,
		rate.FromCurrency,
		rate.ToCurrency,
		rate.Rate,
		domain.DateOf(rate.DateEffective),
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save exchange rate %s/%s: %w", rate.FromCurrency, rate.ToCurrency, err)
	}
	return nil
}

// FindLatestRate returns the newest rate for the pair effective on or before asOf.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, fromCurrency, toCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND date_effective <= $3
		ORDER BY date_effective DESC
		LIMIT 1;
	`
	er, err := scanExchangeRate(r.DB.QueryRow(ctx, query, fromCurrency, toCurrency, domain.DateOf(asOf)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("rate %s/%s: %w", fromCurrency, toCurrency, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find exchange rate %s/%s: %w", fromCurrency, toCurrency, err)
	}
	return &er, nil
}

// ListExchangeRates returns matching rates, newest first.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context, fromCurrency, toCurrency string) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE ($1 = '' OR from_currency = $1) AND ($2 = '' OR to_currency = $2)
		ORDER BY date_effective DESC, from_currency, to_currency;
	`
	rows, err := r.DB.Query(ctx, query, fromCurrency, toCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	rates := []domain.ExchangeRate{}
	for rows.Next() {
		er, err := scanExchangeRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		rates = append(rates, er)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rates: %w", err)
	}
	return rates, nil
}
