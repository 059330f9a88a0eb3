package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type PgxReportingRepository struct {
	BaseRepository
}

func newPgxReportingRepository(base BaseRepository) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository: base}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// ledgerStart precedes every entry date.
var ledgerStart = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)

func (r *PgxReportingRepository) AccountBalancesAsOf(ctx context.Context, asOf time.Time) (map[string]decimal.Decimal, error) {
	return r.sumLines(ctx, ledgerStart, asOf)
}

func (r *PgxReportingRepository) AccountMovements(ctx context.Context, start, end time.Time) (map[string]decimal.Decimal, error) {
	return r.sumLines(ctx, start, end)
}

// sumLines aggregates debit and credit base amounts per account and signs the
// net in the account's normal direction.
func (r *PgxReportingRepository) sumLines(ctx context.Context, start, end time.Time) (map[string]decimal.Decimal, error) {
	query := `
		SELECT l.account_id, a.account_type,
			COALESCE(SUM(l.amount_base) FILTER (WHERE l.debit_amount > 0), 0) AS debit_total,
			COALESCE(SUM(l.amount_base) FILTER (WHERE l.credit_amount > 0), 0) AS credit_total
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE e.entry_date BETWEEN $1 AND $2 AND e.status IN ('posted', 'approved')
		GROUP BY l.account_id, a.account_type;
	`
	rows, err := r.DB.Query(ctx, query, domain.DateOf(start), domain.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger lines: %w", err)
	}
	defer rows.Close()

	res := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			accountID     string
			accountType   domain.AccountType
			debit, credit decimal.Decimal
		)
		if err := rows.Scan(&accountID, &accountType, &debit, &credit); err != nil {
			return nil, fmt.Errorf("failed to scan ledger aggregate: %w", err)
		}
		if accountType.NormalSide() == domain.DebitSide {
			res[accountID] = debit.Sub(credit)
		} else {
			res[accountID] = credit.Sub(debit)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger aggregates: %w", err)
	}
	return res, nil
}
