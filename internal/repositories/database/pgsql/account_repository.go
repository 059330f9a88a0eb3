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

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for the chart of accounts.
func newPgxAccountRepository(base BaseRepository) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: base}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, code, name, account_type, currency_code, report_category, allow_direct_posting,
		is_active, COALESCE(parent_account_id, ''), description, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID,
		&a.Code,
		&a.Name,
		&a.AccountType,
		&a.CurrencyCode,
		&a.ReportCategory,
		&a.AllowDirectPosting,
		&a.IsActive,
		&a.ParentAccountID,
		&a.Description,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	return a, err
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, code, name, account_type, currency_code, report_category, allow_direct_posting,
			is_active, parent_account_id, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.DB.Exec(ctx, query,
		account.AccountID,
		account.Code,
		account.Name,
		account.AccountType,
		account.CurrencyCode,
		account.ReportCategory,
		account.AllowDirectPosting,
		account.IsActive,
		nullable(account.ParentAccountID),
		account.Description,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		switch code, _ := pgErrorCode(err); code {
		case pgUniqueViolation:
			return fmt.Errorf("account code %s: %w", account.Code, apperrors.ErrDuplicate)
		case pgForeignKeyViolation:
			return fmt.Errorf("parent account %s: %w", account.ParentAccountID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.DB.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return &acc, nil
}

// FindAccountByCode retrieves an account by its chart code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	acc, err := scanAccount(r.DB.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account code %s: %w", code, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find account code %s: %w", code, err)
	}
	return &acc, nil
}

// FindAccountsByIDs retrieves the accounts that exist among accountIDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	res := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return res, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.DB.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		res[acc.AccountID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return res, nil
}

// ListAccounts returns the chart ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE is_active OR $1 ORDER BY code COLLATE "C";`
	rows, err := r.DB.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount writes the mutable fields of an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, description = $3, allow_direct_posting = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1;
	`
	tag, err := r.DB.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.Description,
		account.AllowDirectPosting,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", account.AccountID, apperrors.ErrNotFound)
	}
	return nil
}

// DeactivateAccount marks an active account inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active;
	`
	tag, err := r.DB.Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.FindAccountByID(ctx, accountID); err != nil {
		return err
	}
	return apperrors.NewValidationError("accountId", "account %s is already inactive", accountID)
}

// DeleteAccount removes an account. Lines referencing it make the delete fail.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return &apperrors.ConflictError{Resource: "account", ID: accountID, Reason: "account is still referenced"}
		}
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return nil
}
