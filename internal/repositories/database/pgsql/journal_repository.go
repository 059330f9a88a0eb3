package pgsql

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates the posted-ledger repository.
func newPgxJournalRepository(base BaseRepository) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: base}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxJournalRepository)(nil)

var journalLineColumns = []string{
	"entry_id", "line_no", "account_id", "debit_amount", "credit_amount",
	"currency_code", "exchange_rate", "amount_base", "description",
}

const journalEntryColumns = `e.entry_id, e.entry_number, e.entry_date, e.description, e.reference, e.entry_type, e.status,
		e.base_currency, e.total_debit, e.total_credit, COALESCE(e.reverses_entry_id, ''), e.posted_at,
		e.approved_by, e.approved_at, e.created_at, e.created_by, e.last_updated_at, e.last_updated_by`

const journalLineSelect = `l.account_id, l.debit_amount, l.credit_amount, l.currency_code, l.exchange_rate, l.amount_base, l.description`

// NextEntryNumber draws from a database sequence so numbers never repeat across processes.
func (r *PgxJournalRepository) NextEntryNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.DB.QueryRow(ctx, `SELECT nextval('journal_entry_number_seq');`).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to reserve entry number: %w", err)
	}
	return domain.FormatEntryNumber(seq), nil
}

// Append inserts the entry header and its lines in one transaction. Referenced
// accounts are share-locked so a concurrent deactivation cannot slip in between
// validation and commit.
func (r *PgxJournalRepository) Append(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := lockPostableAccounts(ctx, tx, entry.AccountIDs()); err != nil {
		return err
	}

	headerQuery := `
		INSERT INTO journal_entries (entry_id, entry_number, entry_date, description, reference, entry_type, status,
			base_currency, total_debit, total_credit, reverses_entry_id, posted_at, approved_by, approved_at,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = tx.Exec(ctx, headerQuery,
		entry.EntryID,
		entry.EntryNumber,
		domain.DateOf(entry.Date),
		entry.Description,
		entry.Reference,
		entry.Type,
		entry.Status,
		entry.BaseCurrency,
		entry.TotalDebit,
		entry.TotalCredit,
		nullable(entry.ReversesEntryID),
		entry.PostedAt,
		entry.ApprovedBy,
		entry.ApprovedAt,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgUniqueViolation {
			if constraint == "uq_journal_entries_reverses" {
				return &apperrors.ConflictError{Resource: "journal entry", ID: entry.ReversesEntryID, Reason: "already reversed"}
			}
			return &apperrors.DuplicateEntryError{EntryNumber: entry.EntryNumber}
		}
		return fmt.Errorf("failed to insert journal entry %s: %w", entry.EntryNumber, err)
	}

	rows := make([][]any, len(entry.Lines))
	for i, l := range entry.Lines {
		rows[i] = []any{
			entry.EntryID, i + 1, l.AccountID, l.DebitAmount, l.CreditAmount,
			l.CurrencyCode, l.ExchangeRate, l.AmountInBaseCurrency, l.Description,
		}
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"journal_lines"}, journalLineColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to insert lines of journal entry %s: %w", entry.EntryNumber, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("inserted %d of %d lines of journal entry %s", n, len(rows), entry.EntryNumber)
	}

	return r.Commit(ctx, tx)
}

// lockPostableAccounts takes FOR SHARE locks and reports the first account that can no longer be posted to.
func lockPostableAccounts(ctx context.Context, tx pgx.Tx, accountIDs []string) error {
	ids := slices.Compact(slices.Sorted(slices.Values(accountIDs)))
	rows, err := tx.Query(ctx, `
		SELECT account_id FROM accounts
		WHERE account_id = ANY($1) AND is_active AND allow_direct_posting
		ORDER BY account_id
		FOR SHARE;
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	locked, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	for _, id := range ids {
		if !slices.Contains(locked, id) {
			return &apperrors.InactiveAccountError{AccountID: id, Reason: "account was deactivated or removed"}
		}
	}
	return nil
}

// UpdateEntryStatus moves an entry between ledger statuses.
func (r *PgxJournalRepository) UpdateEntryStatus(ctx context.Context, entryID string, from, to domain.EntryStatus, userID string, at time.Time) error {
	if !from.CanTransitionTo(to) {
		return &apperrors.ConflictError{Resource: "journal entry", ID: entryID, Reason: fmt.Sprintf("cannot move from %s to %s", from, to)}
	}

	query := `
		UPDATE journal_entries
		SET status = $3,
			approved_by = CASE WHEN $3 = 'approved' THEN $4 ELSE approved_by END,
			approved_at = CASE WHEN $3 = 'approved' THEN $5 ELSE approved_at END,
			last_updated_at = $5, last_updated_by = $4
		WHERE entry_id = $1 AND status = $2;
	`
	tag, err := r.DB.Exec(ctx, query, entryID, from, to, userID, at)
	if err != nil {
		return fmt.Errorf("failed to update status of journal entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	current, err := r.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	return &apperrors.ConflictError{Resource: "journal entry", ID: entryID, Reason: fmt.Sprintf("cannot move from %s to %s", current.Status, to)}
}

func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return r.findEntry(ctx, "e.entry_id = $1", entryID)
}

func (r *PgxJournalRepository) FindEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error) {
	return r.findEntry(ctx, "e.entry_number = $1", entryNumber)
}

func (r *PgxJournalRepository) findEntry(ctx context.Context, where string, key string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + journalEntryColumns + `, ` + journalLineSelect + `
		FROM journal_entries e
		JOIN journal_lines l ON l.entry_id = e.entry_id
		WHERE ` + where + `
		ORDER BY l.line_no;
	`
	for entry, err := range r.scanEntries(ctx, query, key) {
		if err != nil {
			return nil, fmt.Errorf("failed to find journal entry %s: %w", key, err)
		}
		return &entry, nil
	}
	return nil, fmt.Errorf("journal entry %s: %w", key, apperrors.ErrNotFound)
}

// EntriesInRange streams entries with their lines straight off the cursor.
func (r *PgxJournalRepository) EntriesInRange(ctx context.Context, start, end time.Time, accountID string) iter.Seq2[domain.JournalEntry, error] {
	query := `
		SELECT ` + journalEntryColumns + `, ` + journalLineSelect + `
		FROM journal_entries e
		JOIN journal_lines l ON l.entry_id = e.entry_id
		WHERE e.entry_date BETWEEN $1 AND $2
			AND ($3 = '' OR e.entry_id IN (SELECT entry_id FROM journal_lines WHERE account_id = $3))
		ORDER BY e.entry_date, length(e.entry_number), e.entry_number COLLATE "C", l.line_no;
	`
	return r.scanEntries(ctx, query, domain.DateOf(start), domain.DateOf(end), accountID)
}

// scanEntries folds joined entry/line rows into entries. Rows must be grouped by entry.
func (r *PgxJournalRepository) scanEntries(ctx context.Context, query string, args ...any) iter.Seq2[domain.JournalEntry, error] {
	return func(yield func(domain.JournalEntry, error) bool) {
		rows, err := r.DB.Query(ctx, query, args...)
		if err != nil {
			yield(domain.JournalEntry{}, err)
			return
		}
		defer rows.Close()

		var cur *domain.JournalEntry
		for rows.Next() {
			var (
				e domain.JournalEntry
				l domain.AccountEntry
			)
			err := rows.Scan(
				&e.EntryID, &e.EntryNumber, &e.Date, &e.Description, &e.Reference, &e.Type, &e.Status,
				&e.BaseCurrency, &e.TotalDebit, &e.TotalCredit, &e.ReversesEntryID, &e.PostedAt,
				&e.ApprovedBy, &e.ApprovedAt, &e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
				&l.AccountID, &l.DebitAmount, &l.CreditAmount, &l.CurrencyCode, &l.ExchangeRate, &l.AmountInBaseCurrency, &l.Description,
			)
			if err != nil {
				yield(domain.JournalEntry{}, err)
				return
			}
			if cur != nil && cur.EntryID != e.EntryID {
				if !yield(*cur, nil) {
					return
				}
				cur = nil
			}
			if cur == nil {
				e.Date = domain.DateOf(e.Date)
				cur = &e
			}
			cur.Lines = append(cur.Lines, l)
		}
		if err := rows.Err(); err != nil {
			yield(domain.JournalEntry{}, err)
			return
		}
		if cur != nil {
			yield(*cur, nil)
		}
	}
}

// BalanceOf sums the account's postings up to asOf in its normal direction.
func (r *PgxJournalRepository) BalanceOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	var accountType domain.AccountType
	err := r.DB.QueryRow(ctx, `SELECT account_type FROM accounts WHERE account_id = $1;`, accountID).Scan(&accountType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
		}
		return decimal.Zero, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	query := `
		SELECT COALESCE(SUM(CASE WHEN l.debit_amount > 0 THEN l.amount_base ELSE -l.amount_base END), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_id = $1 AND e.entry_date <= $2 AND e.status IN ('posted', 'approved');
	`
	var debitMinusCredit decimal.Decimal
	if err := r.DB.QueryRow(ctx, query, accountID, domain.DateOf(asOf)).Scan(&debitMinusCredit); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance of account %s: %w", accountID, err)
	}
	if accountType.NormalSide() == domain.CreditSide {
		return debitMinusCredit.Neg(), nil
	}
	return debitMinusCredit, nil
}

func (r *PgxJournalRepository) HasPostings(ctx context.Context, accountID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_id = $1);`, accountID)
}

func (r *PgxJournalRepository) HasReversal(ctx context.Context, entryID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE reverses_entry_id = $1);`, entryID)
}

func (r *PgxJournalRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := r.DB.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", arg, err)
	}
	return found, nil
}
