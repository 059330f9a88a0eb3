package repositories

import (
	"context"
	"iter"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader exposes posted entries. Reads see a consistent snapshot and
// never observe part of an entry.
type LedgerReader interface {
	// FindEntryByID returns a posted or approved entry, or apperrors.ErrNotFound.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryByNumber returns the entry with the given number, or apperrors.ErrNotFound.
	FindEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error)

	// BalanceOf sums the account's base-currency postings dated on or before asOf,
	// signed in the account's normal direction.
	BalanceOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)

	// EntriesInRange lazily yields entries dated within [start, end] ordered by
	// (date, entryNumber). An empty accountID matches every entry. The sequence
	// may be ranged over more than once.
	EntriesInRange(ctx context.Context, start, end time.Time, accountID string) iter.Seq2[domain.JournalEntry, error]

	// HasPostings reports whether any entry references the account.
	HasPostings(ctx context.Context, accountID string) (bool, error)

	// HasReversal reports whether a compensating entry already reverses entryID.
	HasReversal(ctx context.Context, entryID string) (bool, error)
}

// LedgerWriter appends to the ledger.
type LedgerWriter interface {
	// NextEntryNumber reserves the next sequential entry number.
	NextEntryNumber(ctx context.Context) (string, error)

	// Append records the whole entry or nothing. A repeated entry number or ID
	// yields *apperrors.DuplicateEntryError.
	Append(ctx context.Context, entry domain.JournalEntry) error

	// UpdateEntryStatus moves an entry from one status to another, or returns
	// *apperrors.ConflictError when the entry is not in the expected status.
	UpdateEntryStatus(ctx context.Context, entryID string, from, to domain.EntryStatus, userID string, at time.Time) error
}

// LedgerRepositoryFacade combines ledger reads and writes
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

// DraftRepository stores entries that have not been posted yet.
type DraftRepository interface {
	// SaveDraft persists a new draft.
	SaveDraft(ctx context.Context, draft domain.JournalEntry) error

	// FindDraftByID returns a draft in any status, or apperrors.ErrNotFound.
	FindDraftByID(ctx context.Context, draftID string) (*domain.JournalEntry, error)

	// UpdateDraftStatus moves a draft out of StatusDraft, or returns
	// *apperrors.ConflictError when it is no longer a draft.
	UpdateDraftStatus(ctx context.Context, draftID string, status domain.EntryStatus, userID string, at time.Time) error

	// HasOpenDraftForAccount reports whether a draft still in StatusDraft references the account.
	HasOpenDraftForAccount(ctx context.Context, accountID string) (bool, error)
}
