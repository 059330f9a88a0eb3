package services

import (
	"context"
	"iter"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/SscSPs/spice_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntryByID retrieves a ledger entry, falling back to drafts.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetEntryByNumber retrieves a ledger entry by its entry number.
	GetEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error)

	// ListEntries returns one page of ledger entries ordered by (date, entryNumber).
	ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)

	// StreamEntries yields every ledger entry dated within [start, end].
	StreamEntries(ctx context.Context, start, end time.Time, accountID string) iter.Seq2[domain.JournalEntry, error]
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// ValidateEntry runs the posting rules without recording anything and returns
	// the draft with rates, base amounts and totals filled in.
	ValidateEntry(ctx context.Context, draft domain.JournalEntry) (*domain.JournalEntry, error)

	// PostEntry validates the draft and appends it to the ledger.
	PostEntry(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error)

	// SaveDraft stores an entry for later posting. Only line shape is checked.
	SaveDraft(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error)

	// PostDraft posts a saved draft.
	PostDraft(ctx context.Context, draftID string, userID string) (*domain.JournalEntry, error)

	// CancelDraft moves a draft to cancelled.
	CancelDraft(ctx context.Context, draftID string, userID string) (*domain.JournalEntry, error)

	// ApproveEntry moves a posted entry to approved.
	ApproveEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// ReverseEntry posts a compensating adjustment entry dated on date.
	ReverseEntry(ctx context.Context, entryID string, date time.Time, description string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
