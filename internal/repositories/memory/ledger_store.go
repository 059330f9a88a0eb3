package memory

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/spice_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ledgerSnapshot is immutable once published. Writers build a new snapshot and
// swap it in, so readers holding an old one are never affected.
type ledgerSnapshot struct {
	entries   []*domain.JournalEntry // sorted by (date, entryNumber)
	byID      map[string]*domain.JournalEntry
	byNumber  map[string]*domain.JournalEntry
	reversals map[string]string // reversed entry id -> reversing entry id
}

func emptySnapshot() *ledgerSnapshot {
	return &ledgerSnapshot{
		byID:      map[string]*domain.JournalEntry{},
		byNumber:  map[string]*domain.JournalEntry{},
		reversals: map[string]string{},
	}
}

func compareEntries(a, b *domain.JournalEntry) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return domain.CompareEntryNumbers(a.EntryNumber, b.EntryNumber)
}

// LedgerStore is the in-process ledger. Reads load the current snapshot and
// never lock; Append and UpdateEntryStatus publish a new snapshot with a
// compare-and-swap, retrying when another writer won the race.
type LedgerStore struct {
	snap     atomic.Pointer[ledgerSnapshot]
	seq      atomic.Int64
	accounts portsrepo.AccountReader
}

// NewLedgerStore creates an empty ledger. accounts resolves normal sides for balances.
func NewLedgerStore(accounts portsrepo.AccountReader) *LedgerStore {
	s := &LedgerStore{accounts: accounts}
	s.snap.Store(emptySnapshot())
	return s
}

var (
	_ portsrepo.LedgerRepositoryFacade = (*LedgerStore)(nil)
	_ portsrepo.ReportingRepository    = (*LedgerStore)(nil)
)

func (s *LedgerStore) NextEntryNumber(_ context.Context) (string, error) {
	return domain.FormatEntryNumber(s.seq.Add(1)), nil
}

func (s *LedgerStore) Append(_ context.Context, entry domain.JournalEntry) error {
	stored := entry.Clone()
	for {
		old := s.snap.Load()
		if _, dup := old.byNumber[stored.EntryNumber]; dup {
			return &apperrors.DuplicateEntryError{EntryNumber: stored.EntryNumber}
		}
		if _, dup := old.byID[stored.EntryID]; dup {
			return &apperrors.DuplicateEntryError{EntryNumber: stored.EntryNumber}
		}
		if rev := stored.ReversesEntryID; rev != "" {
			if _, done := old.reversals[rev]; done {
				return &apperrors.ConflictError{Resource: "journal entry", ID: rev, Reason: "already reversed"}
			}
		}

		next := &ledgerSnapshot{
			byID:      maps.Clone(old.byID),
			byNumber:  maps.Clone(old.byNumber),
			reversals: old.reversals,
		}
		pos, _ := slices.BinarySearchFunc(old.entries, &stored, compareEntries)
		next.entries = make([]*domain.JournalEntry, 0, len(old.entries)+1)
		next.entries = append(next.entries, old.entries[:pos]...)
		next.entries = append(next.entries, &stored)
		next.entries = append(next.entries, old.entries[pos:]...)
		next.byID[stored.EntryID] = &stored
		next.byNumber[stored.EntryNumber] = &stored
		if stored.ReversesEntryID != "" {
			next.reversals = maps.Clone(old.reversals)
			next.reversals[stored.ReversesEntryID] = stored.EntryID
		}

		if s.snap.CompareAndSwap(old, next) {
			return nil
		}
	}
}

func (s *LedgerStore) UpdateEntryStatus(_ context.Context, entryID string, from, to domain.EntryStatus, userID string, at time.Time) error {
	for {
		old := s.snap.Load()
		cur, ok := old.byID[entryID]
		if !ok {
			return fmt.Errorf("journal entry %s: %w", entryID, apperrors.ErrNotFound)
		}
		if cur.Status != from || !from.CanTransitionTo(to) {
			return &apperrors.ConflictError{Resource: "journal entry", ID: entryID, Reason: fmt.Sprintf("cannot move from %s to %s", cur.Status, to)}
		}

		updated := cur.Clone()
		updated.Status = to
		if to == domain.StatusApproved {
			approvedAt := at
			updated.ApprovedBy = userID
			updated.ApprovedAt = &approvedAt
		}
		updated.Touch(userID, at)

		next := &ledgerSnapshot{
			entries:   slices.Clone(old.entries),
			byID:      maps.Clone(old.byID),
			byNumber:  maps.Clone(old.byNumber),
			reversals: old.reversals,
		}
		pos, found := slices.BinarySearchFunc(next.entries, cur, compareEntries)
		if !found {
			return fmt.Errorf("journal entry %s missing from ledger index", entryID)
		}
		next.entries[pos] = &updated
		next.byID[entryID] = &updated
		next.byNumber[updated.EntryNumber] = &updated

		if s.snap.CompareAndSwap(old, next) {
			return nil
		}
	}
}

func (s *LedgerStore) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	e, ok := s.snap.Load().byID[entryID]
	if !ok {
		return nil, fmt.Errorf("journal entry %s: %w", entryID, apperrors.ErrNotFound)
	}
	c := e.Clone()
	return &c, nil
}

func (s *LedgerStore) FindEntryByNumber(_ context.Context, entryNumber string) (*domain.JournalEntry, error) {
	e, ok := s.snap.Load().byNumber[entryNumber]
	if !ok {
		return nil, fmt.Errorf("journal entry %s: %w", entryNumber, apperrors.ErrNotFound)
	}
	c := e.Clone()
	return &c, nil
}

func (s *LedgerStore) HasPostings(_ context.Context, accountID string) (bool, error) {
	for _, e := range s.snap.Load().entries {
		if e.References(accountID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *LedgerStore) HasReversal(_ context.Context, entryID string) (bool, error) {
	_, ok := s.snap.Load().reversals[entryID]
	return ok, nil
}

// EntriesInRange captures the snapshot when iteration starts, so each range
// over the returned sequence sees a consistent ledger.
func (s *LedgerStore) EntriesInRange(ctx context.Context, start, end time.Time, accountID string) iter.Seq2[domain.JournalEntry, error] {
	return func(yield func(domain.JournalEntry, error) bool) {
		entries := s.snap.Load().entries
		from, _ := slices.BinarySearchFunc(entries, start, func(e *domain.JournalEntry, t time.Time) int {
			return e.Date.Compare(t)
		})
		for _, e := range entries[from:] {
			if e.Date.After(end) {
				return
			}
			if err := ctx.Err(); err != nil {
				yield(domain.JournalEntry{}, err)
				return
			}
			if accountID != "" && !e.References(accountID) {
				continue
			}
			if !yield(e.Clone(), nil) {
				return
			}
		}
	}
}

func (s *LedgerStore) BalanceOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	acc, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	normal := acc.NormalSide()
	balance := decimal.Zero
	for _, e := range s.snap.Load().entries {
		if e.Date.After(asOf) {
			break
		}
		if !e.Status.InLedger() {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				balance = balance.Add(accounting.SignedAmount(l, normal))
			}
		}
	}
	return balance, nil
}

func (s *LedgerStore) AccountBalancesAsOf(ctx context.Context, asOf time.Time) (map[string]decimal.Decimal, error) {
	return s.sumLines(ctx, time.Time{}, asOf)
}

func (s *LedgerStore) AccountMovements(ctx context.Context, start, end time.Time) (map[string]decimal.Decimal, error) {
	return s.sumLines(ctx, start, end)
}

// sumLines totals normal-signed base amounts per account for entries dated within [start, end].
func (s *LedgerStore) sumLines(ctx context.Context, start, end time.Time) (map[string]decimal.Decimal, error) {
	type sides struct{ debit, credit decimal.Decimal }
	raw := make(map[string]sides)
	for _, e := range s.snap.Load().entries {
		if e.Date.Before(start) {
			continue
		}
		if e.Date.After(end) {
			break
		}
		if !e.Status.InLedger() {
			continue
		}
		for _, l := range e.Lines {
			sd := raw[l.AccountID]
			if l.IsDebit() {
				sd.debit = sd.debit.Add(l.AmountInBaseCurrency)
			} else {
				sd.credit = sd.credit.Add(l.AmountInBaseCurrency)
			}
			raw[l.AccountID] = sd
		}
	}

	ids := slices.Collect(maps.Keys(raw))
	accounts, err := s.accounts.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := make(map[string]decimal.Decimal, len(raw))
	for id, sd := range raw {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("ledger references unknown account %s: %w", id, apperrors.ErrNotFound)
		}
		if acc.NormalSide() == domain.DebitSide {
			res[id] = sd.debit.Sub(sd.credit)
		} else {
			res[id] = sd.credit.Sub(sd.debit)
		}
	}
	return res, nil
}

// Len reports how many entries the current snapshot holds.
func (s *LedgerStore) Len() int {
	return len(s.snap.Load().entries)
}
