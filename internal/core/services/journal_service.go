package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/spice_ledger/internal/core/ports/services"
	"github.com/SscSPs/spice_ledger/internal/dto"
	"github.com/SscSPs/spice_ledger/internal/utils/accounting"
	"github.com/SscSPs/spice_ledger/internal/utils/locking"
	"github.com/SscSPs/spice_ledger/internal/utils/pagination"
)

// maxNumberAttempts bounds retries when a generated entry number collides
// with one a caller supplied.
const maxNumberAttempts = 5

var (
	ledgerStart = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	ledgerEnd   = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// journalService is the journal entry engine.
type journalService struct {
	BaseService
	accountRepo  portsrepo.AccountReader
	ledgerRepo   portsrepo.LedgerRepositoryFacade
	draftRepo    portsrepo.DraftRepository
	converter    portssvc.CurrencyConverter
	locker       *locking.KeyedLocker
	events       portssvc.EventDispatcher
	baseCurrency string
	now          func() time.Time
}

// JournalServiceOption configures the journal engine.
type JournalServiceOption func(*journalService)

// WithJournalLocker shares the per-account locks with the account service.
func WithJournalLocker(locker *locking.KeyedLocker) JournalServiceOption {
	return func(s *journalService) {
		s.locker = locker
	}
}

// WithJournalEvents publishes posting events.
func WithJournalEvents(events portssvc.EventDispatcher) JournalServiceOption {
	return func(s *journalService) {
		s.events = events
	}
}

// WithJournalClock overrides time.Now.
func WithJournalClock(now func() time.Time) JournalServiceOption {
	return func(s *journalService) {
		s.now = now
	}
}

// NewJournalService creates a new JournalService.
func NewJournalService(
	accountRepo portsrepo.AccountReader,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	draftRepo portsrepo.DraftRepository,
	converter portssvc.CurrencyConverter,
	baseCurrency string,
	options ...JournalServiceOption,
) portssvc.JournalSvcFacade {
	svc := &journalService{
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		draftRepo:    draftRepo,
		converter:    converter,
		locker:       locking.NewKeyedLocker(),
		baseCurrency: strings.ToUpper(baseCurrency),
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// checkShape applies the rules that need no lookups: description, line count,
// repeated accounts and one positive side per line.
func (s *journalService) checkShape(draft *domain.JournalEntry) error {
	if strings.TrimSpace(draft.Description) == "" {
		return apperrors.NewValidationError("description", "description is required")
	}
	if len(draft.Lines) < 2 {
		return apperrors.NewValidationError("lines", "an entry needs at least two lines, got %d", len(draft.Lines))
	}

	seen := make(map[string]int, len(draft.Lines))
	for i, l := range draft.Lines {
		if l.AccountID == "" {
			return apperrors.NewValidationError(fmt.Sprintf("lines[%d].accountId", i), "account is required")
		}
		if prev, dup := seen[l.AccountID]; dup {
			return apperrors.NewValidationError(fmt.Sprintf("lines[%d].accountId", i), "account %s already used on line %d", l.AccountID, prev)
		}
		seen[l.AccountID] = i
	}

	for i, l := range draft.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
			return apperrors.NewValidationError(field, "amounts cannot be negative")
		}
		if l.DebitAmount.IsPositive() == l.CreditAmount.IsPositive() {
			return apperrors.NewValidationError(field, "exactly one of debit and credit must be positive")
		}
		if l.ExchangeRate.IsNegative() {
			return apperrors.NewValidationError(field+".exchangeRate", "exchange rate must be positive")
		}
		if l.CurrencyCode != "" && !domain.IsCurrencyCode(l.CurrencyCode) {
			return apperrors.NewValidationError(field+".currency", "currency must be a three-letter code")
		}
	}

	if draft.Date.IsZero() {
		return apperrors.NewValidationError("date", "date is required")
	}
	if draft.Type == "" {
		draft.Type = domain.EntryNormal
	}
	if _, err := domain.ParseEntryType(string(draft.Type)); err != nil {
		return apperrors.NewValidationError("type", "%s", err.Error())
	}
	if draft.BaseCurrency == "" {
		draft.BaseCurrency = s.baseCurrency
	}
	draft.BaseCurrency = strings.ToUpper(draft.BaseCurrency)
	if draft.BaseCurrency != s.baseCurrency {
		return apperrors.NewValidationError("baseCurrency", "entries are kept in %s, got %s", s.baseCurrency, draft.BaseCurrency)
	}
	return nil
}

// prepare validates draft and returns a copy with rates, base amounts and totals filled in.
func (s *journalService) prepare(ctx context.Context, draft domain.JournalEntry) (domain.JournalEntry, error) {
	entry := draft.Clone()
	entry.Date = domain.DateOf(entry.Date)
	entry.Description = strings.TrimSpace(entry.Description)
	for i := range entry.Lines {
		entry.Lines[i].CurrencyCode = strings.ToUpper(entry.Lines[i].CurrencyCode)
	}
	if err := s.checkShape(&entry); err != nil {
		return entry, err
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, entry.AccountIDs())
	if err != nil {
		s.LogError(ctx, err, "Failed to load accounts for entry")
		return entry, err
	}

	for i := range entry.Lines {
		l := &entry.Lines[i]
		if l.CurrencyCode == "" {
			if acc, ok := accounts[l.AccountID]; ok {
				l.CurrencyCode = acc.CurrencyCode
			} else {
				l.CurrencyCode = entry.BaseCurrency
			}
		}
		switch {
		case l.CurrencyCode == entry.BaseCurrency:
			l.ExchangeRate = decimalOne
		case l.ExchangeRate.IsPositive():
			// caller-supplied rate
		default:
			rate, err := s.converter.Rate(ctx, l.CurrencyCode, entry.BaseCurrency, entry.Date)
			if err != nil {
				return entry, err
			}
			l.ExchangeRate = rate
		}
		l.AmountInBaseCurrency = accounting.ToBase(l.Amount(), l.ExchangeRate)
	}

	entry.TotalDebit, entry.TotalCredit = accounting.Totals(entry.Lines)
	if !domain.WithinEpsilon(entry.TotalDebit, entry.TotalCredit) {
		return entry, &apperrors.UnbalancedEntryError{TotalDebit: entry.TotalDebit, TotalCredit: entry.TotalCredit}
	}

	for i, l := range entry.Lines {
		acc, ok := accounts[l.AccountID]
		switch {
		case !ok:
			return entry, apperrors.NewValidationError(fmt.Sprintf("lines[%d].accountId", i), "account %s does not exist", l.AccountID)
		case !acc.IsActive:
			return entry, &apperrors.InactiveAccountError{AccountID: acc.AccountID, Reason: "account is inactive"}
		case !acc.AllowDirectPosting:
			return entry, &apperrors.InactiveAccountError{AccountID: acc.AccountID, Reason: "account does not allow direct posting"}
		}
	}
	return entry, nil
}

func (s *journalService) ValidateEntry(ctx context.Context, draft domain.JournalEntry) (*domain.JournalEntry, error) {
	entry, err := s.prepare(ctx, draft)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// PostEntry implements portssvc.JournalSvcFacade
func (s *journalService) PostEntry(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("userId", "user id is required")
	}
	posted, err := s.withLocks(draft.AccountIDs(), func() (*domain.JournalEntry, error) {
		return s.postLocked(ctx, draft, userID)
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, journalPostedEvent(*posted, userID, *posted.PostedAt))
	return posted, nil
}

// withLocks runs fn holding the locks of accountIDs. Events are dispatched
// after it returns, so listeners never hold up writers on the same accounts.
func (s *journalService) withLocks(accountIDs []string, fn func() (*domain.JournalEntry, error)) (*domain.JournalEntry, error) {
	unlock := s.locker.Lock(accountIDs...)
	defer unlock()
	return fn()
}

// postLocked must be called with every account of draft locked.
// It does not publish events; callers do that once the locks are released.
func (s *journalService) postLocked(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx)

	entry, err := s.prepare(ctx, draft)
	if err != nil {
		logger.Warn("Journal entry rejected", slog.String("error", err.Error()))
		return nil, err
	}

	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	autoNumber := entry.EntryNumber == ""

	// Once committing starts the caller can no longer cancel.
	commitCtx := context.WithoutCancel(ctx)
	if autoNumber {
		if entry.EntryNumber, err = s.ledgerRepo.NextEntryNumber(commitCtx); err != nil {
			s.LogError(ctx, err, "Failed to reserve entry number")
			return nil, err
		}
	}

	now := s.now()
	postedAt := now
	entry.Status = domain.StatusPosted
	entry.PostedAt = &postedAt
	entry.AuditFields = domain.NewAuditFields(userID, now)

	for attempt := 1; ; attempt++ {
		err = s.ledgerRepo.Append(commitCtx, entry)
		if err == nil {
			break
		}
		var dup *apperrors.DuplicateEntryError
		if autoNumber && errors.As(err, &dup) && attempt < maxNumberAttempts {
			logger.Warn("Generated entry number already taken, retrying", slog.String("entry_number", entry.EntryNumber))
			if entry.EntryNumber, err = s.ledgerRepo.NextEntryNumber(commitCtx); err != nil {
				return nil, err
			}
			continue
		}
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrInactiveAccount) {
			s.LogError(ctx, err, "Failed to append journal entry", slog.String("entry_number", entry.EntryNumber))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("total", entry.TotalDebit.String()),
		slog.String("user_id", userID))
	return &entry, nil
}

func (s *journalService) dispatch(ctx context.Context, event domain.FinancialEvent) {
	if s.events != nil {
		s.events.Dispatch(ctx, event)
	}
}

func (s *journalService) SaveDraft(ctx context.Context, draft domain.JournalEntry, userID string) (*domain.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("userId", "user id is required")
	}
	entry := draft.Clone()
	entry.Date = domain.DateOf(entry.Date)
	if err := s.checkShape(&entry); err != nil {
		return nil, err
	}
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	entry.Status = domain.StatusDraft
	entry.AuditFields = domain.NewAuditFields(userID, s.now())

	if err := s.draftRepo.SaveDraft(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save draft", slog.String("entry_id", entry.EntryID))
		return nil, err
	}
	s.LogInfo(ctx, "Draft saved", slog.String("entry_id", entry.EntryID))
	return &entry, nil
}

// PostDraft re-reads the draft under the account locks so two callers cannot post it twice.
func (s *journalService) PostDraft(ctx context.Context, draftID string, userID string) (*domain.JournalEntry, error) {
	draft, err := s.draftRepo.FindDraftByID(ctx, draftID)
	if err != nil {
		return nil, err
	}

	posted, err := s.withLocks(draft.AccountIDs(), func() (*domain.JournalEntry, error) {
		return s.postDraftLocked(ctx, draftID, userID)
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, journalPostedEvent(*posted, userID, *posted.PostedAt))
	return posted, nil
}

func (s *journalService) postDraftLocked(ctx context.Context, draftID string, userID string) (*domain.JournalEntry, error) {
	draft, err := s.draftRepo.FindDraftByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != domain.StatusDraft {
		return nil, &apperrors.ConflictError{Resource: "draft", ID: draftID, Reason: fmt.Sprintf("draft is %s", draft.Status)}
	}

	posted, err := s.postLocked(ctx, *draft, userID)
	if err != nil {
		return nil, err
	}
	// The entry is in the ledger; a stale draft status does not undo that.
	if err := s.draftRepo.UpdateDraftStatus(context.WithoutCancel(ctx), draftID, domain.StatusPosted, userID, s.now()); err != nil {
		s.LogError(ctx, err, "Draft posted but its status could not be updated",
			slog.String("draft_id", draftID),
			slog.String("entry_id", posted.EntryID))
	}
	return posted, nil
}

func (s *journalService) CancelDraft(ctx context.Context, draftID string, userID string) (*domain.JournalEntry, error) {
	now := s.now()
	if err := s.draftRepo.UpdateDraftStatus(ctx, draftID, domain.StatusCancelled, userID, now); err != nil {
		return nil, err
	}
	draft, err := s.draftRepo.FindDraftByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Draft cancelled", slog.String("entry_id", draftID))
	s.dispatch(ctx, draftCancelledEvent(*draft, userID, now))
	return draft, nil
}

func (s *journalService) ApproveEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("userId", "user id is required")
	}
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.Status.CanTransitionTo(domain.StatusApproved) {
		return nil, &apperrors.ConflictError{Resource: "journal entry", ID: entryID, Reason: fmt.Sprintf("entry is %s", entry.Status)}
	}

	now := s.now()
	if err := s.ledgerRepo.UpdateEntryStatus(ctx, entryID, domain.StatusPosted, domain.StatusApproved, userID, now); err != nil {
		return nil, err
	}
	approved, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Journal entry approved", slog.String("entry_id", entryID), slog.String("user_id", userID))
	s.dispatch(ctx, journalApprovedEvent(*approved, userID, now))
	return approved, nil
}

// ReverseEntry posts the mirror image of a ledger entry. The reversal goes
// through full validation, so accounts deactivated since cannot be reversed into.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, date time.Time, description string, userID string) (*domain.JournalEntry, error) {
	original, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.ReversesEntryID != "" {
		return nil, &apperrors.ConflictError{Resource: "journal entry", ID: entryID, Reason: "reversing entries cannot be reversed"}
	}

	reversal, err := s.withLocks(original.AccountIDs(), func() (*domain.JournalEntry, error) {
		return s.reverseLocked(ctx, original, date, description, userID)
	})
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, journalPostedEvent(*reversal, userID, *reversal.PostedAt))
	s.dispatch(ctx, journalReversedEvent(*original, *reversal, userID, s.now()))
	return reversal, nil
}

func (s *journalService) reverseLocked(ctx context.Context, original *domain.JournalEntry, date time.Time, description string, userID string) (*domain.JournalEntry, error) {
	entryID := original.EntryID
	reversed, err := s.ledgerRepo.HasReversal(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if reversed {
		return nil, &apperrors.ConflictError{Resource: "journal entry", ID: entryID, Reason: "already reversed"}
	}

	if date.IsZero() {
		date = s.now()
	}
	if strings.TrimSpace(description) == "" {
		description = "Reversal of " + original.EntryNumber
	}
	lines := make([]domain.AccountEntry, len(original.Lines))
	for i, l := range original.Lines {
		lines[i] = l.Reversed()
	}
	draft := domain.JournalEntry{
		Date:            date,
		Description:     description,
		Reference:       original.EntryNumber,
		Type:            domain.EntryAdjustment,
		BaseCurrency:    original.BaseCurrency,
		Lines:           lines,
		ReversesEntryID: original.EntryID,
	}

	return s.postLocked(ctx, draft, userID)
}

func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		return nil, err
	}
	return s.draftRepo.FindDraftByID(ctx, entryID)
}

func (s *journalService) GetEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error) {
	return s.ledgerRepo.FindEntryByNumber(ctx, entryNumber)
}

func (s *journalService) StreamEntries(ctx context.Context, start, end time.Time, accountID string) iter.Seq2[domain.JournalEntry, error] {
	return s.ledgerRepo.EntriesInRange(ctx, domain.DateOf(start), domain.DateOf(end), accountID)
}

// ListEntries pages through the ledger with a (date, entryNumber) cursor.
func (s *journalService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	start, end := ledgerStart, ledgerEnd
	var err error
	if params.FromDate != "" {
		if start, err = domain.ParseDate(params.FromDate); err != nil {
			return nil, apperrors.NewValidationError("fromDate", "%s", err.Error())
		}
	}
	if params.ToDate != "" {
		if end, err = domain.ParseDate(params.ToDate); err != nil {
			return nil, apperrors.NewValidationError("toDate", "%s", err.Error())
		}
	}
	if end.Before(start) {
		return nil, apperrors.NewValidationError("toDate", "toDate is before fromDate")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var cursor *pagination.Cursor
	if params.NextToken != "" {
		c, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, apperrors.NewValidationError("nextToken", "%s", err.Error())
		}
		cursor = &c
		if c.Date.After(start) {
			start = c.Date
		}
	}

	res := &dto.ListJournalEntriesResponse{Entries: []dto.JournalEntryResponse{}}
	var last domain.JournalEntry
	for e, err := range s.ledgerRepo.EntriesInRange(ctx, start, end, params.AccountID) {
		if err != nil {
			s.LogError(ctx, err, "Failed to read ledger entries")
			return nil, err
		}
		if cursor != nil && !cursor.After(e.Date, e.EntryNumber) {
			continue
		}
		if len(res.Entries) == limit {
			token := pagination.EncodeToken(last.Date, last.EntryNumber)
			res.NextToken = &token
			break
		}
		res.Entries = append(res.Entries, dto.ToJournalEntryResponse(&e))
		last = e
	}
	return res, nil
}
