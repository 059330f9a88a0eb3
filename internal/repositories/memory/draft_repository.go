package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
)

// DraftRepository holds unposted entries.
type DraftRepository struct {
	mu     sync.RWMutex
	drafts map[string]domain.JournalEntry
}

// NewDraftRepository creates an empty draft store.
func NewDraftRepository() *DraftRepository {
	return &DraftRepository{drafts: make(map[string]domain.JournalEntry)}
}

var _ portsrepo.DraftRepository = (*DraftRepository)(nil)

func (r *DraftRepository) SaveDraft(_ context.Context, draft domain.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.drafts[draft.EntryID]; exists {
		return fmt.Errorf("draft %s: %w", draft.EntryID, apperrors.ErrDuplicate)
	}
	r.drafts[draft.EntryID] = draft.Clone()
	return nil
}

func (r *DraftRepository) FindDraftByID(_ context.Context, draftID string) (*domain.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drafts[draftID]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", draftID, apperrors.ErrNotFound)
	}
	d = d.Clone()
	return &d, nil
}

func (r *DraftRepository) UpdateDraftStatus(_ context.Context, draftID string, status domain.EntryStatus, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[draftID]
	if !ok {
		return fmt.Errorf("draft %s: %w", draftID, apperrors.ErrNotFound)
	}
	if !d.Status.CanTransitionTo(status) || d.Status != domain.StatusDraft {
		return &apperrors.ConflictError{Resource: "draft", ID: draftID, Reason: fmt.Sprintf("cannot move from %s to %s", d.Status, status)}
	}
	d.Status = status
	d.Touch(userID, at)
	r.drafts[draftID] = d
	return nil
}

func (r *DraftRepository) HasOpenDraftForAccount(_ context.Context, accountID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.drafts {
		if d.Status == domain.StatusDraft && d.References(accountID) {
			return true, nil
		}
	}
	return false, nil
}
