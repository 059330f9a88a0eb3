package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

// PgxDraftRepository keeps unposted entries as JSONB documents. Status and
// audit columns are authoritative over the copies inside the payload.
type PgxDraftRepository struct {
	BaseRepository
}

func newPgxDraftRepository(base BaseRepository) *PgxDraftRepository {
	return &PgxDraftRepository{BaseRepository: base}
}

var _ portsrepo.DraftRepository = (*PgxDraftRepository)(nil)

func (r *PgxDraftRepository) SaveDraft(ctx context.Context, draft domain.JournalEntry) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft %s: %w", draft.EntryID, err)
	}
	query := `
		INSERT INTO journal_drafts (draft_id, status, payload, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = r.DB.Exec(ctx, query,
		draft.EntryID,
		draft.Status,
		payload,
		draft.CreatedAt,
		draft.CreatedBy,
		draft.LastUpdatedAt,
		draft.LastUpdatedBy,
	)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return fmt.Errorf("draft %s: %w", draft.EntryID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save draft %s: %w", draft.EntryID, err)
	}
	return nil
}

func (r *PgxDraftRepository) FindDraftByID(ctx context.Context, draftID string) (*domain.JournalEntry, error) {
	query := `
		SELECT status, payload, last_updated_at, last_updated_by
		FROM journal_drafts
		WHERE draft_id = $1;
	`
	var (
		status  domain.EntryStatus
		payload []byte
		draft   domain.JournalEntry
		at      time.Time
		by      string
	)
	if err := r.DB.QueryRow(ctx, query, draftID).Scan(&status, &payload, &at, &by); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("draft %s: %w", draftID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find draft %s: %w", draftID, err)
	}
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft %s: %w", draftID, err)
	}
	draft.Status = status
	draft.Touch(by, at)
	return &draft, nil
}

func (r *PgxDraftRepository) UpdateDraftStatus(ctx context.Context, draftID string, status domain.EntryStatus, userID string, at time.Time) error {
	if !domain.StatusDraft.CanTransitionTo(status) {
		return &apperrors.ConflictError{Resource: "draft", ID: draftID, Reason: fmt.Sprintf("cannot move from draft to %s", status)}
	}
	query := `
		UPDATE journal_drafts
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE draft_id = $1 AND status = 'draft';
	`
	tag, err := r.DB.Exec(ctx, query, draftID, status, at, userID)
	if err != nil {
		return fmt.Errorf("failed to update draft %s: %w", draftID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	current, err := r.FindDraftByID(ctx, draftID)
	if err != nil {
		return err
	}
	return &apperrors.ConflictError{Resource: "draft", ID: draftID, Reason: fmt.Sprintf("cannot move from %s to %s", current.Status, status)}
}

func (r *PgxDraftRepository) HasOpenDraftForAccount(ctx context.Context, accountID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM journal_drafts d, jsonb_array_elements(d.payload -> 'lines') AS line
			WHERE d.status = 'draft' AND line ->> 'accountId' = $1
		);
	`
	var found bool
	if err := r.DB.QueryRow(ctx, query, accountID).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check drafts for account %s: %w", accountID, err)
	}
	return found, nil
}
