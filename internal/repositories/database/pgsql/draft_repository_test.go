package pgsql

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/spice_ledger/internal/apperrors"
	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftRepository_FindDraftByID_ColumnsWin(t *testing.T) {
	mock, base := newMockBase(t)
	repo := newPgxDraftRepository(base)

	draft := postedEntry("", 250, "acc-1110", "acc-4100")
	draft.EntryID = "draft-1"
	draft.Status = domain.StatusDraft
	draft.PostedAt = nil
	payload, err := json.Marshal(draft)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	mock.ExpectQuery(`FROM journal_drafts\s+WHERE draft_id = \$1`).WithArgs("draft-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "payload", "last_updated_at", "last_updated_by"}).
			AddRow(domain.StatusCancelled, payload, later, "user-9"))

	got, err := repo.FindDraftByID(context.Background(), "draft-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, "user-9", got.LastUpdatedBy)
	assert.Equal(t, "user-1", got.CreatedBy)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "250", got.Lines[0].DebitAmount.String())
}

func TestDraftRepository_UpdateDraftStatus_NotADraft(t *testing.T) {
	mock, base := newMockBase(t)
	repo := newPgxDraftRepository(base)

	draft := postedEntry("", 250, "acc-1110", "acc-4100")
	draft.EntryID = "draft-1"
	payload, err := json.Marshal(draft)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE journal_drafts`).
		WithArgs("draft-1", domain.StatusCancelled, testNow, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`FROM journal_drafts`).WithArgs("draft-1").
		WillReturnRows(pgxmock.NewRows([]string{"status", "payload", "last_updated_at", "last_updated_by"}).
			AddRow(domain.StatusPosted, payload, testNow, "user-1"))

	err = repo.UpdateDraftStatus(context.Background(), "draft-1", domain.StatusCancelled, "user-1", testNow)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepository_HasOpenDraftForAccount(t *testing.T) {
	mock, base := newMockBase(t)
	repo := newPgxDraftRepository(base)

	mock.ExpectQuery(`jsonb_array_elements`).WithArgs("acc-1110").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	open, err := repo.HasOpenDraftForAccount(context.Background(), "acc-1110")
	require.NoError(t, err)
	assert.False(t, open)
}
