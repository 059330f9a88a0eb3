package repositories

import (
	"context"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
)

// ActivityFeedRepository archives delivered events for the admin activity feed.
type ActivityFeedRepository interface {
	// RecordEvent stores the event once; redelivery of the same ID is a no-op.
	RecordEvent(ctx context.Context, event domain.FinancialEvent) error

	// ListRecentEvents returns the newest events first.
	ListRecentEvents(ctx context.Context, limit int) ([]domain.FinancialEvent, error)
}
