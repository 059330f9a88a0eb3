package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
)

// ActivityFeed keeps the most recent events in a bounded buffer.
type ActivityFeed struct {
	mu       sync.Mutex
	capacity int
	events   []domain.FinancialEvent
	seen     map[string]struct{}
}

// NewActivityFeed keeps at most capacity events.
func NewActivityFeed(capacity int) *ActivityFeed {
	if capacity <= 0 {
		capacity = 1000
	}
	return &ActivityFeed{capacity: capacity, seen: make(map[string]struct{})}
}

var _ portsrepo.ActivityFeedRepository = (*ActivityFeed)(nil)

func (f *ActivityFeed) RecordEvent(_ context.Context, event domain.FinancialEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.seen[event.ID]; dup {
		return nil
	}
	f.events = append(f.events, event)
	f.seen[event.ID] = struct{}{}
	if len(f.events) > f.capacity {
		delete(f.seen, f.events[0].ID)
		f.events = f.events[1:]
	}
	return nil
}

func (f *ActivityFeed) ListRecentEvents(_ context.Context, limit int) ([]domain.FinancialEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 || limit > len(f.events) {
		limit = len(f.events)
	}
	res := make([]domain.FinancialEvent, 0, limit)
	for i := len(f.events) - 1; i >= 0 && len(res) < limit; i-- {
		res = append(res, f.events[i])
	}
	return res, nil
}
