package dto

import (
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
)

// ListActivityParams bounds the activity feed.
type ListActivityParams struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=500"`
}

// ActivityResponse is one archived ledger event.
type ActivityResponse struct {
	ID          string           `json:"id"`
	Type        domain.EventType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Data        map[string]any   `json:"data,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ToListActivityResponse converts archived events.
func ToListActivityResponse(events []domain.FinancialEvent) []ActivityResponse {
	res := make([]ActivityResponse, len(events))
	for i, e := range events {
		res[i] = ActivityResponse{
			ID:          e.ID,
			Type:        e.Type,
			Title:       e.Title,
			Description: e.Description,
			Data:        e.Data,
			CreatedAt:   e.CreatedAt,
		}
	}
	return res
}
