package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/spice_ledger/internal/core/ports/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityCollectionName holds archived ledger events.
const ActivityCollectionName = "ledger_activity"

// activityDocument is the stored shape of a domain.FinancialEvent.
type activityDocument struct {
	ID          string         `bson:"_id"`
	Type        string         `bson:"type"`
	Title       string         `bson:"title"`
	Description string         `bson:"description"`
	Data        map[string]any `bson:"data,omitempty"`
	CreatedAt   time.Time      `bson:"created_at"`
}

func toActivityDocument(e domain.FinancialEvent) activityDocument {
	return activityDocument{
		ID:          e.ID,
		Type:        string(e.Type),
		Title:       e.Title,
		Description: e.Description,
		Data:        e.Data,
		CreatedAt:   e.CreatedAt.UTC(),
	}
}

func (d activityDocument) toDomain() domain.FinancialEvent {
	return domain.FinancialEvent{
		ID:          d.ID,
		Type:        domain.EventType(d.Type),
		Title:       d.Title,
		Description: d.Description,
		Data:        d.Data,
		CreatedAt:   d.CreatedAt,
	}
}

// ActivityRepository archives events in MongoDB.
type ActivityRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewActivityRepository creates a MongoDB activity archive.
func NewActivityRepository(logger *slog.Logger, db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

var _ portsrepo.ActivityFeedRepository = (*ActivityRepository)(nil)

// RecordEvent inserts the event unless its ID is already archived.
func (r *ActivityRepository) RecordEvent(ctx context.Context, event domain.FinancialEvent) error {
	collection := r.db.Collection(ActivityCollectionName)

	filter := bson.M{"_id": event.ID}
	update := bson.M{"$setOnInsert": toActivityDocument(event)}
	res, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to archive ledger event", "event_id", event.ID, "error", err)
		return fmt.Errorf("failed to archive event %s: %w", event.ID, err)
	}
	if res.UpsertedCount == 0 {
		r.logger.Debug("Ledger event already archived", "event_id", event.ID)
	}
	return nil
}

// ListRecentEvents returns up to limit events, newest first.
func (r *ActivityRepository) ListRecentEvents(ctx context.Context, limit int) ([]domain.FinancialEvent, error) {
	collection := r.db.Collection(ActivityCollectionName)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to query ledger activity", "error", err)
		return nil, fmt.Errorf("failed to query ledger activity: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []activityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode ledger activity", "error", err)
		return nil, fmt.Errorf("failed to decode ledger activity: %w", err)
	}

	events := make([]domain.FinancialEvent, len(docs))
	for i, d := range docs {
		events[i] = d.toDomain()
	}
	return events, nil
}
