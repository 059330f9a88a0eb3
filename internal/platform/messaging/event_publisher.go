package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/spice_ledger/internal/core/domain"
	"github.com/SscSPs/spice_ledger/internal/platform/config"
	"github.com/segmentio/kafka-go"
)

// EventPublisher forwards ledger events to a Kafka topic.
type EventPublisher struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewEventPublisher dials the brokers, makes sure the topic exists and
// returns a synchronous publisher. Synchronous writes let the dispatcher
// retry a failed delivery.
func NewEventPublisher(logger *slog.Logger, cfg *config.Config) (*EventPublisher, error) {
	if cfg.KafkaEventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.KafkaBrokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka brokers %s: %w", cfg.KafkaBrokers, err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.KafkaEventsTopic, logger); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers),
		Topic:        cfg.KafkaEventsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}

	return newEventPublisher(logger, writer, cfg.KafkaEventsTopic), nil
}

func newEventPublisher(logger *slog.Logger, writer KafkaWriter, topic string) *EventPublisher {
	return &EventPublisher{logger: logger, writer: writer, topic: topic}
}

// Publish writes one event keyed by its ID so redeliveries land on the same partition.
func (p *EventPublisher) Publish(ctx context.Context, event domain.FinancialEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", p.topic,
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
		return fmt.Errorf("failed to publish event %s to %s: %w", event.ID, p.topic, err)
	}

	p.logger.Debug("Published ledger event", "topic", p.topic, "event_id", event.ID, "event_type", event.Type)
	return nil
}

// Listener adapts the publisher to the event dispatcher.
func (p *EventPublisher) Listener() domain.EventListener {
	return p.Publish
}

// Close flushes and closes the writer.
func (p *EventPublisher) Close() error {
	p.logger.Info("Closing Kafka event publisher", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
