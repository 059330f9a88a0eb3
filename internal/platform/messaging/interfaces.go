package messaging

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
