package messaging

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const topicReadAttempts = 3

// ensureTopic creates the topic with a single partition when the broker does not know it.
func ensureTopic(conn *kafka.Conn, topic string, log *slog.Logger) error {
	var (
		partitions []kafka.Partition
		err        error
	)
	for i := 0; i < topicReadAttempts; i++ {
		partitions, err = conn.ReadPartitions(topic)
		if err == nil {
			break
		}
		log.Warn("Failed to read topic partitions, retrying", "topic", topic, "attempt", i+1, "error", err)
		time.Sleep(time.Second)
	}

	if len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", topic)
		return nil
	}

	log.Info("Creating Kafka topic", "topic", topic)
	if err := conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topic, err)
	}
	return nil
}
