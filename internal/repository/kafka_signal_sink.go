package repository

import (
	"context"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	"github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	pkgkafka "github.com/Scotty108/Cascadian-sub002/pkg/kafka"
)

// KafkaSignalSink publishes signal records to the signal topic. The topic
// consumer persists them to ClickHouse; the sweep path never blocks on the
// database.
type KafkaSignalSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalSink creates a Kafka-backed signal sink.
func NewKafkaSignalSink(producer *pkgkafka.Producer, topic string) repository.SignalSink {
	return &KafkaSignalSink{producer: producer, topic: topic}
}

func (s *KafkaSignalSink) Append(ctx context.Context, rec *models.SignalRecord) error {
	return s.producer.Publish(ctx, s.topic, []byte(rec.MarketID), rec)
}

func (s *KafkaSignalSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
