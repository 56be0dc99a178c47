package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	pkgkafka "github.com/Scotty108/Cascadian-sub002/pkg/kafka"
)

// KafkaSignalsHandler consumes signal records from the signal topic and
// appends them to the durable signal log.
type KafkaSignalsHandler struct {
	topic   string
	sink    domrepo.SignalSink
	metrics domrepo.Metrics
}

func NewKafkaSignalsHandler(topic string, sink domrepo.SignalSink, metrics domrepo.Metrics) *KafkaSignalsHandler {
	return &KafkaSignalsHandler{topic: topic, sink: sink, metrics: metrics}
}

func (h *KafkaSignalsHandler) Topic() string { return h.topic }

func (h *KafkaSignalsHandler) Handle(ctx context.Context, b []byte) error {
	var rec models.SignalRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordError("signal_unmarshal")
		return err
	}

	start := time.Now()
	if err := h.sink.Append(ctx, &rec); err != nil {
		h.metrics.RecordError("signal_store")
		return err
	}
	h.metrics.RecordLatency("signal_insert_seconds", time.Since(start).Seconds())
	h.metrics.RecordMessageSent("clickhouse", rec.MarketID)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSignalsHandler)(nil)
