package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	pkgkafka "github.com/Scotty108/Cascadian-sub002/pkg/kafka"
)

// KafkaTicksHandler consumes tick messages from Kafka and writes them to
// storage.
type KafkaTicksHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaTicksHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// incoming message schema: {market_id, t, p, s}
func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		MarketID string  `json:"market_id"`
		T        int64   `json:"t"`
		P        float64 `json:"p"`
		S        float64 `json:"s"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.MarketTick{
		MarketID:  m.MarketID,
		Timestamp: m.T,
		Price:     m.P,
		Size:      m.S,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.MarketID)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)
