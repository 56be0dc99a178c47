package repository

import (
	"context"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.MarketTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, t *models.MarketTick) error
	PublishBatch(ctx context.Context, ticks []*models.MarketTick) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, t *models.MarketTick) error
	StoreBatch(ctx context.Context, ticks []*models.MarketTick) error
	Health(ctx context.Context) error // ping
	Close() error
}

// SignalSink appends computed signals to the immutable signal log.
// One row per computation, never updated in place.
type SignalSink interface {
	Append(ctx context.Context, rec *models.SignalRecord) error
	Close() error
}

// SignalLog reads back landed signals for the API surface, newest first.
type SignalLog interface {
	Recent(ctx context.Context, marketID string, limit int) ([]models.SignalRecord, error)
}

type Metrics interface {
	RecordSignalComputed(kind, marketID string)
	RecordBatchFailure(kind string)
	RecordError(kind string)
	RecordMessageSent(backend, marketID string)
	RecordLastPrice(marketID string, price float64)
	RecordLastTSI(marketID string, fast float64)
	RecordLatency(op string, seconds float64)
}
