package usecase

import (
	"context"
	"fmt"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
	"github.com/Scotty108/Cascadian-sub002/pkg/queue"
)

// SweepJobType is the queue message type for scheduled sweeps.
const SweepJobType = "signal.sweep"

// SweepJob consumes queued sweep requests and runs them through the
// orchestrator. Enqueued by the API, consumed by the worker.
type SweepJob struct {
	orch *SignalOrchestrator
	l    *applogger.Logger
}

func NewSweepJob(orch *SignalOrchestrator, l *applogger.Logger) *SweepJob {
	return &SweepJob{orch: orch, l: l}
}

func (j *SweepJob) Name() string { return "signal-sweep" }
func (j *SweepJob) Type() string { return SweepJobType }

func (j *SweepJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.SweepRequest](payload)
	if err != nil {
		return fmt.Errorf("parse sweep payload: %w", err)
	}

	markets := make([]SweepMarket, 0, len(req.Markets))
	for _, m := range req.Markets {
		markets = append(markets, SweepMarket{MarketID: m.MarketID, ConditionID: m.ConditionID})
	}

	res, err := j.orch.Sweep(ctx, markets)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	if j.l != nil {
		j.l.Info("queued sweep done",
			applogger.Int("markets", len(markets)),
			applogger.Int("signals", len(res.Records)),
			applogger.Int("failed", res.Failed),
		)
	}
	return nil
}

var _ queue.Job = (*SweepJob)(nil)
