package usecase

import (
	"context"
	"fmt"

	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
	"github.com/Scotty108/Cascadian-sub002/pkg/queue"
)

// LogAggregateJobType is the queue message type for aggregated log batches.
const LogAggregateJobType = "log.aggregate"

// LogFlushJob drains aggregated log batches published by the logger's
// collector and writes one structured line per unique entry.
type LogFlushJob struct {
	l *applogger.Logger
}

func NewLogFlushJob(l *applogger.Logger) *LogFlushJob {
	return &LogFlushJob{l: l}
}

func (j *LogFlushJob) Name() string { return "log-flush" }
func (j *LogFlushJob) Type() string { return LogAggregateJobType }

func (j *LogFlushJob) Handle(_ context.Context, payload interface{}) error {
	entries, err := queue.ParsePayload[[]applogger.AggregatedLogEntry](payload)
	if err != nil {
		return fmt.Errorf("parse log batch: %w", err)
	}
	for _, e := range *entries {
		j.l.Info("aggregated log",
			applogger.String("level", e.Level),
			applogger.String("message", e.Message),
			applogger.String("caller", e.Caller),
			applogger.Int("count", e.Count),
		)
	}
	return nil
}

var _ queue.Job = (*LogFlushJob)(nil)
