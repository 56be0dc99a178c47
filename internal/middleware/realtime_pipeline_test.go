package middleware

import (
	"context"
	"testing"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordSignalComputed(string, string) {}
func (nopMetrics) RecordBatchFailure(string)           {}
func (nopMetrics) RecordError(string)                  {}
func (nopMetrics) RecordMessageSent(string, string)    {}
func (nopMetrics) RecordLastPrice(string, float64)     {}
func (nopMetrics) RecordLastTSI(string, float64)       {}
func (nopMetrics) RecordLatency(string, float64)       {}

type countProc struct{ n int }

func (p *countProc) Process(_ context.Context, _ *models.MarketTick) error {
	p.n++
	return nil
}

func TestPipelineRejectsOutOfRangePrices(t *testing.T) {
	proc := &countProc{}
	p := NewRealtimePipeline(proc, nopMetrics{})

	bad := []*models.MarketTick{
		nil,
		{MarketID: "", Timestamp: 1, Price: 0.5},
		{MarketID: "m", Timestamp: 0, Price: 0.5},
		{MarketID: "m", Timestamp: 1, Price: 0},
		{MarketID: "m", Timestamp: 1, Price: 1},
		{MarketID: "m", Timestamp: 1, Price: 1.2},
		{MarketID: "m", Timestamp: 1, Price: 0.5, Size: -1},
	}
	for _, tick := range bad {
		if err := p.Process(context.Background(), tick); err == nil {
			t.Fatalf("expected rejection for %+v", tick)
		}
	}
	if proc.n != 0 {
		t.Fatalf("invalid ticks must not reach downstream, got %d", proc.n)
	}

	ok := &models.MarketTick{MarketID: "m", Timestamp: 1, Price: 0.62, Size: 10}
	if err := p.Process(context.Background(), ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.n != 1 {
		t.Fatalf("valid tick must be forwarded")
	}
}
