package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	domsvc "github.com/Scotty108/Cascadian-sub002/internal/domain/service"
)

type fakeIndicator struct {
	byMarket map[string]*models.TSIResult
	errFor   map[string]error

	mu           sync.Mutex
	lastLookback int
}

func (f *fakeIndicator) Calculate(_ context.Context, marketID string, lookbackMinutes int) (*models.TSIResult, error) {
	f.mu.Lock()
	f.lastLookback = lookbackMinutes
	f.mu.Unlock()
	if err, ok := f.errFor[marketID]; ok {
		return nil, err
	}
	res, ok := f.byMarket[marketID]
	if !ok {
		return nil, fmt.Errorf("unknown market %s", marketID)
	}
	return res, nil
}

func (f *fakeIndicator) CalculateBatch(ctx context.Context, marketIDs []string, lookbackMinutes int) (map[string]*models.TSIResult, int) {
	out := make(map[string]*models.TSIResult)
	failed := 0
	for _, id := range marketIDs {
		res, err := f.Calculate(ctx, id, lookbackMinutes)
		if err != nil {
			failed++
			continue
		}
		out[id] = res
	}
	return out, failed
}

type fakeConviction struct {
	yes, no *models.ConvictionResult

	mu           sync.Mutex
	lastLookback int
}

func (f *fakeConviction) Calculate(_ context.Context, _, _ string, side models.MarketSide, _ int) (*models.ConvictionResult, error) {
	if side == models.SideYes {
		return f.yes, nil
	}
	return f.no, nil
}

func (f *fakeConviction) CalculateBothSides(_ context.Context, _, _ string, lookbackHours int) (*models.ConvictionResult, *models.ConvictionResult, error) {
	f.mu.Lock()
	f.lastLookback = lookbackHours
	f.mu.Unlock()
	return f.yes, f.no, nil
}

func (f *fakeConviction) CalculateBatch(_ context.Context, _ []domsvc.ConvictionInput) (map[string]*models.ConvictionResult, int) {
	return nil, 0
}

type captureSink struct {
	mu   sync.Mutex
	recs []*models.SignalRecord
	err  error
}

func (s *captureSink) Append(_ context.Context, rec *models.SignalRecord) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *captureSink) Close() error { return nil }

func tsiResult(crossover models.CrossoverSignal, fast, slow float64) *models.TSIResult {
	return &models.TSIResult{
		MarketID:  "mkt",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TSIFast:   fast,
		TSISlow:   slow,
		Crossover: crossover,
	}
}

func convictionResult(side models.MarketSide, composite float64, meets bool) *models.ConvictionResult {
	return &models.ConvictionResult{
		MarketID:            "mkt",
		Side:                side,
		Composite:           composite,
		MeetsEntryThreshold: meets,
	}
}

func TestEvaluateEnterOnAlignedCrossover(t *testing.T) {
	ind := &fakeIndicator{byMarket: map[string]*models.TSIResult{
		"mkt": tsiResult(models.CrossoverBullish, 42, 10),
	}}
	conv := &fakeConviction{
		yes: convictionResult(models.SideYes, 0.93, true),
		no:  convictionResult(models.SideNo, 0.41, false),
	}
	o := NewSignalOrchestrator(ind, conv, nil)

	rec, err := o.Evaluate(context.Background(), "mkt", "cond", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Decision != models.DecisionEnter {
		t.Fatalf("expected enter, got %s", rec.Decision)
	}
	if rec.Side != models.SideYes || rec.Conviction != 0.93 || !rec.MeetsEntry {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestEvaluateExitOnOpposingCrossover(t *testing.T) {
	// bearish momentum while smart money backs YES
	ind := &fakeIndicator{byMarket: map[string]*models.TSIResult{
		"mkt": tsiResult(models.CrossoverBearish, -30, -5),
	}}
	conv := &fakeConviction{
		yes: convictionResult(models.SideYes, 0.95, true),
		no:  convictionResult(models.SideNo, 0.35, false),
	}
	o := NewSignalOrchestrator(ind, conv, nil)

	rec, err := o.Evaluate(context.Background(), "mkt", "cond", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Decision != models.DecisionExit {
		t.Fatalf("expected exit, got %s", rec.Decision)
	}
	if rec.Side != models.SideNo {
		t.Fatalf("record must carry the crossover side, got %s", rec.Side)
	}
}

func TestEvaluateHoldWithoutCrossover(t *testing.T) {
	ind := &fakeIndicator{byMarket: map[string]*models.TSIResult{
		"mkt": tsiResult(models.CrossoverNeutral, 12, 8),
	}}
	conv := &fakeConviction{
		yes: convictionResult(models.SideYes, 0.55, false),
		no:  convictionResult(models.SideNo, 0.72, false),
	}
	o := NewSignalOrchestrator(ind, conv, nil)

	rec, err := o.Evaluate(context.Background(), "mkt", "cond", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Decision != models.DecisionHold {
		t.Fatalf("expected hold, got %s", rec.Decision)
	}
	// the stronger side is reported
	if rec.Side != models.SideNo || rec.Conviction != 0.72 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestEvaluateHoldWhenNeitherSideQualifies(t *testing.T) {
	ind := &fakeIndicator{byMarket: map[string]*models.TSIResult{
		"mkt": tsiResult(models.CrossoverBullish, 20, 5),
	}}
	conv := &fakeConviction{
		yes: convictionResult(models.SideYes, 0.6, false),
		no:  convictionResult(models.SideNo, 0.4, false),
	}
	o := NewSignalOrchestrator(ind, conv, nil)

	rec, err := o.Evaluate(context.Background(), "mkt", "cond", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Decision != models.DecisionHold {
		t.Fatalf("expected hold, got %s", rec.Decision)
	}
}

func TestEvaluateForwardsLookbacks(t *testing.T) {
	ind := &fakeIndicator{byMarket: map[string]*models.TSIResult{
		"mkt": tsiResult(models.CrossoverNeutral, 3, 2),
	}}
	conv := &fakeConviction{
		yes: convictionResult(models.SideYes, 0.5, false),
		no:  convictionResult(models.SideNo, 0.5, false),
	}
	o := NewSignalOrchestrator(ind, conv, nil)

	if _, err := o.Evaluate(context.Background(), "mkt", "cond", 720, 48); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ind.lastLookback != 720 {
		t.Fatalf("indicator lookback: expected 720, got %d", ind.lastLookback)
	}
	if conv.lastLookback != 48 {
		t.Fatalf("conviction lookback: expected 48, got %d", conv.lastLookback)
	}

	// non-positive lookbacks fall back to the defaults
	if _, err := o.Evaluate(context.Background(), "mkt", "cond", 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ind.lastLookback != domrepo.DefaultLookbackMinutes {
		t.Fatalf("indicator lookback: expected default %d, got %d", domrepo.DefaultLookbackMinutes, ind.lastLookback)
	}
	if conv.lastLookback != domrepo.DefaultLookbackHours {
		t.Fatalf("conviction lookback: expected default %d, got %d", domrepo.DefaultLookbackHours, conv.lastLookback)
	}
}

func TestSweepIsolationAndSink(t *testing.T) {
	ind := &fakeIndicator{
		byMarket: map[string]*models.TSIResult{},
		errFor:   map[string]error{"mkt-bad": fmt.Errorf("no price history")},
	}
	markets := []SweepMarket{{MarketID: "mkt-bad", ConditionID: "cond-bad"}}
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("mkt-%d", i)
		ind.byMarket[id] = tsiResult(models.CrossoverBullish, 30, 10)
		markets = append(markets, SweepMarket{MarketID: id, ConditionID: "cond-" + id})
	}
	conv := &fakeConviction{
		yes: convictionResult(models.SideYes, 0.92, true),
		no:  convictionResult(models.SideNo, 0.3, false),
	}
	sink := &captureSink{}
	o := NewSignalOrchestrator(ind, conv, sink, WithSweepConcurrency(2))

	res, err := o.Sweep(context.Background(), markets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(res.Records))
	}
	if res.Failed != 1 {
		t.Fatalf("expected 1 failure, got %d", res.Failed)
	}
	if len(sink.recs) != 6 {
		t.Fatalf("expected 6 appended records, got %d", len(sink.recs))
	}
}

func TestSweepSinkFailureCounts(t *testing.T) {
	ind := &fakeIndicator{byMarket: map[string]*models.TSIResult{
		"mkt-0": tsiResult(models.CrossoverNeutral, 1, 1),
	}}
	conv := &fakeConviction{
		yes: convictionResult(models.SideYes, 0.5, false),
		no:  convictionResult(models.SideNo, 0.5, false),
	}
	sink := &captureSink{err: fmt.Errorf("kafka broker unavailable")}
	o := NewSignalOrchestrator(ind, conv, sink)

	res, err := o.Sweep(context.Background(), []SweepMarket{{MarketID: "mkt-0"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed != 1 || len(res.Records) != 0 {
		t.Fatalf("sink failure must count as a failed item: %+v", res)
	}
}
