package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	domsvc "github.com/Scotty108/Cascadian-sub002/internal/domain/service"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// DefaultSweepConcurrency bounds the per-sweep worker fan-out.
const DefaultSweepConcurrency = 5

// SignalOrchestrator combines the momentum indicator and the conviction
// scorer into trade decisions and lands them in the signal log.
type SignalOrchestrator struct {
	indicator   domsvc.MomentumIndicator
	conviction  domsvc.ConvictionScorer
	sink        domrepo.SignalSink
	metrics     domrepo.Metrics
	l           *applogger.Logger
	timeout     time.Duration
	concurrency int
}

// OrchestratorOption configures SignalOrchestrator.
type OrchestratorOption func(*SignalOrchestrator)

// WithSweepConcurrency bounds the sweep worker pool.
func WithSweepConcurrency(n int) OrchestratorOption {
	return func(o *SignalOrchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithTimeout bounds a single market evaluation.
func WithTimeout(d time.Duration) OrchestratorOption {
	return func(o *SignalOrchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) OrchestratorOption {
	return func(o *SignalOrchestrator) { o.l = l }
}

// WithMetrics injects a domain metrics recorder.
func WithMetrics(m domrepo.Metrics) OrchestratorOption {
	return func(o *SignalOrchestrator) { o.metrics = m }
}

// NewSignalOrchestrator creates the orchestrator over the two engines and
// the signal sink.
func NewSignalOrchestrator(indicator domsvc.MomentumIndicator, conviction domsvc.ConvictionScorer, sink domrepo.SignalSink, opts ...OrchestratorOption) *SignalOrchestrator {
	o := &SignalOrchestrator{
		indicator:   indicator,
		conviction:  conviction,
		sink:        sink,
		timeout:     10 * time.Second,
		concurrency: DefaultSweepConcurrency,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SweepMarket identifies one market to evaluate.
type SweepMarket struct {
	MarketID    string
	ConditionID string
}

// Evaluate runs the indicator and both-sides conviction concurrently and
// classifies the outcome for one market. Non-positive lookbacks fall back
// to the engine defaults.
func (o *SignalOrchestrator) Evaluate(ctx context.Context, marketID, conditionID string, lookbackMinutes, lookbackHours int) (*models.SignalRecord, error) {
	if marketID == "" {
		return nil, fmt.Errorf("market id required")
	}
	lookbackMinutes = domrepo.NormalizeLookbackMinutes(lookbackMinutes)
	lookbackHours = domrepo.NormalizeLookbackHours(lookbackHours)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var (
		wg      sync.WaitGroup
		tsi     *models.TSIResult
		tsiErr  error
		yes, no *models.ConvictionResult
		convErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		tsi, tsiErr = o.indicator.Calculate(ctx, marketID, lookbackMinutes)
	}()
	go func() {
		defer wg.Done()
		yes, no, convErr = o.conviction.CalculateBothSides(ctx, marketID, conditionID, lookbackHours)
	}()
	wg.Wait()

	if tsiErr != nil {
		return nil, fmt.Errorf("indicator %s: %w", marketID, tsiErr)
	}
	if convErr != nil {
		return nil, fmt.Errorf("conviction %s: %w", marketID, convErr)
	}

	rec := classify(marketID, conditionID, tsi, yes, no)
	if o.metrics != nil {
		o.metrics.RecordSignalComputed("signal", marketID)
		o.metrics.RecordLastTSI(marketID, tsi.TSIFast)
	}
	return rec, nil
}

// classify turns indicator and conviction outputs into a decision. Enter
// when the crossover agrees with a side whose conviction clears the entry
// threshold; exit when the crossover fires against the side smart money
// backs; hold otherwise.
func classify(marketID, conditionID string, tsi *models.TSIResult, yes, no *models.ConvictionResult) *models.SignalRecord {
	rec := &models.SignalRecord{
		MarketID:    marketID,
		ConditionID: conditionID,
		Timestamp:   tsi.Timestamp,
		TSIFast:     tsi.TSIFast,
		TSISlow:     tsi.TSISlow,
		Crossover:   tsi.Crossover,
		Decision:    models.DecisionHold,
	}

	var signalSide, opposing *models.ConvictionResult
	switch tsi.Crossover {
	case models.CrossoverBullish:
		signalSide, opposing = yes, no
	case models.CrossoverBearish:
		signalSide, opposing = no, yes
	default:
		// no crossover: report the stronger side's conviction, hold
		rec.Side = yes.Side
		rec.Conviction = yes.Composite
		rec.MeetsEntry = yes.MeetsEntryThreshold
		if no.Composite > yes.Composite {
			rec.Side = no.Side
			rec.Conviction = no.Composite
			rec.MeetsEntry = no.MeetsEntryThreshold
		}
		return rec
	}

	rec.Side = signalSide.Side
	rec.Conviction = signalSide.Composite
	rec.MeetsEntry = signalSide.MeetsEntryThreshold
	switch {
	case signalSide.MeetsEntryThreshold:
		rec.Decision = models.DecisionEnter
	case opposing.MeetsEntryThreshold:
		// momentum turned against the side smart money backs
		rec.Decision = models.DecisionExit
	}
	return rec
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Records []*models.SignalRecord
	Failed  int
}

// Sweep evaluates many markets with a bounded worker pool. Each success is
// appended to the signal log; failures are logged, counted, and skipped.
func (o *SignalOrchestrator) Sweep(ctx context.Context, markets []SweepMarket) (*SweepResult, error) {
	if len(markets) == 0 {
		return &SweepResult{}, nil
	}

	sem := make(chan struct{}, o.concurrency)
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		out    = make([]*models.SignalRecord, 0, len(markets))
		failed int
	)
	for _, m := range markets {
		wg.Add(1)
		go func(m SweepMarket) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rec, err := o.Evaluate(ctx, m.MarketID, m.ConditionID, 0, 0)
			if err == nil && o.sink != nil {
				err = o.sink.Append(ctx, rec)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if o.metrics != nil {
					o.metrics.RecordBatchFailure("sweep")
				}
				if o.l != nil {
					o.l.Warn("sweep item failed",
						applogger.String("market_id", m.MarketID),
						applogger.Error(err),
					)
				}
				return
			}
			out = append(out, rec)
		}(m)
	}
	wg.Wait()

	if o.l != nil {
		o.l.Info("sweep complete",
			applogger.Int("markets", len(markets)),
			applogger.Int("signals", len(out)),
			applogger.Int("failed", failed),
		)
	}
	return &SweepResult{Records: out, Failed: failed}, nil
}
