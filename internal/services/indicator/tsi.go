package indicator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	"github.com/Scotty108/Cascadian-sub002/internal/services/smoothing"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// Calculator computes the True Strength Index with crossover detection.
// Given identical inputs it returns identical outputs; all state is
// configuration.
type Calculator struct {
	cfg         models.TSIConfig
	prices      domrepo.PriceHistorySource
	metrics     domrepo.Metrics
	l           *applogger.Logger
	concurrency int
}

// Option configures Calculator.
type Option func(*Calculator)

// WithConcurrency sets the batch fan-out width.
func WithConcurrency(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Calculator) { c.l = l }
}

// WithMetrics injects a domain metrics recorder.
func WithMetrics(m domrepo.Metrics) Option {
	return func(c *Calculator) { c.metrics = m }
}

// NewCalculator creates a TSI calculator over a price history source.
func NewCalculator(prices domrepo.PriceHistorySource, cfg models.TSIConfig, opts ...Option) *Calculator {
	c := &Calculator{
		cfg:         cfg,
		prices:      prices,
		concurrency: 10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate fetches price history for the market and computes the indicator.
func (c *Calculator) Calculate(ctx context.Context, marketID string, lookbackMinutes int) (*models.TSIResult, error) {
	start := time.Now()
	lookbackMinutes = domrepo.NormalizeLookbackMinutes(lookbackMinutes)

	series, err := c.prices.Fetch(ctx, marketID, lookbackMinutes)
	if err != nil {
		return nil, fmt.Errorf("fetch price history %s: %w", marketID, err)
	}

	res, err := c.Compute(marketID, series)
	if err != nil {
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.RecordSignalComputed("tsi", marketID)
		c.metrics.RecordLastTSI(marketID, res.TSIFast)
		c.metrics.RecordLatency("tsi_calculate", time.Since(start).Seconds())
	}
	return res, nil
}

// Compute runs the indicator over an in-memory price series. The series is
// copied and sorted ascending by timestamp before differencing; duplicate
// timestamps keep their original order.
func (c *Calculator) Compute(marketID string, series models.PriceSeries) (*models.TSIResult, error) {
	sorted := make(models.PriceSeries, len(series))
	copy(sorted, series)
	sorted.SortAscending()

	momentum := diff(sorted.Prices())
	fast, slow, validPct, err := c.lines(momentum)
	if err != nil {
		return nil, err
	}

	res := &models.TSIResult{
		MarketID:     marketID,
		TSIFast:      fast,
		TSISlow:      slow,
		Crossover:    models.CrossoverNeutral,
		Momentum:     momentum,
		ValidDataPct: validPct,
	}
	if n := len(sorted); n > 0 {
		res.Timestamp = sorted[n-1].Timestamp
	}

	// Previous oscillator pair is approximated by recomputing with the most
	// recent point dropped. Neutral whenever that pair cannot be computed.
	prevFast, prevSlow, _, perr := c.lines(momentum[:len(momentum)-1])
	if perr == nil {
		switch {
		case fast > slow && prevFast <= prevSlow:
			res.Crossover = models.CrossoverBullish
		case fast < slow && prevFast >= prevSlow:
			res.Crossover = models.CrossoverBearish
		}
		if res.Crossover != models.CrossoverNeutral {
			ts := res.Timestamp
			res.CrossoverTimestamp = &ts
		}
	}
	return res, nil
}

// lines computes the fast and slow oscillator values at the latest bar.
//
// The fast line double-smooths with (slowPeriods, fastPeriods); the slow
// line uses slowPeriods for both passes, reproducing the reference behavior.
func (c *Calculator) lines(momentum []float64) (fast, slow, validPct float64, err error) {
	min := c.cfg.MinMomentumPoints()
	if len(momentum) < min {
		return 0, 0, 0, &InsufficientDataError{Required: min, Got: len(momentum)}
	}

	absMomentum := make([]float64, len(momentum))
	for i, m := range momentum {
		absMomentum[i] = math.Abs(m)
	}

	fastNum, err := smoothing.DoubleSmooth(momentum, c.cfg.FastSmoothing, c.cfg.SlowPeriods, c.cfg.FastPeriods)
	if err != nil {
		return 0, 0, 0, err
	}
	fastDen, err := smoothing.DoubleSmooth(absMomentum, c.cfg.FastSmoothing, c.cfg.SlowPeriods, c.cfg.FastPeriods)
	if err != nil {
		return 0, 0, 0, err
	}
	slowNum, err := smoothing.DoubleSmooth(momentum, c.cfg.SlowSmoothing, c.cfg.SlowPeriods, c.cfg.SlowPeriods)
	if err != nil {
		return 0, 0, 0, err
	}
	slowDen, err := smoothing.DoubleSmooth(absMomentum, c.cfg.SlowSmoothing, c.cfg.SlowPeriods, c.cfg.SlowPeriods)
	if err != nil {
		return 0, 0, 0, err
	}

	fast, err = oscillator(last(fastNum), last(fastDen))
	if err != nil {
		return 0, 0, 0, err
	}
	slow, err = oscillator(last(slowNum), last(slowDen))
	if err != nil {
		return 0, 0, 0, err
	}
	return fast, slow, smoothing.ValidDataPercentage(fastNum), nil
}

// oscillator maps a smoothed momentum / smoothed |momentum| pair into
// [-100, 100].
func oscillator(num, den float64) (float64, error) {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return 0, ErrIndeterminateTSI
	}
	return 100 * num / den, nil
}

// diff returns prices[i] - prices[i-1]; length is len(prices)-1.
func diff(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = prices[i] - prices[i-1]
	}
	return out
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}
