package indicator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
)

type fakePrices struct {
	series map[string]models.PriceSeries
	errFor map[string]error
}

func (f *fakePrices) Fetch(_ context.Context, marketID string, _ int) (models.PriceSeries, error) {
	if err, ok := f.errFor[marketID]; ok {
		return nil, err
	}
	return f.series[marketID], nil
}

func rampSeries(start float64, step float64, n int) models.PriceSeries {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make(models.PriceSeries, n)
	for i := 0; i < n; i++ {
		out[i] = models.PricePoint{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Price:     start + float64(i)*step,
		}
	}
	return out
}

func seriesFromPrices(prices ...float64) models.PriceSeries {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make(models.PriceSeries, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Price: p}
	}
	return out
}

func TestMonotonicIncreasingIsPositive(t *testing.T) {
	cfg := models.DefaultTSIConfig()
	c := NewCalculator(nil, cfg)

	n := cfg.MinMomentumPoints() + 6 // momentum length min+5
	res, err := c.Compute("mkt", rampSeries(0.10, 0.01, n))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TSIFast <= 0 {
		t.Fatalf("expected positive fast line, got %v", res.TSIFast)
	}
	// a linear ramp has constant momentum, so the oscillator saturates
	if math.Abs(res.TSIFast-100) > 1e-9 || math.Abs(res.TSISlow-100) > 1e-9 {
		t.Fatalf("expected saturated lines, got fast=%v slow=%v", res.TSIFast, res.TSISlow)
	}
	if res.Crossover != models.CrossoverNeutral {
		t.Fatalf("expected neutral crossover on a steady ramp, got %s", res.Crossover)
	}
}

func TestMonotonicDecreasingIsNegative(t *testing.T) {
	cfg := models.DefaultTSIConfig()
	c := NewCalculator(nil, cfg)

	n := cfg.MinMomentumPoints() + 6
	res, err := c.Compute("mkt", rampSeries(0.90, -0.01, n))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TSIFast >= 0 {
		t.Fatalf("expected negative fast line, got %v", res.TSIFast)
	}
}

func TestBounds(t *testing.T) {
	cfg := models.TSIConfig{FastPeriods: 3, FastSmoothing: models.SmoothRMA, SlowPeriods: 5, SlowSmoothing: models.SmoothRMA}
	c := NewCalculator(nil, cfg)

	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 0.5 + 0.3*math.Sin(float64(i)*0.7)
	}
	res, err := c.Compute("mkt", seriesFromPrices(prices...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range []float64{res.TSIFast, res.TSISlow} {
		if v < -100 || v > 100 {
			t.Fatalf("oscillator out of bounds: %v", v)
		}
	}
}

func TestInsufficientData(t *testing.T) {
	cfg := models.DefaultTSIConfig()
	c := NewCalculator(nil, cfg)

	_, err := c.Compute("mkt", rampSeries(0.10, 0.01, cfg.MinMomentumPoints())) // momentum = min-1
	var ide *InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ide.Required != cfg.MinMomentumPoints() {
		t.Fatalf("expected required=%d, got %d", cfg.MinMomentumPoints(), ide.Required)
	}
}

func TestIndeterminateOnFlatPrices(t *testing.T) {
	cfg := models.TSIConfig{FastPeriods: 2, FastSmoothing: models.SmoothRMA, SlowPeriods: 3, SlowSmoothing: models.SmoothRMA}
	c := NewCalculator(nil, cfg)

	_, err := c.Compute("mkt", rampSeries(0.50, 0, 12))
	if !errors.Is(err, ErrIndeterminateTSI) {
		t.Fatalf("expected ErrIndeterminateTSI, got %v", err)
	}
}

func TestBullishCrossover(t *testing.T) {
	cfg := models.TSIConfig{FastPeriods: 1, FastSmoothing: models.SmoothRMA, SlowPeriods: 2, SlowSmoothing: models.SmoothRMA}
	c := NewCalculator(nil, cfg)

	// three down bars then a strong reversal bar
	res, err := c.Compute("mkt", seriesFromPrices(0.9, 0.8, 0.7, 0.6, 0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Crossover != models.CrossoverBullish {
		t.Fatalf("expected bullish crossover, got %s (fast=%v slow=%v)", res.Crossover, res.TSIFast, res.TSISlow)
	}
	if res.CrossoverTimestamp == nil || !res.CrossoverTimestamp.Equal(res.Timestamp) {
		t.Fatalf("expected crossover timestamp at latest bar")
	}
}

func TestBearishCrossover(t *testing.T) {
	cfg := models.TSIConfig{FastPeriods: 1, FastSmoothing: models.SmoothRMA, SlowPeriods: 2, SlowSmoothing: models.SmoothRMA}
	c := NewCalculator(nil, cfg)

	res, err := c.Compute("mkt", seriesFromPrices(0.1, 0.2, 0.3, 0.4, 0.1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Crossover != models.CrossoverBearish {
		t.Fatalf("expected bearish crossover, got %s", res.Crossover)
	}
}

func TestNeutralWhenPreviousPairUncomputable(t *testing.T) {
	cfg := models.TSIConfig{FastPeriods: 1, FastSmoothing: models.SmoothRMA, SlowPeriods: 2, SlowSmoothing: models.SmoothRMA}
	c := NewCalculator(nil, cfg)

	// momentum length equals the minimum, so dropping a point starves the
	// previous-pair recompute
	res, err := c.Compute("mkt", seriesFromPrices(0.9, 0.8, 0.7, 0.9))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Crossover != models.CrossoverNeutral {
		t.Fatalf("expected neutral, got %s", res.Crossover)
	}
	if res.CrossoverTimestamp != nil {
		t.Fatalf("expected no crossover timestamp")
	}
}

func TestComputeSortsByTimestamp(t *testing.T) {
	cfg := models.DefaultTSIConfig()
	c := NewCalculator(nil, cfg)

	sorted := rampSeries(0.10, 0.01, cfg.MinMomentumPoints()+8)
	shuffled := make(models.PriceSeries, len(sorted))
	copy(shuffled, sorted)
	for i := 0; i < len(shuffled)-1; i += 2 {
		shuffled[i], shuffled[i+1] = shuffled[i+1], shuffled[i]
	}

	a, err := c.Compute("mkt", sorted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := c.Compute("mkt", shuffled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.TSIFast != b.TSIFast || a.TSISlow != b.TSISlow {
		t.Fatalf("sorting not applied: %v/%v vs %v/%v", a.TSIFast, a.TSISlow, b.TSIFast, b.TSISlow)
	}
}

func TestCalculateBatchIsolation(t *testing.T) {
	cfg := models.DefaultTSIConfig()
	src := &fakePrices{
		series: map[string]models.PriceSeries{},
		errFor: map[string]error{"bad": fmt.Errorf("indexer down")},
	}
	ids := []string{"bad"}
	for i := 0; i < 9; i++ {
		id := fmt.Sprintf("mkt-%d", i)
		src.series[id] = rampSeries(0.10, 0.01, cfg.MinMomentumPoints()+10)
		ids = append(ids, id)
	}
	c := NewCalculator(src, cfg, WithConcurrency(4))

	results, failed := c.CalculateBatch(context.Background(), ids, 60)
	if len(results) != 9 {
		t.Fatalf("expected 9 results, got %d", len(results))
	}
	if failed != 1 {
		t.Fatalf("expected 1 failure, got %d", failed)
	}
	if _, ok := results["bad"]; ok {
		t.Fatalf("failed market must be omitted from results")
	}
}
