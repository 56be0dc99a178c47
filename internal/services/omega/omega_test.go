package omega

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
)

type fakeLedger struct {
	byWindow map[int]*models.TradeAggregate // keyed by daysBack
	err      error
}

func (f *fakeLedger) Fetch(_ context.Context, _ string, daysBack int) (*models.TradeAggregate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byWindow[daysBack], nil
}

func TestCalculateProfile(t *testing.T) {
	c := NewCalculator(&fakeLedger{byWindow: map[int]*models.TradeAggregate{
		30: {
			TotalTrades:   20,
			WinningTrades: 14,
			LosingTrades:  6,
			TotalGains:    700,
			TotalLosses:   200,
			AvgGain:       50,
			AvgLoss:       33.33,
		},
	}})

	calc, err := c.Calculate(context.Background(), "0xabc", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calc.OmegaRatio != 3.5 {
		t.Fatalf("omega: got %v want 3.5", calc.OmegaRatio)
	}
	if calc.ProfitFactor != calc.OmegaRatio {
		t.Fatalf("profit factor must equal omega ratio")
	}
	if calc.WinRate != 0.7 {
		t.Fatalf("win rate: got %v want 0.7", calc.WinRate)
	}
	if calc.WindowDays != 30 || calc.TotalTrades != 20 {
		t.Fatalf("unexpected profile: %+v", calc)
	}
}

func TestRatioCapOnZeroLosses(t *testing.T) {
	c := NewCalculator(&fakeLedger{byWindow: map[int]*models.TradeAggregate{
		30: {TotalTrades: 12, WinningTrades: 12, TotalGains: 900, TotalLosses: 0, AvgGain: 75},
	}})

	calc, err := c.Calculate(context.Background(), "0xabc", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calc.OmegaRatio != RatioCap {
		t.Fatalf("expected capped ratio %v, got %v", RatioCap, calc.OmegaRatio)
	}
}

func TestRatioZeroActivity(t *testing.T) {
	if got := Ratio(0, 0); got != 0 {
		t.Fatalf("zero gains and losses must yield 0, got %v", got)
	}
}

func TestNoDataIsNilNil(t *testing.T) {
	c := NewCalculator(&fakeLedger{byWindow: map[int]*models.TradeAggregate{}})

	calc, err := c.Calculate(context.Background(), "0xnew", 30)
	if err != nil {
		t.Fatalf("no data must not be an error: %v", err)
	}
	if calc != nil {
		t.Fatalf("expected nil calculation, got %+v", calc)
	}

	// an empty aggregate row is the same as no row
	c = NewCalculator(&fakeLedger{byWindow: map[int]*models.TradeAggregate{30: {}}})
	calc, err = c.Calculate(context.Background(), "0xnew", 30)
	if err != nil || calc != nil {
		t.Fatalf("empty aggregate: calc=%v err=%v", calc, err)
	}
}

func TestLedgerErrorPropagates(t *testing.T) {
	c := NewCalculator(&fakeLedger{err: fmt.Errorf("clickhouse unavailable")})
	if _, err := c.Calculate(context.Background(), "0xabc", 30); err == nil {
		t.Fatalf("expected error")
	}
}

func momentumLedger(gains30, losses30, gains60, losses60 float64) *fakeLedger {
	return &fakeLedger{byWindow: map[int]*models.TradeAggregate{
		30: {TotalTrades: 10, WinningTrades: 6, LosingTrades: 4, TotalGains: gains30, TotalLosses: losses30},
		60: {TotalTrades: 25, WinningTrades: 14, LosingTrades: 11, TotalGains: gains60, TotalLosses: losses60},
	}}
}

func TestMomentumClassification(t *testing.T) {
	cases := []struct {
		name      string
		ledger    *fakeLedger
		change    float64
		direction models.OmegaDirection
	}{
		// o30=2.30, o60=2.00 -> +15%
		{"improving", momentumLedger(230, 100, 200, 100), 0.15, models.OmegaImproving},
		// o30=1.76, o60=2.00 -> -12%
		{"declining", momentumLedger(176, 100, 200, 100), -0.12, models.OmegaDeclining},
		// o30=2.04, o60=2.00 -> +2%
		{"stable", momentumLedger(204, 100, 200, 100), 0.02, models.OmegaStable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCalculator(tc.ledger)
			m, err := c.Momentum(context.Background(), "0xabc")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(m.OmegaMomentum-tc.change) > 1e-9 {
				t.Fatalf("change: got %v want %v", m.OmegaMomentum, tc.change)
			}
			if m.Direction != tc.direction {
				t.Fatalf("direction: got %s want %s", m.Direction, tc.direction)
			}
		})
	}
}

func TestMomentumNoLongWindowData(t *testing.T) {
	c := NewCalculator(&fakeLedger{byWindow: map[int]*models.TradeAggregate{}})
	m, err := c.Momentum(context.Background(), "0xnew")
	if err != nil || m != nil {
		t.Fatalf("expected (nil, nil), got %v / %v", m, err)
	}
}

func TestMomentumZeroLongOmega(t *testing.T) {
	// long window has trades but all losing: o60 = 0, change defined as 0
	c := NewCalculator(&fakeLedger{byWindow: map[int]*models.TradeAggregate{
		30: {TotalTrades: 5, LosingTrades: 5, TotalGains: 0, TotalLosses: 50},
		60: {TotalTrades: 9, LosingTrades: 9, TotalGains: 0, TotalLosses: 90},
	}})
	m, err := c.Momentum(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.OmegaMomentum != 0 || m.Direction != models.OmegaStable {
		t.Fatalf("expected stable zero change, got %+v", m)
	}
}

func TestIsElite(t *testing.T) {
	cases := []struct {
		name   string
		agg    *models.TradeAggregate
		expect bool
	}{
		{"qualifies", &models.TradeAggregate{TotalTrades: 15, WinningTrades: 10, TotalGains: 500, TotalLosses: 200}, true},
		{"omega too low", &models.TradeAggregate{TotalTrades: 15, WinningTrades: 8, TotalGains: 300, TotalLosses: 200}, false},
		{"too few trades", &models.TradeAggregate{TotalTrades: 9, WinningTrades: 8, TotalGains: 500, TotalLosses: 100}, false},
		{"no history", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := &fakeLedger{byWindow: map[int]*models.TradeAggregate{}}
			if tc.agg != nil {
				ledger.byWindow[30] = tc.agg
			}
			c := NewCalculator(ledger)
			got, err := c.IsElite(context.Background(), "0xabc")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expect {
				t.Fatalf("got %v want %v", got, tc.expect)
			}
		})
	}
}
