package omega

import (
	"context"
	"fmt"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	"github.com/Scotty108/Cascadian-sub002/internal/services/conviction"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// RatioCap bounds the omega ratio for wallets with zero losses, where the
// raw ratio is undefined.
const RatioCap = 100.0

// Momentum thresholds on the relative 30d-vs-60d change.
const (
	ImprovingAbove = 0.10
	DecliningBelow = -0.10
)

// Calculator derives wallet quality from the closed-trade ledger.
type Calculator struct {
	ledger  domrepo.ClosedTradeLedger
	metrics domrepo.Metrics
	l       *applogger.Logger
}

// Option configures Calculator.
type Option func(*Calculator)

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Calculator) { c.l = l }
}

// WithMetrics injects a domain metrics recorder.
func WithMetrics(m domrepo.Metrics) Option {
	return func(c *Calculator) { c.metrics = m }
}

// NewCalculator creates an omega calculator over the closed-trade ledger.
func NewCalculator(ledger domrepo.ClosedTradeLedger, opts ...Option) *Calculator {
	c := &Calculator{ledger: ledger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate computes the omega profile of a wallet over the trailing window.
// A wallet with no closed trades in the window returns (nil, nil): absent
// data, not a failure.
func (c *Calculator) Calculate(ctx context.Context, walletAddress string, daysBack int) (*models.OmegaCalculation, error) {
	if daysBack <= 0 {
		daysBack = domrepo.DefaultOmegaDays
	}
	start := time.Now()

	agg, err := c.ledger.Fetch(ctx, walletAddress, daysBack)
	if err != nil {
		return nil, fmt.Errorf("fetch closed trades %s: %w", walletAddress, err)
	}
	if agg == nil || agg.TotalTrades == 0 {
		return nil, nil
	}

	calc := &models.OmegaCalculation{
		WalletAddress: walletAddress,
		WindowDays:    daysBack,
		OmegaRatio:    Ratio(agg.TotalGains, agg.TotalLosses),
		TotalTrades:   agg.TotalTrades,
		WinningTrades: agg.WinningTrades,
		LosingTrades:  agg.LosingTrades,
		TotalGains:    agg.TotalGains,
		TotalLosses:   agg.TotalLosses,
		WinRate:       float64(agg.WinningTrades) / float64(agg.TotalTrades),
		AvgGain:       agg.AvgGain,
		AvgLoss:       agg.AvgLoss,
	}
	calc.ProfitFactor = calc.OmegaRatio

	if c.metrics != nil {
		c.metrics.RecordSignalComputed("omega", walletAddress)
		c.metrics.RecordLatency("omega_calculate", time.Since(start).Seconds())
	}
	return calc, nil
}

// Ratio is total gains over total losses, capped when the wallet has never
// lost.
func Ratio(gains, losses float64) float64 {
	if losses == 0 {
		if gains == 0 {
			return 0
		}
		return RatioCap
	}
	return gains / losses
}

// Momentum compares the wallet's 30d omega against its 60d omega and
// classifies the trend. A wallet with no closed trades in the long window
// returns (nil, nil).
func (c *Calculator) Momentum(ctx context.Context, walletAddress string) (*models.OmegaMomentum, error) {
	long, err := c.Calculate(ctx, walletAddress, domrepo.OmegaMomentumLongDays)
	if err != nil {
		return nil, err
	}
	if long == nil {
		return nil, nil
	}
	short, err := c.Calculate(ctx, walletAddress, domrepo.DefaultOmegaDays)
	if err != nil {
		return nil, err
	}

	var o30 float64
	if short != nil {
		o30 = short.OmegaRatio
	}
	o60 := long.OmegaRatio

	var change float64
	if o60 != 0 {
		change = (o30 - o60) / o60
	}

	direction := models.OmegaStable
	switch {
	case change > ImprovingAbove:
		direction = models.OmegaImproving
	case change < DecliningBelow:
		direction = models.OmegaDeclining
	}

	return &models.OmegaMomentum{
		WalletAddress: walletAddress,
		Omega30d:      o30,
		Omega60d:      o60,
		OmegaMomentum: change,
		Direction:     direction,
	}, nil
}

// IsElite reports whether the wallet clears the eligibility bar used by the
// conviction scorer: omega above the threshold with enough resolved trades.
// A wallet with no trade history is not elite.
func (c *Calculator) IsElite(ctx context.Context, walletAddress string) (bool, error) {
	calc, err := c.Calculate(ctx, walletAddress, domrepo.DefaultOmegaDays)
	if err != nil {
		return false, err
	}
	if calc == nil {
		return false, nil
	}
	return calc.OmegaRatio > conviction.EliteOmegaThreshold &&
		calc.TotalTrades >= conviction.EliteMinResolved, nil
}
