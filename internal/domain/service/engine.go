package service

import (
	"context"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
)

// MomentumIndicator computes the TSI oscillator for a market.
type MomentumIndicator interface {
	Calculate(ctx context.Context, marketID string, lookbackMinutes int) (*models.TSIResult, error)
	CalculateBatch(ctx context.Context, marketIDs []string, lookbackMinutes int) (map[string]*models.TSIResult, int)
}

// ConvictionScorer computes smart-money directional conviction for one
// market side.
type ConvictionScorer interface {
	Calculate(ctx context.Context, marketID, conditionID string, side models.MarketSide, lookbackHours int) (*models.ConvictionResult, error)
	CalculateBothSides(ctx context.Context, marketID, conditionID string, lookbackHours int) (yes, no *models.ConvictionResult, err error)
	CalculateBatch(ctx context.Context, inputs []ConvictionInput) (map[string]*models.ConvictionResult, int)
}

// ConvictionInput identifies one market side for batch scoring.
type ConvictionInput struct {
	MarketID    string
	ConditionID string
	Side        models.MarketSide
}

// OmegaCalculator computes wallet quality from closed trades.
// Calculate returns (nil, nil) when the wallet has no closed trades in the
// window; that is expected "no data", not a failure.
type OmegaCalculator interface {
	Calculate(ctx context.Context, walletAddress string, daysBack int) (*models.OmegaCalculation, error)
	Momentum(ctx context.Context, walletAddress string) (*models.OmegaMomentum, error)
	IsElite(ctx context.Context, walletAddress string) (bool, error)
}
