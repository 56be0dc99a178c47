package repository

import (
	"context"
	"errors"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
)

// ErrNoActiveConfig is returned when the configuration store has no
// smoothing configuration marked active. The signal pipeline cannot run
// without one.
var ErrNoActiveConfig = errors.New("no active smoothing configuration")

// PriceHistorySource provides read-only access to market mid-price history.
type PriceHistorySource interface {
	Fetch(ctx context.Context, marketID string, lookbackMinutes int) (models.PriceSeries, error)
}

// EliteWalletRegistry returns the most recent open position per elite wallet
// within the lookback window. At most one row per wallet.
type EliteWalletRegistry interface {
	Fetch(ctx context.Context, conditionID string, lookbackHours int) ([]models.ElitePosition, error)
}

// CategoryRegistry maps a market to its category, if any.
type CategoryRegistry interface {
	Fetch(ctx context.Context, marketID string) (string, bool, error)
}

// SpecialistRegistry maps wallet address to category-scoped omega for
// wallets flagged as specialists in the category.
type SpecialistRegistry interface {
	Fetch(ctx context.Context, category string) (map[string]float64, error)
}

// ClosedTradeLedger aggregates a wallet's closed trades over a lookback
// window in days.
type ClosedTradeLedger interface {
	Fetch(ctx context.Context, walletAddress string, daysBack int) (*models.TradeAggregate, error)
}

// IndicatorConfigStore fetches the active smoothing configuration.
type IndicatorConfigStore interface {
	FetchActive(ctx context.Context) (models.TSIConfig, error)
}
