package models

import "time"

// ElitePosition is the most recent open position of one elite wallet in a
// market. The registry guarantees at most one row per wallet.
type ElitePosition struct {
	WalletAddress string
	Side          MarketSide
	Omega         float64 // lifetime omega ratio
	Timestamp     time.Time
}

// TradeAggregate summarizes a wallet's closed trades over a lookback window,
// as returned by the closed-trade ledger. Open and unresolved trades are
// excluded upstream.
type TradeAggregate struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	TotalGains    float64
	TotalLosses   float64
	AvgGain       float64
	AvgLoss       float64
}

// OmegaCalculation is the gains/losses quality profile of a wallet over a
// fixed window of closed trades.
type OmegaCalculation struct {
	WalletAddress string
	WindowDays    int
	OmegaRatio    float64
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	TotalGains    float64
	TotalLosses   float64
	WinRate       float64
	AvgGain       float64
	AvgLoss       float64
	ProfitFactor  float64 // numerically identical to OmegaRatio, kept for API clarity
}

// OmegaDirection classifies the short-vs-long window omega trend.
type OmegaDirection string

const (
	OmegaImproving OmegaDirection = "improving"
	OmegaDeclining OmegaDirection = "declining"
	OmegaStable    OmegaDirection = "stable"
)

// OmegaMomentum compares a wallet's 30d omega against its 60d omega.
type OmegaMomentum struct {
	WalletAddress string
	Omega30d      float64
	Omega60d      float64
	OmegaMomentum float64
	Direction     OmegaDirection
}
