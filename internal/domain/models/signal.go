package models

import "time"

// SmoothingMethod selects a moving-average recurrence.
type SmoothingMethod string

const (
	SmoothSMA SmoothingMethod = "sma"
	SmoothEMA SmoothingMethod = "ema"
	SmoothRMA SmoothingMethod = "rma" // Wilder running average
)

// TSIConfig holds the smoothing windows and methods for the TSI lines.
type TSIConfig struct {
	FastPeriods   int
	FastSmoothing SmoothingMethod
	SlowPeriods   int
	SlowSmoothing SmoothingMethod
}

// DefaultTSIConfig is the Austin configuration: fast 9/RMA, slow 21/RMA.
func DefaultTSIConfig() TSIConfig {
	return TSIConfig{
		FastPeriods:   9,
		FastSmoothing: SmoothRMA,
		SlowPeriods:   21,
		SlowSmoothing: SmoothRMA,
	}
}

// MinMomentumPoints is the minimum momentum-series length the indicator needs.
func (c TSIConfig) MinMomentumPoints() int {
	return c.SlowPeriods + c.FastPeriods
}

// CrossoverSignal classifies the fast/slow line transition at the latest bar.
type CrossoverSignal string

const (
	CrossoverBullish CrossoverSignal = "bullish"
	CrossoverBearish CrossoverSignal = "bearish"
	CrossoverNeutral CrossoverSignal = "neutral"
)

// TSIResult is the momentum indicator output for one market.
type TSIResult struct {
	MarketID           string
	Timestamp          time.Time
	TSIFast            float64
	TSISlow            float64
	Crossover          CrossoverSignal
	CrossoverTimestamp *time.Time // set only when a crossover fired
	Momentum           []float64  // raw price differences, for diagnostics
	ValidDataPct       float64
}

// ConvictionResult is the smart-money consensus for one market side.
// Component scores and the composite are all in [0,1]; YES and NO are
// scored independently and need not sum to 1.
type ConvictionResult struct {
	MarketID            string
	ConditionID         string
	Side                MarketSide
	Timestamp           time.Time
	EliteConsensus      float64
	SpecialistConsensus float64
	OmegaWeighted       float64
	Composite           float64
	MeetsEntryThreshold bool

	EliteTotal       int
	EliteOnSide      int
	SpecialistTotal  int
	SpecialistOnSide int
	TotalOmegaWeight float64
}

// Decision is the orchestrator's trade classification.
type Decision string

const (
	DecisionEnter Decision = "enter"
	DecisionExit  Decision = "exit"
	DecisionHold  Decision = "hold"
)

// SignalRecord is one row of the append-only signal log. Records are
// computed fresh per sweep and never updated in place.
type SignalRecord struct {
	MarketID    string           `json:"market_id"`
	ConditionID string           `json:"condition_id"`
	Side        MarketSide       `json:"side"`
	Timestamp   time.Time        `json:"ts"`
	TSIFast     float64          `json:"tsi_fast"`
	TSISlow     float64          `json:"tsi_slow"`
	Crossover   CrossoverSignal  `json:"crossover"`
	Conviction  float64          `json:"conviction"`
	MeetsEntry  bool             `json:"meets_entry"`
	Decision    Decision         `json:"decision"`
}
