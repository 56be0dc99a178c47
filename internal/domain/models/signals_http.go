package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type TSIRequest struct {
	MarketID        string `query:"market_id" json:"market_id" validate:"required"`
	LookbackMinutes int    `query:"lookback_minutes" json:"lookback_minutes" default:"1440" validate:"gte=1,lte=43200"`
}

type ConvictionRequest struct {
	MarketID      string `query:"market_id" json:"market_id" validate:"required"`
	ConditionID   string `query:"condition_id" json:"condition_id" validate:"required"`
	Side          string `query:"side" json:"side" default:"YES" validate:"oneof=YES NO"`
	LookbackHours int    `query:"lookback_hours" json:"lookback_hours" default:"24" validate:"gte=1,lte=168"`
}

type OmegaRequest struct {
	Wallet   string `query:"wallet" json:"wallet" validate:"required"`
	DaysBack int    `query:"days_back" json:"days_back" default:"30" validate:"gte=1,lte=365"`
}

type SignalRequest struct {
	MarketID        string `query:"market_id" json:"market_id" validate:"required"`
	ConditionID     string `query:"condition_id" json:"condition_id" validate:"required"`
	LookbackMinutes int    `query:"lookback_minutes" json:"lookback_minutes" default:"1440" validate:"gte=1,lte=43200"`
	LookbackHours   int    `query:"lookback_hours" json:"lookback_hours" default:"24" validate:"gte=1,lte=168"`
}

type RecentSignalsRequest struct {
	MarketID string `query:"market_id" json:"market_id" validate:"required"`
	Limit    int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=500"`
}

type SweepRequest struct {
	Markets []SweepMarket `json:"markets" validate:"required,min=1,dive"`
}

type SweepMarket struct {
	MarketID    string `json:"market_id" validate:"required"`
	ConditionID string `json:"condition_id" validate:"required"`
}
