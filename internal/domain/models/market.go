package models

import (
	"sort"
	"time"
)

// MarketSide is one outcome of a binary market.
type MarketSide string

const (
	SideYes MarketSide = "YES"
	SideNo  MarketSide = "NO"
)

// Opposite returns the other side of a binary market.
func (s MarketSide) Opposite() MarketSide {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// IsValid reports whether s is YES or NO.
func (s MarketSide) IsValid() bool {
	return s == SideYes || s == SideNo
}

// PricePoint is one observation of a binary-market mid-price.
// Price is expected in (0,1); the engine does not clamp.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// PriceSeries is an ordered sequence of price observations for one market.
type PriceSeries []PricePoint

// SortAscending sorts the series by timestamp, oldest first. The sort is
// stable: duplicate timestamps keep their original relative order.
func (ps PriceSeries) SortAscending() {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].Timestamp.Before(ps[j].Timestamp)
	})
}

// Prices returns the raw price values in series order.
func (ps PriceSeries) Prices() []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p.Price
	}
	return out
}

// MarketTick is a realtime mid-price observation from the market stream.
type MarketTick struct {
	MarketID  string
	Timestamp int64 // unix seconds
	Price     float64
	Size      float64
}
