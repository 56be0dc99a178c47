package wallets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
)

// IndexerEliteRegistry reads elite-wallet positions from the indexer.
type IndexerEliteRegistry struct {
	c *IndexerClient
}

func NewIndexerEliteRegistry(c *IndexerClient) *IndexerEliteRegistry {
	return &IndexerEliteRegistry{c: c}
}

type elitePositionDTO struct {
	Wallet    string  `json:"wallet"`
	Side      string  `json:"side"`
	Omega     float64 `json:"omega"`
	Timestamp int64   `json:"ts"` // unix seconds
}

type elitePositionsResp struct {
	Positions []elitePositionDTO `json:"positions"`
}

// Fetch returns the most recent open position per elite wallet in the
// condition. The indexer already deduplicates to one row per wallet and
// filters for eligibility.
func (r *IndexerEliteRegistry) Fetch(ctx context.Context, conditionID string, lookbackHours int) ([]models.ElitePosition, error) {
	var resp elitePositionsResp
	err := r.c.getJSON(ctx, "/api/positions/elite", map[string][]string{
		"condition_id":   {conditionID},
		"lookback_hours": {strconv.Itoa(lookbackHours)},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch elite positions: %w", err)
	}

	out := make([]models.ElitePosition, 0, len(resp.Positions))
	for _, p := range resp.Positions {
		side := models.MarketSide(p.Side)
		if !side.IsValid() {
			continue
		}
		out = append(out, models.ElitePosition{
			WalletAddress: p.Wallet,
			Side:          side,
			Omega:         p.Omega,
			Timestamp:     time.Unix(p.Timestamp, 0).UTC(),
		})
	}
	return out, nil
}

// IndexerCategoryRegistry maps markets to categories via the indexer.
type IndexerCategoryRegistry struct {
	c *IndexerClient
}

func NewIndexerCategoryRegistry(c *IndexerClient) *IndexerCategoryRegistry {
	return &IndexerCategoryRegistry{c: c}
}

type categoryResp struct {
	Category string `json:"category"`
	Known    bool   `json:"known"`
}

func (r *IndexerCategoryRegistry) Fetch(ctx context.Context, marketID string) (string, bool, error) {
	var resp categoryResp
	err := r.c.getJSON(ctx, "/api/markets/"+marketID+"/category", nil, &resp)
	if err != nil {
		return "", false, fmt.Errorf("fetch category: %w", err)
	}
	return resp.Category, resp.Known, nil
}

// IndexerSpecialistRegistry reads category specialists from the indexer.
type IndexerSpecialistRegistry struct {
	c *IndexerClient
}

func NewIndexerSpecialistRegistry(c *IndexerClient) *IndexerSpecialistRegistry {
	return &IndexerSpecialistRegistry{c: c}
}

type specialistsResp struct {
	Specialists map[string]float64 `json:"specialists"` // wallet -> category omega
}

func (r *IndexerSpecialistRegistry) Fetch(ctx context.Context, category string) (map[string]float64, error) {
	var resp specialistsResp
	err := r.c.getJSON(ctx, "/api/specialists", map[string][]string{
		"category": {category},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch specialists: %w", err)
	}
	if resp.Specialists == nil {
		return map[string]float64{}, nil
	}
	return resp.Specialists, nil
}

var (
	_ domrepo.EliteWalletRegistry = (*IndexerEliteRegistry)(nil)
	_ domrepo.CategoryRegistry    = (*IndexerCategoryRegistry)(nil)
	_ domrepo.SpecialistRegistry  = (*IndexerSpecialistRegistry)(nil)
)
