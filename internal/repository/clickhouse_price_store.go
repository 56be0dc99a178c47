package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	pkgch "github.com/Scotty108/Cascadian-sub002/pkg/clickhouse"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// CHPriceStore reads market mid-price history from ClickHouse.
type CHPriceStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHPriceStore(ch *pkgch.Client, table string) *CHPriceStore {
	if table == "" {
		table = "cascadian.market_prices_1m"
	}
	return &CHPriceStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

// Fetch returns the per-minute price series for one market over the trailing
// window, oldest first.
func (s *CHPriceStore) Fetch(ctx context.Context, marketID string, lookbackMinutes int) (models.PriceSeries, error) {
	start := time.Now()
	const qtpl = `
        SELECT bucket, price
        FROM %s
        WHERE market_id = ? AND bucket >= now() - INTERVAL ? MINUTE
        ORDER BY bucket ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, marketID, lookbackMinutes)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse price_history query error",
				applogger.String("table", s.table),
				applogger.String("market_id", marketID),
				applogger.Int("lookback_minutes", lookbackMinutes),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get price history: %w", err)
	}
	defer rows.Close()

	out := make(models.PriceSeries, 0, lookbackMinutes)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse price_history scan error",
					applogger.String("table", s.table),
					applogger.String("market_id", marketID),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse price_history rows error",
				applogger.String("table", s.table),
				applogger.String("market_id", marketID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse price_history ok",
			applogger.String("table", s.table),
			applogger.String("market_id", marketID),
			applogger.Int("lookback_minutes", lookbackMinutes),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}
