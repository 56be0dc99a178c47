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

// CHTradeLedger aggregates a wallet's closed trades from ClickHouse. Only
// resolved trades land in the ledger table, so no open-position filtering is
// needed here.
type CHTradeLedger struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHTradeLedger(ch *pkgch.Client, table string) *CHTradeLedger {
	if table == "" {
		table = "cascadian.closed_trades"
	}
	return &CHTradeLedger{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHTradeLedger) SetLogger(l *applogger.Logger) { s.l = l }

// Fetch aggregates the wallet's closed trades over the trailing window.
// A wallet with no rows in the window returns an empty aggregate.
func (s *CHTradeLedger) Fetch(ctx context.Context, walletAddress string, daysBack int) (*models.TradeAggregate, error) {
	start := time.Now()
	const qtpl = `
        SELECT
            count()                            AS total,
            countIf(pnl > 0)                   AS winners,
            countIf(pnl < 0)                   AS losers,
            sumIf(pnl, pnl > 0)                AS gains,
            -sumIf(pnl, pnl < 0)               AS losses,
            avgIf(pnl, pnl > 0)                AS avg_gain,
            -avgIf(pnl, pnl < 0)               AS avg_loss
        FROM %s
        WHERE wallet = ? AND resolved_at >= now() - INTERVAL ? DAY
    `
	q := fmt.Sprintf(qtpl, s.table)

	var agg models.TradeAggregate
	var avgGain, avgLoss sql.NullFloat64
	err := s.db.QueryRowContext(ctx, q, walletAddress, daysBack).Scan(
		&agg.TotalTrades,
		&agg.WinningTrades,
		&agg.LosingTrades,
		&agg.TotalGains,
		&agg.TotalLosses,
		&avgGain,
		&avgLoss,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse trade_ledger query error",
				applogger.String("table", s.table),
				applogger.String("wallet", walletAddress),
				applogger.Int("days_back", daysBack),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("aggregate closed trades: %w", err)
	}
	// avgIf over an empty set is NULL
	agg.AvgGain = avgGain.Float64
	agg.AvgLoss = avgLoss.Float64

	if s.l != nil {
		s.l.Info("clickhouse trade_ledger ok",
			applogger.String("wallet", walletAddress),
			applogger.Int("days_back", daysBack),
			applogger.Int("trades", agg.TotalTrades),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &agg, nil
}
