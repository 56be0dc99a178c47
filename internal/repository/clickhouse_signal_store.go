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

// CHSignalStore appends computed signals to the append-only signal log in
// ClickHouse. Rows are never updated in place.
type CHSignalStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSignalStore(ch *pkgch.Client, table string) *CHSignalStore {
	if table == "" {
		table = "cascadian.signal_log"
	}
	return &CHSignalStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHSignalStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSignalStore) Append(ctx context.Context, rec *models.SignalRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s
        (ts, market_id, condition_id, side, tsi_fast, tsi_slow, crossover, conviction, meets_entry, decision)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		rec.Timestamp,
		rec.MarketID,
		rec.ConditionID,
		string(rec.Side),
		rec.TSIFast,
		rec.TSISlow,
		string(rec.Crossover),
		rec.Conviction,
		boolToUInt8(rec.MeetsEntry),
		string(rec.Decision),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse signal append error",
				applogger.String("table", s.table),
				applogger.String("market_id", rec.MarketID),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("append signal: %w", err)
	}
	return nil
}

func (s *CHSignalStore) Close() error {
	return nil // Managed by pkg
}

// Recent returns the newest signal rows, newest first, for the API surface.
func (s *CHSignalStore) Recent(ctx context.Context, marketID string, limit int) ([]models.SignalRecord, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT ts, market_id, condition_id, side, tsi_fast, tsi_slow, crossover, conviction, meets_entry, decision
        FROM %s WHERE market_id = ? ORDER BY ts DESC LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, marketID, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent_signals query error",
				applogger.String("table", s.table),
				applogger.String("market_id", marketID),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get recent signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.SignalRecord, 0, limit)
	for rows.Next() {
		var (
			rec        models.SignalRecord
			side       string
			crossover  string
			decision   string
			meetsEntry uint8
		)
		if err := rows.Scan(&rec.Timestamp, &rec.MarketID, &rec.ConditionID, &side,
			&rec.TSIFast, &rec.TSISlow, &crossover, &rec.Conviction, &meetsEntry, &decision); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		rec.Side = models.MarketSide(side)
		rec.Crossover = models.CrossoverSignal(crossover)
		rec.Decision = models.Decision(decision)
		rec.MeetsEntry = meetsEntry != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse recent_signals ok",
			applogger.String("market_id", marketID),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
