package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	pkgch "github.com/Scotty108/Cascadian-sub002/pkg/clickhouse"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// CHConfigStore fetches the active smoothing configuration from ClickHouse.
// Exactly one row is expected to be marked active; the newest wins if the
// table ever holds more.
type CHConfigStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHConfigStore(ch *pkgch.Client, table string) *CHConfigStore {
	if table == "" {
		table = "cascadian.indicator_config"
	}
	return &CHConfigStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHConfigStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHConfigStore) FetchActive(ctx context.Context) (models.TSIConfig, error) {
	const qtpl = `
        SELECT fast_periods, fast_smoothing, slow_periods, slow_smoothing
        FROM %s
        WHERE active = 1
        ORDER BY updated_at DESC
        LIMIT 1
    `
	q := fmt.Sprintf(qtpl, s.table)

	var (
		cfg        models.TSIConfig
		fastMethod string
		slowMethod string
	)
	err := s.db.QueryRowContext(ctx, q).Scan(&cfg.FastPeriods, &fastMethod, &cfg.SlowPeriods, &slowMethod)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TSIConfig{}, domrepo.ErrNoActiveConfig
	}
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse indicator_config query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return models.TSIConfig{}, fmt.Errorf("fetch active config: %w", err)
	}
	cfg.FastSmoothing = models.SmoothingMethod(fastMethod)
	cfg.SlowSmoothing = models.SmoothingMethod(slowMethod)
	return cfg, nil
}
