package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	xlogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

type fakeSignalLog struct {
	recs       []models.SignalRecord
	lastMarket string
	lastLimit  int
}

func (f *fakeSignalLog) Recent(_ context.Context, marketID string, limit int) ([]models.SignalRecord, error) {
	f.lastMarket = marketID
	f.lastLimit = limit
	return f.recs, nil
}

func echoTestLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func recentSignalsContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRecentSignalsServesLog(t *testing.T) {
	log := &fakeSignalLog{recs: []models.SignalRecord{
		{
			MarketID:    "mkt",
			ConditionID: "cond",
			Timestamp:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Side:        models.SideYes,
			Decision:    models.DecisionEnter,
		},
	}}
	h := NewSignalsEchoHandler(echoTestLogger(t), nil, nil, nil, nil, nil)
	h.SetSignalLog(log)

	c, rec := recentSignalsContext("/api/signals?market_id=mkt&limit=5")
	if err := h.RecentSignals(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.lastMarket != "mkt" || log.lastLimit != 5 {
		t.Fatalf("log queried with market=%q limit=%d", log.lastMarket, log.lastLimit)
	}

	var body struct {
		Status int                   `json:"status"`
		Data   []models.SignalRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", body.Status)
	}
	if len(body.Data) != 1 || body.Data[0].MarketID != "mkt" {
		t.Fatalf("unexpected payload: %+v", body.Data)
	}
}

func TestRecentSignalsDefaultsLimit(t *testing.T) {
	log := &fakeSignalLog{}
	h := NewSignalsEchoHandler(echoTestLogger(t), nil, nil, nil, nil, nil)
	h.SetSignalLog(log)

	c, _ := recentSignalsContext("/api/signals?market_id=mkt")
	if err := h.RecentSignals(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.lastLimit != 20 {
		t.Fatalf("expected default limit 20, got %d", log.lastLimit)
	}
}

func TestRecentSignalsRequiresMarketID(t *testing.T) {
	log := &fakeSignalLog{}
	h := NewSignalsEchoHandler(echoTestLogger(t), nil, nil, nil, nil, nil)
	h.SetSignalLog(log)

	c, rec := recentSignalsContext("/api/signals")
	if err := h.RecentSignals(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", body.Status)
	}
	if log.lastMarket != "" {
		t.Fatalf("log must not be queried on invalid input")
	}
}
