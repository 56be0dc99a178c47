package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	icache "github.com/Scotty108/Cascadian-sub002/internal/service/cache"
)

type stubIndicator struct {
	res   *models.TSIResult
	err   error
	calls int
}

func (s *stubIndicator) Calculate(_ context.Context, marketID string, _ int) (*models.TSIResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := *s.res
	out.MarketID = marketID
	return &out, nil
}

func (s *stubIndicator) CalculateBatch(_ context.Context, ids []string, _ int) (map[string]*models.TSIResult, int) {
	out := make(map[string]*models.TSIResult, len(ids))
	for _, id := range ids {
		r := *s.res
		r.MarketID = id
		out[id] = &r
	}
	return out, 0
}

type stubOmega struct {
	calc  *models.OmegaCalculation
	calls int
}

func (s *stubOmega) Calculate(_ context.Context, wallet string, _ int) (*models.OmegaCalculation, error) {
	s.calls++
	if s.calc == nil {
		return nil, nil
	}
	out := *s.calc
	out.WalletAddress = wallet
	return &out, nil
}

func (s *stubOmega) Momentum(context.Context, string) (*models.OmegaMomentum, error) {
	return nil, nil
}

func (s *stubOmega) IsElite(context.Context, string) (bool, error) {
	return false, nil
}

func TestTSIRequiresMarketID(t *testing.T) {
	h := NewSignalsHandler(&stubIndicator{res: &models.TSIResult{}}, &stubOmega{})

	req := httptest.NewRequest(http.MethodGet, "/signals/tsi", nil)
	rec := httptest.NewRecorder()
	h.TSI()(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTSIServesFromCacheOnRepeat(t *testing.T) {
	ind := &stubIndicator{res: &models.TSIResult{
		Timestamp: time.Now(),
		TSIFast:   12.5,
		TSISlow:   8.1,
		Crossover: models.CrossoverBullish,
	}}
	h := NewSignalsHandler(ind, &stubOmega{})
	h.SetCache(icache.NewTTLCache())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/signals/tsi?market_id=m1&lookback_minutes=90", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.TSI()(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
		var res models.TSIResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("request %d: decode: %v", i, err)
		}
		if res.MarketID != "m1" || res.Crossover != models.CrossoverBullish {
			t.Fatalf("request %d: unexpected result %+v", i, res)
		}
	}
	if ind.calls != 1 {
		t.Fatalf("second request must hit the cache, indicator called %d times", ind.calls)
	}
}

func TestOmegaNotFoundWithoutHistory(t *testing.T) {
	h := NewSignalsHandler(&stubIndicator{res: &models.TSIResult{}}, &stubOmega{calc: nil})

	req := httptest.NewRequest(http.MethodGet, "/signals/omega?wallet=0xabc", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.Omega()(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for wallet with no closed trades, got %d", rec.Code)
	}
}

func TestOmegaReturnsProfile(t *testing.T) {
	om := &stubOmega{calc: &models.OmegaCalculation{
		OmegaRatio:  3.2,
		TotalTrades: 18,
		WinRate:     0.72,
	}}
	h := NewSignalsHandler(&stubIndicator{res: &models.TSIResult{}}, om)

	req := httptest.NewRequest(http.MethodGet, "/signals/omega?wallet=0xabc&days_back=30", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	rec := httptest.NewRecorder()
	h.Omega()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res models.OmegaCalculation
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.WalletAddress != "0xabc" || res.OmegaRatio != 3.2 {
		t.Fatalf("unexpected result %+v", res)
	}
}
