package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	domsvc "github.com/Scotty108/Cascadian-sub002/internal/domain/service"
	icache "github.com/Scotty108/Cascadian-sub002/internal/service/cache"
	"github.com/Scotty108/Cascadian-sub002/internal/service/metrics"
	"github.com/Scotty108/Cascadian-sub002/internal/service/ratelimit"
	xhttp "github.com/Scotty108/Cascadian-sub002/pkg/http"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// SignalsHandler is the plain net/http surface for read-heavy endpoints,
// with short-TTL response caching and per-client rate limits.
type SignalsHandler struct {
	indicator domsvc.MomentumIndicator
	omega     domsvc.OmegaCalculator
	cache     icache.BytesCache
	rl        *ratelimit.Limiter
	l         *applogger.Logger
}

func NewSignalsHandler(ind domsvc.MomentumIndicator, om domsvc.OmegaCalculator) *SignalsHandler {
	metrics.Register()
	return &SignalsHandler{indicator: ind, omega: om, rl: ratelimit.New()}
}

func (h *SignalsHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *SignalsHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *SignalsHandler) TSI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "tsi"
		defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		marketID := r.URL.Query().Get("market_id")
		if marketID == "" {
			if h.l != nil {
				h.l.Warn("signals.tsi missing market_id")
			}
			http.Error(w, "market_id required", http.StatusBadRequest)
			return
		}
		lookback := xhttp.ParseIntDefault(r.URL.Query().Get("lookback_minutes"), domrepo.DefaultLookbackMinutes)
		if !h.rl.Allow(r.RemoteAddr+":tsi", 5, 2) {
			if h.l != nil {
				h.l.Warn("signals.tsi rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "tsi:" + marketID + ":" + strconv.Itoa(lookback)
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("signals.tsi cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("signals.tsi cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("signals.tsi write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("signals.tsi cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.indicator.Calculate(r.Context(), marketID, lookback)
		if err != nil {
			metrics.APIErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("signals.tsi error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("signals.tsi marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil && h.l != nil {
				h.l.Warn("signals.tsi cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("signals.tsi write_error", applogger.Error(err))
		}
	}
}

func (h *SignalsHandler) Omega() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "omega"
		defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		wallet := r.URL.Query().Get("wallet")
		if wallet == "" {
			if h.l != nil {
				h.l.Warn("signals.omega missing wallet")
			}
			http.Error(w, "wallet required", http.StatusBadRequest)
			return
		}
		daysBack := xhttp.ParseIntDefault(r.URL.Query().Get("days_back"), domrepo.DefaultOmegaDays)
		if !h.rl.Allow(r.RemoteAddr+":omega", 5, 2) {
			if h.l != nil {
				h.l.Warn("signals.omega rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "omega:" + wallet + ":" + strconv.Itoa(daysBack)
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("signals.omega cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("signals.omega cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("signals.omega write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("signals.omega cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.omega.Calculate(r.Context(), wallet, daysBack)
		if err != nil {
			metrics.APIErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("signals.omega error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if res == nil {
			http.Error(w, "no closed trades in window", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("signals.omega marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 60*time.Second); err != nil && h.l != nil {
				h.l.Warn("signals.omega cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("signals.omega write_error", applogger.Error(err))
		}
	}
}
