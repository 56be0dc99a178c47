package api

import (
	"context"
	"errors"
	"net/http"

	models "github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	domsvc "github.com/Scotty108/Cascadian-sub002/internal/domain/service"
	"github.com/Scotty108/Cascadian-sub002/internal/services/indicator"
	"github.com/Scotty108/Cascadian-sub002/internal/usecase"
	xhttp "github.com/Scotty108/Cascadian-sub002/pkg/http"
	xlogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
	"github.com/Scotty108/Cascadian-sub002/pkg/queue"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler exposes the signal engine over HTTP. Handlers stay
// thin: bind, validate, delegate, map errors.
type SignalsEchoHandler struct {
	logger     *xlogger.Logger
	indicator  domsvc.MomentumIndicator
	conviction domsvc.ConvictionScorer
	omega      domsvc.OmegaCalculator
	orch       *usecase.SignalOrchestrator
	queue      queue.QueueService
	signalLog  domrepo.SignalLog
	health     func(ctx context.Context) error
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	ind domsvc.MomentumIndicator,
	conv domsvc.ConvictionScorer,
	om domsvc.OmegaCalculator,
	orch *usecase.SignalOrchestrator,
	q queue.QueueService,
) *SignalsEchoHandler {
	return &SignalsEchoHandler{
		logger:     logger,
		indicator:  ind,
		conviction: conv,
		omega:      om,
		orch:       orch,
		queue:      q,
	}
}

// SetHealthCheck attaches a storage liveness probe for /health.
func (h *SignalsEchoHandler) SetHealthCheck(fn func(ctx context.Context) error) { h.health = fn }

// SetSignalLog attaches the signal log read side for /api/signals.
func (h *SignalsEchoHandler) SetSignalLog(log domrepo.SignalLog) { h.signalLog = log }

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/tsi", h.TSI)
	g.GET("/conviction", h.Conviction)
	g.GET("/omega", h.Omega)
	g.GET("/signal", h.Signal)
	g.GET("/signals", h.RecentSignals)
	g.POST("/sweep", h.Sweep)
}

func (h *SignalsEchoHandler) Health(c echo.Context) error {
	if h.health != nil {
		if err := h.health(c.Request().Context()); err != nil {
			h.logger.Error("health check failed", xlogger.Error(err))
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SignalsEchoHandler) TSI(c echo.Context) error {
	req := &models.TSIRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.indicator.Calculate(c.Request().Context(), req.MarketID, req.LookbackMinutes)
	if err != nil {
		return h.indicatorError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsEchoHandler) Conviction(c echo.Context) error {
	req := &models.ConvictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.conviction.Calculate(c.Request().Context(), req.MarketID, req.ConditionID, models.MarketSide(req.Side), req.LookbackHours)
	if err != nil {
		h.logger.Error("conviction usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// omegaResponse bundles the window profile with its momentum trend.
type omegaResponse struct {
	Calculation *models.OmegaCalculation `json:"calculation"`
	Momentum    *models.OmegaMomentum    `json:"momentum,omitempty"`
}

func (h *SignalsEchoHandler) Omega(c echo.Context) error {
	req := &models.OmegaRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	calc, err := h.omega.Calculate(ctx, req.Wallet, req.DaysBack)
	if err != nil {
		h.logger.Error("omega usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if calc == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no closed trades for %s in window", req.Wallet))
	}

	momentum, err := h.omega.Momentum(ctx, req.Wallet)
	if err != nil {
		h.logger.Error("omega momentum error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, omegaResponse{Calculation: calc, Momentum: momentum})
}

func (h *SignalsEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, err := h.orch.Evaluate(c.Request().Context(), req.MarketID, req.ConditionID, req.LookbackMinutes, req.LookbackHours)
	if err != nil {
		return h.indicatorError(c, err)
	}
	return xhttp.SuccessResponse(c, rec)
}

// RecentSignals serves the newest landed signals for one market.
func (h *SignalsEchoHandler) RecentSignals(c echo.Context) error {
	req := &models.RecentSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.signalLog == nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("signal log not available"))
	}

	recs, err := h.signalLog.Recent(c.Request().Context(), req.MarketID, req.Limit)
	if err != nil {
		h.logger.Error("recent signals error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, recs)
}

// sweepAccepted acknowledges an enqueued sweep.
type sweepAccepted struct {
	Enqueued int `json:"enqueued"`
}

func (h *SignalsEchoHandler) Sweep(c echo.Context) error {
	req := &models.SweepRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	// queued when a worker is wired, inline otherwise
	if h.queue != nil {
		if err := h.queue.PublishMessage(ctx, usecase.SweepJobType, req); err != nil {
			h.logger.Error("sweep enqueue error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.CreatedResponse(c, sweepAccepted{Enqueued: len(req.Markets)})
	}

	markets := make([]usecase.SweepMarket, 0, len(req.Markets))
	for _, m := range req.Markets {
		markets = append(markets, usecase.SweepMarket{MarketID: m.MarketID, ConditionID: m.ConditionID})
	}
	res, err := h.orch.Sweep(ctx, markets)
	if err != nil {
		h.logger.Error("sweep error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// indicatorError maps engine errors to client-facing responses: thin data
// and flat prices are request problems, not server faults.
func (h *SignalsEchoHandler) indicatorError(c echo.Context, err error) error {
	var ide *indicator.InsufficientDataError
	if errors.As(err, &ide) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("insufficient price history: %v", ide).WithError(err))
	}
	if errors.Is(err, indicator.ErrIndeterminateTSI) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("indicator indeterminate: no price movement in window").WithError(err))
	}
	if errors.Is(err, domrepo.ErrNoActiveConfig) {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("no active smoothing configuration").WithError(err))
	}
	h.logger.Error("indicator usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
