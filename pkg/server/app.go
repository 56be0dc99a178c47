package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/usecase"
	pkgch "github.com/Scotty108/Cascadian-sub002/pkg/clickhouse"
	"github.com/Scotty108/Cascadian-sub002/pkg/config"
	xhttp "github.com/Scotty108/Cascadian-sub002/pkg/http"
	pkgkafka "github.com/Scotty108/Cascadian-sub002/pkg/kafka"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
	"github.com/Scotty108/Cascadian-sub002/pkg/queue"
)

// App encapsulates the entire application lifecycle: the tick collector,
// Kafka consumers, the sweep worker, and the HTTP API.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	collector   *usecase.TickCollector
	consumer    *pkgkafka.Consumer
	handlers    []pkgkafka.MessageHandler
	chClient    *pkgch.Client
	sweepWorker *queue.RedisQueue
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	TickProc    *usecase.TickProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	chClient *pkgch.Client,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		collector: collector,
		consumer:  consumer,
		chClient:  chClient,
	}
}

// RegisterKafkaHandler attaches a topic handler to the shared consumer.
func (a *App) RegisterKafkaHandler(h pkgkafka.MessageHandler) {
	if h != nil {
		a.handlers = append(a.handlers, h)
	}
}

// SetHTTPHandler allows DI to inject the HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetSweepWorker attaches the Redis sweep queue. Nil is fine: sweeps then
// run inline in the API.
func (a *App) SetSweepWorker(q *queue.RedisQueue) { a.sweepWorker = q }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.l
	if l == nil {
		l, _ = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started",
		applogger.Int("assets", len(a.cfg.Polymarket.AssetIDs)),
		applogger.String("backend", a.cfg.Backend.Type),
	)

	// Start consumer if configured
	if a.consumer != nil && len(a.handlers) > 0 {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
			l.Info("kafka handler registered", applogger.String("topic", h.Topic()))
		}
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
	}

	// Start sweep worker
	if a.sweepWorker != nil {
		if err := a.sweepWorker.Start(); err != nil {
			l.Warn("sweep worker start error", applogger.Error(err))
		} else {
			a.sweepWorker.StartRetryProcessor()
			l.Info("sweep worker started")
			// route repeated log lines through the aggregator
			l.AddCollector(&applogger.CollectionConfig{
				TimeInterval:   30 * time.Second,
				CountThreshold: 100,
				Topic:          usecase.LogAggregateJobType,
				Publisher:      a.sweepWorker,
			})
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx, l)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context, l *applogger.Logger) error {
	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop sweep worker and flush any aggregated logs
	if a.sweepWorker != nil {
		l.RemoveCollector()
		if err := a.sweepWorker.Stop(shutdownCtx); err != nil {
			l.Warn("sweep worker stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close tick processor resources (publisher/storage)
	if a.TickProc != nil {
		a.TickProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
