package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	"github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	domsvc "github.com/Scotty108/Cascadian-sub002/internal/domain/service"
	"github.com/Scotty108/Cascadian-sub002/internal/handler/api"
	mid "github.com/Scotty108/Cascadian-sub002/internal/middleware"
	internalrepo "github.com/Scotty108/Cascadian-sub002/internal/repository"
	"github.com/Scotty108/Cascadian-sub002/internal/service/polymarket"
	"github.com/Scotty108/Cascadian-sub002/internal/services/conviction"
	"github.com/Scotty108/Cascadian-sub002/internal/services/indicator"
	"github.com/Scotty108/Cascadian-sub002/internal/services/omega"
	"github.com/Scotty108/Cascadian-sub002/internal/services/wallets"
	"github.com/Scotty108/Cascadian-sub002/internal/usecase"
	pkgcache "github.com/Scotty108/Cascadian-sub002/pkg/cache"
	pkgch "github.com/Scotty108/Cascadian-sub002/pkg/clickhouse"
	"github.com/Scotty108/Cascadian-sub002/pkg/config"
	xhttp "github.com/Scotty108/Cascadian-sub002/pkg/http"
	pkgkafka "github.com/Scotty108/Cascadian-sub002/pkg/kafka"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
	"github.com/Scotty108/Cascadian-sub002/pkg/metrics"
	"github.com/Scotty108/Cascadian-sub002/pkg/queue"
	"github.com/Scotty108/Cascadian-sub002/pkg/server"
)

// ProvideLogger creates the application logger. Production emits JSON,
// everything else console.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{Level: "info", Format: "console", Output: "stdout"}
	if cfg.Environment == "production" {
		lc.Format = "json"
	}
	return applogger.New(lc)
}

func tableOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// engine schema: raw ticks, the per-minute price rollup it feeds, the
// append-only signal log, the closed-trade ledger, and the indicator config.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	db := cfg.ClickHouse.Database
	if db == "" {
		db = "cascadian"
	}
	ticks := tableOr(cfg.ClickHouse.Tables.Ticks, db+".market_ticks_raw")
	prices := tableOr(cfg.ClickHouse.Tables.Prices, db+".market_prices_1m")
	signals := tableOr(cfg.ClickHouse.Tables.Signals, db+".signal_log")
	trades := tableOr(cfg.ClickHouse.Tables.Trades, db+".closed_trades")
	indCfg := tableOr(cfg.ClickHouse.Tables.IndicatorCf, db+".indicator_config")

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            ts DateTime,
            market_id String,
            price Float64,
            size Float64,
            source LowCardinality(String),
            event_id String,
            seq UInt64
        ) ENGINE = ReplacingMergeTree ORDER BY (market_id, event_id, seq)`, ticks),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            market_id String,
            bucket DateTime,
            price Float64
        ) ENGINE = ReplacingMergeTree ORDER BY (market_id, bucket)`, prices),
		fmt.Sprintf(`CREATE MATERIALIZED VIEW IF NOT EXISTS %s_mv TO %s AS
            SELECT market_id, toStartOfMinute(ts) AS bucket, argMax(price, ts) AS price
            FROM %s GROUP BY market_id, bucket`, prices, prices, ticks),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            ts DateTime,
            market_id String,
            condition_id String,
            side LowCardinality(String),
            tsi_fast Float64,
            tsi_slow Float64,
            crossover LowCardinality(String),
            conviction Float64,
            meets_entry UInt8,
            decision LowCardinality(String)
        ) ENGINE = MergeTree ORDER BY (market_id, ts)`, signals),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            wallet String,
            market_id String,
            pnl Float64,
            resolved_at DateTime
        ) ENGINE = MergeTree ORDER BY (wallet, resolved_at)`, trades),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            fast_periods UInt16,
            fast_smoothing LowCardinality(String),
            slow_periods UInt16,
            slow_smoothing LowCardinality(String),
            active UInt8,
            updated_at DateTime
        ) ENGINE = ReplacingMergeTree(updated_at) ORDER BY updated_at`, indCfg),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache creates the shared Redis cache, or nil when Redis is
// disabled in config.
func ProvideRedisCache(cfg *config.Config, l *applogger.Logger) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		host = cfg.Redis.Addr
		portStr = "6379"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis addr %q: %w", cfg.Redis.Addr, err)
	}

	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected", applogger.String("addr", cfg.Redis.Addr))
	return rc, nil
}

// ProvideCacheService layers a small in-process cache over Redis for the
// registry decorators. Nil when Redis is disabled.
func ProvideCacheService(rc *pkgcache.RedisCache) pkgcache.Service {
	if rc == nil {
		return nil
	}
	return pkgcache.NewLayeredCache(rc)
}

// ProvideTickStorage creates ClickHouse storage for raw ticks.
func ProvideTickStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	table := tableOr(cfg.ClickHouse.Tables.Ticks, cfg.ClickHouse.Database+".market_ticks_raw")
	return internalrepo.NewClickHouseTickStorage(chClient.DB(), table)
}

// ProvideTickPublisher creates the Kafka tick publisher.
func ProvideTickPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaTickPublisher(producer, cfg.Kafka.TicksTopic)
}

// ProvideMarketStream creates the Polymarket CLOB WebSocket stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return polymarket.New(
		cfg.Polymarket.WebSocketURL,
		cfg.Polymarket.AssetIDs,
		cfg.Polymarket.ReconnectDelay,
		cfg.Polymarket.PingInterval,
	)
}

// ProvideTickProcessor creates the tick processor use case.
func ProvideTickProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.TickProcessor {
	return usecase.NewTickProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideTickCollector creates the tick collector use case.
func ProvideTickCollector(
	stream repository.MarketStream,
	processor *usecase.TickProcessor,
	metrics repository.Metrics,
) *usecase.TickCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTickCollector(stream, processor, metrics, pipe)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTicksHandler registers the handler for the ticks topic.
func ProvideKafkaTicksHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.TicksTopic, store, metrics)
}

// ProvideKafkaSignalsHandler registers the handler for the signals topic.
// Consumed signals land in the ClickHouse signal log regardless of which
// sink the orchestrator publishes through.
func ProvideKafkaSignalsHandler(chClient *pkgch.Client, metrics repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.KafkaSignalsHandler {
	store := internalrepo.NewCHSignalStore(chClient, cfg.ClickHouse.Tables.Signals)
	store.SetLogger(l)
	return usecase.NewKafkaSignalsHandler(cfg.Kafka.SignalsTopic, store, metrics)
}

// ProvidePriceStore creates the per-minute price history source.
func ProvidePriceStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.PriceHistorySource {
	store := internalrepo.NewCHPriceStore(chClient, cfg.ClickHouse.Tables.Prices)
	store.SetLogger(l)
	return store
}

// ProvideTSIConfig resolves the active smoothing configuration: ClickHouse
// first, YAML overrides next, compiled defaults last.
func ProvideTSIConfig(cfg *config.Config, chClient *pkgch.Client, l *applogger.Logger) models.TSIConfig {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := internalrepo.NewCHConfigStore(chClient, cfg.ClickHouse.Tables.IndicatorCf)
	store.SetLogger(l)
	if tc, err := store.FetchActive(ctx); err == nil {
		l.Info("indicator config loaded from clickhouse",
			applogger.Int("fast_periods", tc.FastPeriods),
			applogger.Int("slow_periods", tc.SlowPeriods),
		)
		return tc
	}

	tc := models.DefaultTSIConfig()
	if cfg.Engine.FastPeriods > 0 {
		tc.FastPeriods = cfg.Engine.FastPeriods
	}
	if cfg.Engine.FastSmoothing != "" {
		tc.FastSmoothing = models.SmoothingMethod(cfg.Engine.FastSmoothing)
	}
	if cfg.Engine.SlowPeriods > 0 {
		tc.SlowPeriods = cfg.Engine.SlowPeriods
	}
	if cfg.Engine.SlowSmoothing != "" {
		tc.SlowSmoothing = models.SmoothingMethod(cfg.Engine.SlowSmoothing)
	}
	l.Info("indicator config from file defaults",
		applogger.Int("fast_periods", tc.FastPeriods),
		applogger.Int("slow_periods", tc.SlowPeriods),
	)
	return tc
}

// ProvideIndicator creates the TSI momentum indicator.
func ProvideIndicator(
	prices repository.PriceHistorySource,
	tsiCfg models.TSIConfig,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) domsvc.MomentumIndicator {
	opts := []indicator.Option{
		indicator.WithLogger(l),
		indicator.WithMetrics(metrics),
	}
	if cfg.Engine.TSIBatchSize > 0 {
		opts = append(opts, indicator.WithConcurrency(cfg.Engine.TSIBatchSize))
	}
	return indicator.NewCalculator(prices, tsiCfg, opts...)
}

// ProvideIndexerClient creates the wallet-indexer HTTP client.
func ProvideIndexerClient(cfg *config.Config) *wallets.IndexerClient {
	opts := []wallets.ClientOption{}
	if cfg.Indexer.Timeout > 0 {
		opts = append(opts, wallets.WithTimeout(cfg.Indexer.Timeout))
	}
	if cfg.Indexer.RetryAttempts > 0 {
		opts = append(opts, wallets.WithRetryAttempts(cfg.Indexer.RetryAttempts))
	}
	return wallets.NewIndexerClient(cfg.Indexer.BaseURL, opts...)
}

// ProvideEliteRegistry creates the elite wallet registry, cached when a
// cache service is available.
func ProvideEliteRegistry(ic *wallets.IndexerClient, svc pkgcache.Service, l *applogger.Logger) repository.EliteWalletRegistry {
	reg := wallets.NewIndexerEliteRegistry(ic)
	if svc == nil {
		return reg
	}
	return internalrepo.NewCachedEliteRegistry(reg, svc, l)
}

// ProvideCategoryRegistry creates the market category registry, cached when
// a cache service is available.
func ProvideCategoryRegistry(ic *wallets.IndexerClient, svc pkgcache.Service, l *applogger.Logger) repository.CategoryRegistry {
	reg := wallets.NewIndexerCategoryRegistry(ic)
	if svc == nil {
		return reg
	}
	return internalrepo.NewCachedCategoryRegistry(reg, svc, l)
}

// ProvideSpecialistRegistry creates the specialist registry, cached when a
// cache service is available.
func ProvideSpecialistRegistry(ic *wallets.IndexerClient, svc pkgcache.Service, l *applogger.Logger) repository.SpecialistRegistry {
	reg := wallets.NewIndexerSpecialistRegistry(ic)
	if svc == nil {
		return reg
	}
	return internalrepo.NewCachedSpecialistRegistry(reg, svc, l)
}

// ProvideConviction creates the directional conviction scorer.
func ProvideConviction(
	elites repository.EliteWalletRegistry,
	categories repository.CategoryRegistry,
	specialists repository.SpecialistRegistry,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) domsvc.ConvictionScorer {
	opts := []conviction.Option{
		conviction.WithLogger(l),
		conviction.WithMetrics(metrics),
	}
	if cfg.Engine.EntryThreshold > 0 {
		opts = append(opts, conviction.WithEntryThreshold(cfg.Engine.EntryThreshold))
	}
	if cfg.Engine.ConvictionBatchSize > 0 {
		opts = append(opts, conviction.WithBatchSize(cfg.Engine.ConvictionBatchSize))
	}
	return conviction.NewScorer(elites, categories, specialists, opts...)
}

// ProvideTradeLedger creates the closed-trade ledger over ClickHouse.
func ProvideTradeLedger(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.ClosedTradeLedger {
	ledger := internalrepo.NewCHTradeLedger(chClient, cfg.ClickHouse.Tables.Trades)
	ledger.SetLogger(l)
	return ledger
}

// ProvideOmega creates the omega ratio calculator.
func ProvideOmega(ledger repository.ClosedTradeLedger, metrics repository.Metrics, l *applogger.Logger) domsvc.OmegaCalculator {
	return omega.NewCalculator(ledger,
		omega.WithLogger(l),
		omega.WithMetrics(metrics),
	)
}

// ProvideSignalSink selects where the orchestrator publishes signals. The
// kafka backend decouples sweeps from ClickHouse inserts; the clickhouse
// backend writes the log directly.
func ProvideSignalSink(producer *pkgkafka.Producer, chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.SignalSink {
	if cfg.Backend.Type == "kafka" {
		return internalrepo.NewKafkaSignalSink(producer, cfg.Kafka.SignalsTopic)
	}
	store := internalrepo.NewCHSignalStore(chClient, cfg.ClickHouse.Tables.Signals)
	store.SetLogger(l)
	return store
}

// ProvideSignalLog exposes the ClickHouse signal log read side. Signals
// always land in ClickHouse (directly or via the kafka consumer), so reads
// go there regardless of the sink backend.
func ProvideSignalLog(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.SignalLog {
	store := internalrepo.NewCHSignalStore(chClient, cfg.ClickHouse.Tables.Signals)
	store.SetLogger(l)
	return store
}

// ProvideOrchestrator creates the signal orchestrator.
func ProvideOrchestrator(
	ind domsvc.MomentumIndicator,
	conv domsvc.ConvictionScorer,
	sink repository.SignalSink,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.SignalOrchestrator {
	opts := []usecase.OrchestratorOption{
		usecase.WithLogger(l),
		usecase.WithMetrics(metrics),
	}
	if cfg.Engine.SweepConcurrency > 0 {
		opts = append(opts, usecase.WithSweepConcurrency(cfg.Engine.SweepConcurrency))
	}
	if cfg.Engine.EvaluateTimeout > 0 {
		opts = append(opts, usecase.WithTimeout(cfg.Engine.EvaluateTimeout))
	}
	return usecase.NewSignalOrchestrator(ind, conv, sink, opts...)
}

// ProvideSweepWorker creates the Redis-backed sweep queue, or nil when
// Redis is disabled. The worker consumes sweep jobs enqueued by the API.
func ProvideSweepWorker(orch *usecase.SignalOrchestrator, rc *pkgcache.RedisCache, cfg *config.Config, l *applogger.Logger) *queue.RedisQueue {
	if rc == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    2,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}, rc.Client(), queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewSweepJob(orch, l))
	q.RegisterJob(usecase.NewLogFlushJob(l))
	return q
}

// ProvideHTTPHandler creates the Echo API surface.
func ProvideHTTPHandler(
	l *applogger.Logger,
	ind domsvc.MomentumIndicator,
	conv domsvc.ConvictionScorer,
	om domsvc.OmegaCalculator,
	orch *usecase.SignalOrchestrator,
	worker *queue.RedisQueue,
	chClient *pkgch.Client,
	slog repository.SignalLog,
) xhttp.Handler {
	var qs queue.QueueService
	if worker != nil {
		qs = worker
	}
	h := api.NewSignalsEchoHandler(l, ind, conv, om, orch, qs)
	h.SetHealthCheck(chClient.Health)
	h.SetSignalLog(slog)
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	th *usecase.KafkaTicksHandler,
	sh *usecase.KafkaSignalsHandler,
	chClient *pkgch.Client,
	worker *queue.RedisQueue,
	httpHandler xhttp.Handler,
	l *applogger.Logger,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, chClient, l)
	app.RegisterKafkaHandler(th)
	// signal log ingestion only matters on the kafka backend
	if cfg.Backend.Type == "kafka" {
		app.RegisterKafkaHandler(sh)
	}
	app.SetHTTPHandler(httpHandler)
	app.SetSweepWorker(worker)
	if collector != nil {
		app.TickProc = collector.Processor()
	}
	return app
}
