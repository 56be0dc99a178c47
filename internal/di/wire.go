//go:build wireinject
// +build wireinject

package di

import (
	"github.com/Scotty108/Cascadian-sub002/pkg/config"
	"github.com/Scotty108/Cascadian-sub002/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideCacheService,

		// Ingest path
		ProvideTickStorage,
		ProvideTickPublisher,
		ProvideMarketStream,
		ProvideTickProcessor,
		ProvideTickCollector,
		ProvideKafkaTicksHandler,
		ProvideKafkaSignalsHandler,

		// Signal engine
		ProvidePriceStore,
		ProvideTSIConfig,
		ProvideIndicator,
		ProvideIndexerClient,
		ProvideEliteRegistry,
		ProvideCategoryRegistry,
		ProvideSpecialistRegistry,
		ProvideConviction,
		ProvideTradeLedger,
		ProvideOmega,
		ProvideSignalSink,
		ProvideSignalLog,
		ProvideOrchestrator,
		ProvideSweepWorker,

		// Surfaces
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
