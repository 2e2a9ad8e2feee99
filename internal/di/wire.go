//go:build wireinject
// +build wireinject

package di

import (
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/config"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Protocol client and caching
		ProvideSessionFactory,
		ProvideCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideStorage,
		ProvidePublisher,

		// Use cases
		ProvideFinancialService,
		ProvideSnapshotArchiver,
		ProvideRefreshQueue,

		// HTTP surface and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
