//go:build wireinject
// +build wireinject

package di

import (
	"NFTPredict/pkg/config"
	"NFTPredict/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Scoring
		ProvidePredictor,
		ProvideRiskAssessor,

		// Infrastructure
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRiskCache,
		ProvideRateLimiter,

		// Repositories
		ProvideReportPublisher,

		// Use cases
		ProvideForecastUseCase,
		ProvideKafkaForecastHandler,

		// Transport
		ProvideForecastHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
