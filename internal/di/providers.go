package di

import (
	"context"
	"fmt"
	"time"

	"NFTPredict/internal/domain/repository"
	domsvc "NFTPredict/internal/domain/service"
	"NFTPredict/internal/handler/api"
	internalrepo "NFTPredict/internal/repository"
	icache "NFTPredict/internal/service/cache"
	"NFTPredict/internal/service/ratelimit"
	"NFTPredict/internal/services/prediction"
	"NFTPredict/internal/services/risk"
	"NFTPredict/internal/usecase"
	"NFTPredict/pkg/config"
	xhttp "NFTPredict/pkg/http"
	pkgkafka "NFTPredict/pkg/kafka"
	"NFTPredict/pkg/logger"
	"NFTPredict/pkg/metrics"
	"NFTPredict/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvidePredictor creates the price predictor. A zero seed means time-seeded noise.
func ProvidePredictor(cfg *config.Config) domsvc.PricePredictor {
	if cfg.Predictor.Seed != 0 {
		return prediction.New(prediction.WithSeed(cfg.Predictor.Seed))
	}
	return prediction.New()
}

// ProvideRiskAssessor creates the risk assessor.
func ProvideRiskAssessor() domsvc.RiskAssessor {
	return risk.NewAssessor()
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideReportPublisher publishes reports to the result topic, or returns nil without Kafka.
func ProvideReportPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ReportPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.ResultTopic)
}

// ProvideForecastUseCase creates the forecast use case.
func ProvideForecastUseCase(
	predictor domsvc.PricePredictor,
	assessor domsvc.RiskAssessor,
	publisher repository.ReportPublisher,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(predictor, assessor, publisher, m, l.With(logger.String("component", "forecast")))
}

// ProvideKafkaConsumer creates the request consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l.With(logger.String("component", "kafka")),
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
	consumer.WithConsumerHook(pkgkafka.TraceHook())
	return consumer, nil
}

// ProvideKafkaForecastHandler handles the request topic.
func ProvideKafkaForecastHandler(cfg *config.Config, uc *usecase.ForecastUseCase, m repository.Metrics) *usecase.KafkaForecastHandler {
	return usecase.NewKafkaForecastHandler(cfg.Kafka.RequestTopic, uc, m)
}

// ProvideRiskCache picks Redis when configured, the in-process TTL cache otherwise.
func ProvideRiskCache(cfg *config.Config) (icache.BytesCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if !cfg.Cache.Redis.Enabled {
		return icache.NewTTLCache(), nil
	}

	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("risk cache: %w", err)
	}
	return rc, nil
}

// ProvideRateLimiter creates the per-client limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
}

// ProvideForecastHandler creates the HTTP handler.
func ProvideForecastHandler(cfg *config.Config, l *logger.Logger, uc *usecase.ForecastUseCase, store icache.BytesCache) *api.ForecastEchoHandler {
	return api.NewForecastEchoHandler(l.With(logger.String("component", "http")), uc, api.CacheConfig{
		Store:  store,
		TTL:    cfg.Cache.TTL,
		Prefix: cfg.Cache.Prefix,
	})
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, h *api.ForecastEchoHandler, limiter *ratelimit.Limiter) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithMetrics(metricsPath, nil),
	}
	if limiter != nil {
		opts = append(opts, xhttp.WithRateLimit(limiter))
	}
	return xhttp.NewServer(l, h, opts...)
}

// ProvideApp creates the application and attaches the log digest when a log topic is set.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	httpServer *xhttp.Server,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaForecastHandler,
	publisher repository.ReportPublisher,
	store icache.BytesCache,
	limiter *ratelimit.Limiter,
) *server.App {
	if producer != nil && cfg.Kafka.LogTopic != "" {
		l.AttachDigest(&logger.DigestConfig{
			Interval:  30 * time.Second,
			MaxUnique: 100,
			Topic:     cfg.Kafka.LogTopic,
			Publisher: producer,
		})
	}
	return server.New(cfg, l, httpServer, consumer, kh, publisher, store, limiter)
}
