package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NFTPredict/internal/domain/repository"
	icache "NFTPredict/internal/service/cache"
	"NFTPredict/internal/service/ratelimit"
	"NFTPredict/internal/usecase"
	"NFTPredict/pkg/config"
	xhttp "NFTPredict/pkg/http"
	pkgkafka "NFTPredict/pkg/kafka"
	applogger "NFTPredict/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	kh         *usecase.KafkaForecastHandler
	publisher  repository.ReportPublisher
	cache      icache.BytesCache
	limiter    *ratelimit.Limiter
}

// New creates a new App. consumer, kh, publisher, cache and limiter may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaForecastHandler,
	publisher repository.ReportPublisher,
	cache icache.BytesCache,
	limiter *ratelimit.Limiter,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		consumer:   consumer,
		kh:         kh,
		publisher:  publisher,
		cache:      cache,
		limiter:    limiter,
	}
}

// Run starts the application and blocks until interrupted or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("kafka consumer start: %w", err)
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.limiter != nil {
		go a.sweepLimiter(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.log.Info("shutdown signal received", applogger.String("signal", sig.String()))
	case <-ctx.Done():
		a.log.Info("context cancelled")
	}
	return a.shutdown()
}

func (a *App) sweepLimiter(ctx context.Context) {
	every := a.cfg.RateLimit.IdleTTL / 2
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := a.limiter.Sweep(); n > 0 {
				a.log.Debug("rate limiter swept", applogger.Int("dropped", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

// shutdown stops intake first (HTTP, consumer) and then closes outputs.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// closing the publisher also closes the shared producer, so detach the digest first
	a.log.DetachDigest()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("report publisher close error", applogger.Error(err))
		}
	}

	if c, ok := a.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
