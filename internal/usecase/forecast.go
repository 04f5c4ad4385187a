package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"NFTPredict/internal/domain/models"
	domrepo "NFTPredict/internal/domain/repository"
	domsvc "NFTPredict/internal/domain/service"
	"NFTPredict/pkg/logger"
)

// ForecastUseCase runs the predictor and the risk assessor for one collection
// snapshot and hands the combined report to the publisher.
type ForecastUseCase struct {
	predictor domsvc.PricePredictor
	assessor  domsvc.RiskAssessor
	publisher domrepo.ReportPublisher // nil disables publishing
	metrics   domrepo.Metrics
	log       *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewForecastUseCase creates a ForecastUseCase. publisher may be nil.
func NewForecastUseCase(
	predictor domsvc.PricePredictor,
	assessor domsvc.RiskAssessor,
	publisher domrepo.ReportPublisher,
	metrics domrepo.Metrics,
	l *logger.Logger,
) *ForecastUseCase {
	return &ForecastUseCase{
		predictor: predictor,
		assessor:  assessor,
		publisher: publisher,
		metrics:   metrics,
		log:       l,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Predict returns the multi-timeframe bundle. A failed bundle is a result, not an error.
func (u *ForecastUseCase) Predict(ctx context.Context, req models.ForecastRequest) models.PredictionBundle {
	start := time.Now()
	bundle := u.predictor.PredictPrices(req.MarketData, req.AIAnalysis)
	u.metrics.RecordLatency("predict", time.Since(start).Seconds())
	u.observe(req.Collection, bundle)
	return bundle
}

// Risks returns the qualitative risk list.
func (u *ForecastUseCase) Risks(ctx context.Context, req models.ForecastRequest) []string {
	start := time.Now()
	risks := u.assessor.Assess(req.MarketData, req.AIAnalysis)
	u.metrics.RecordLatency("risks", time.Since(start).Seconds())
	return risks
}

// Forecast builds a full report. It only fails when ctx is already done;
// publishing problems are logged and counted.
func (u *ForecastUseCase) Forecast(ctx context.Context, req models.ForecastRequest) (*models.ForecastReport, error) {
	report, err := u.build(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := u.publish(ctx, report); err != nil {
		u.log.Error("report publish failed",
			logger.String("report_id", report.ID),
			logger.String("collection", report.Collection),
			logger.Error(err),
		)
	}
	return report, nil
}

// ForecastAndPublish builds a report whose publication is the caller's only
// output. Unlike Forecast it returns the publish error, so a queue consumer
// can retry the message instead of committing it.
func (u *ForecastUseCase) ForecastAndPublish(ctx context.Context, req models.ForecastRequest) (*models.ForecastReport, error) {
	report, err := u.build(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := u.publish(ctx, report); err != nil {
		return report, fmt.Errorf("publish report %s: %w", report.ID, err)
	}
	return report, nil
}

func (u *ForecastUseCase) build(ctx context.Context, req models.ForecastRequest) (*models.ForecastReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("forecast %q: %w", req.Collection, err)
	}
	return &models.ForecastReport{
		ID:          u.newID(),
		Collection:  req.Collection,
		GeneratedAt: u.now().UTC(),
		Prediction:  u.Predict(ctx, req),
		Risks:       u.Risks(ctx, req),
	}, nil
}

// publish is a no-op without a publisher. Failures are counted here.
func (u *ForecastUseCase) publish(ctx context.Context, report *models.ForecastReport) error {
	if u.publisher == nil {
		return nil
	}
	start := time.Now()
	err := u.publisher.PublishReport(ctx, report)
	u.metrics.RecordLatency("publish", time.Since(start).Seconds())
	if err != nil {
		u.metrics.RecordError("publish")
	}
	return err
}

// ForecastBatch forecasts every request with at most workers in flight.
// Results keep the order of reqs; entries are nil when ctx ended first.
func (u *ForecastUseCase) ForecastBatch(ctx context.Context, reqs []models.ForecastRequest, workers int) ([]*models.ForecastReport, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]*models.ForecastReport, len(reqs))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := range reqs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return out, ctx.Err()
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			// only ctx errors are possible here; they surface below
			out[i], _ = u.Forecast(ctx, reqs[i])
		}(i)
	}
	wg.Wait()

	return out, ctx.Err()
}

func (u *ForecastUseCase) observe(collection string, b models.PredictionBundle) {
	if !b.Success {
		u.metrics.RecordForecast("failed")
		u.log.Warn("prediction failed",
			logger.String("collection", collection),
			logger.String("reason", b.Error),
		)
		return
	}

	u.metrics.RecordForecast("success")
	u.metrics.RecordOverallConfidence(b.OverallConfidence)
	for _, tf := range models.Timeframes() {
		p, ok := b.Predictions[tf]
		if !ok {
			continue
		}
		if p.Error != "" {
			u.metrics.RecordDegraded(string(tf))
			u.log.Warn("timeframe degraded",
				logger.String("collection", collection),
				logger.String("timeframe", string(tf)),
				logger.String("reason", p.Error),
			)
			continue
		}
		u.metrics.RecordPrediction(string(tf), p.PercentageChange)
	}
}
