package repository

import (
	"context"

	"NFTPredict/internal/domain/models"
)

// ReportPublisher ships finished forecast reports to downstream consumers.
type ReportPublisher interface {
	PublishReport(ctx context.Context, r *models.ForecastReport) error
	Close() error
}

// Metrics records forecast pipeline observations.
type Metrics interface {
	RecordForecast(result string)
	RecordDegraded(timeframe string)
	RecordPrediction(timeframe string, percentageChange float64)
	RecordOverallConfidence(confidence int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
