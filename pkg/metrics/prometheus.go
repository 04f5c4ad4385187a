package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nftpredict"

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecasts         *prometheus.CounterVec
	degraded          *prometheus.CounterVec
	predictedChange   *prometheus.HistogramVec
	overallConfidence prometheus.Histogram
	errorsTotal       *prometheus.CounterVec
	latency           *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		forecasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forecasts_total",
				Help:      "Prediction bundles produced, by result (success or failed)",
			},
			[]string{"result"},
		),
		degraded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degraded_timeframes_total",
				Help:      "Timeframe predictions that fell back to the safe default",
			},
			[]string{"timeframe"},
		),
		predictedChange: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "predicted_change_percent",
				Help:      "Predicted percentage change per timeframe",
				Buckets:   prometheus.LinearBuckets(-30, 5, 13),
			},
			[]string{"timeframe"},
		),
		overallConfidence: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "overall_confidence",
				Help:      "Overall confidence of successful bundles",
				Buckets:   prometheus.LinearBuckets(40, 5, 11),
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordForecast(result string) {
	r.forecasts.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordDegraded(timeframe string) {
	r.degraded.WithLabelValues(timeframe).Inc()
}

func (r *Recorder) RecordPrediction(timeframe string, pct float64) {
	r.predictedChange.WithLabelValues(timeframe).Observe(pct)
}

func (r *Recorder) RecordOverallConfidence(v int) {
	r.overallConfidence.Observe(float64(v))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
