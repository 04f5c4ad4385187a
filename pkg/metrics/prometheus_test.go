package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordForecast("success")
	r.RecordForecast("success")
	r.RecordForecast("failed")
	r.RecordDegraded("7d")
	r.RecordError("publish")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.forecasts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.forecasts.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.degraded.WithLabelValues("7d")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("publish")))

	r.RecordPrediction("24h", 5.1)
	r.RecordOverallConfidence(81)
	r.RecordLatency("forecast", 0.002)
	assert.Equal(t, 1, testutil.CollectAndCount(r.overallConfidence))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
