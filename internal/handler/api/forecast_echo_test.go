package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NFTPredict/internal/domain/models"
	icache "NFTPredict/internal/service/cache"
	"NFTPredict/internal/services/prediction"
	"NFTPredict/internal/services/risk"
	"NFTPredict/internal/usecase"
	"NFTPredict/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordForecast(string)            {}
func (nopMetrics) RecordDegraded(string)            {}
func (nopMetrics) RecordPrediction(string, float64) {}
func (nopMetrics) RecordOverallConfidence(int)      {}
func (nopMetrics) RecordError(string)               {}
func (nopMetrics) RecordLatency(string, float64)    {}

type failingCache struct{}

func (failingCache) GetBytes(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis: connection refused")
}

func (failingCache) SetBytes(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis: connection refused")
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(store icache.BytesCache) *echo.Echo {
	uc := usecase.NewForecastUseCase(
		prediction.New(prediction.WithSeed(7)),
		risk.NewAssessor(),
		nil,
		nopMetrics{},
		logger.Nop(),
	)
	h := NewForecastEchoHandler(logger.Nop(), uc, CacheConfig{Store: store, TTL: time.Minute, Prefix: "test:"})
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(path, "/api") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

const validBody = `{
	"collection": "azuki",
	"market_data": {"floor_price": 12.5, "volume_24h": 250, "market_cap": 125000},
	"ai_analysis": {"market_sentiment": "bullish", "confidence_score": 80, "data_quality": 90,
		"reasoning_steps": [{"confidence": 85}]}
}`

func TestPredict(t *testing.T) {
	e := newTestServer(nil)

	rec, env := do(t, e, http.MethodPost, "/api/predict", validBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var bundle models.PredictionBundle
	require.NoError(t, json.Unmarshal(env.Data, &bundle))
	assert.True(t, bundle.Success)
	assert.Equal(t, 12.5, bundle.BasePrice)
	assert.Len(t, bundle.Predictions, 3)
	for tf, p := range bundle.Predictions {
		assert.GreaterOrEqual(t, p.PriceTarget, 6.25, tf)
		assert.LessOrEqual(t, p.PriceTarget, 25.0, tf)
		assert.GreaterOrEqual(t, p.Confidence, 30, tf)
		assert.LessOrEqual(t, p.Confidence, 95, tf)
	}
}

func TestPredict_MissingFloorPriceIsDomainFailure(t *testing.T) {
	e := newTestServer(nil)

	rec, env := do(t, e, http.MethodPost, "/api/predict", `{"market_data": {"volume_24h": 10}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.Equal(t, models.ErrInvalidBasePrice, raw["error"])
	assert.NotContains(t, raw, "predictions")
}

func TestPredict_ValidationErrors(t *testing.T) {
	e := newTestServer(nil)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"confidence above 100", `{"ai_analysis": {"confidence_score": 101}}`, "ai_analysis.confidence_score"},
		{"unknown sentiment", `{"ai_analysis": {"market_sentiment": "euphoric"}}`, "ai_analysis.market_sentiment"},
		{"malformed json", `{"market_data": `, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, e, http.MethodPost, "/api/predict", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var errs []map[string]interface{}
			require.NoError(t, json.Unmarshal(env.Data, &errs))
			require.NotEmpty(t, errs)
			if tt.field != "" {
				assert.Equal(t, tt.field, errs[0]["field"])
			}
		})
	}
}

func TestRisks_Cached(t *testing.T) {
	store := icache.NewTTLCache()
	e := newTestServer(store)
	body := `{"market_data": {"volume_24h": 10, "market_cap": 500}, "ai_analysis": {"market_sentiment": "bearish"}}`

	rec, env := do(t, e, http.MethodPost, "/api/risks", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var res models.RisksResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, []string{
		risk.RiskLowVolume,
		risk.RiskSmallMarketCap,
		risk.RiskNegativeSentiment,
		risk.RiskMarketVolatility,
		risk.RiskMacroeconomic,
		risk.RiskRegulatory,
	}, res.Risks)
	assert.Equal(t, 1, store.Len())

	rec2, _ := do(t, e, http.MethodPost, "/api/risks", body)
	assert.Equal(t, "HIT", rec2.Header().Get("X-Cache"))
	assert.JSONEq(t, rec.Body.String(), rec2.Body.String())
}

func TestRisks_CacheFailureFallsBack(t *testing.T) {
	e := newTestServer(failingCache{})

	rec, env := do(t, e, http.MethodPost, "/api/risks", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.RisksResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Len(t, res.Risks, 5)
}

func TestForecast(t *testing.T) {
	e := newTestServer(nil)

	rec, env := do(t, e, http.MethodPost, "/api/forecast", validBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.ForecastReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "azuki", report.Collection)
	assert.True(t, report.Prediction.Success)
	assert.Len(t, report.Risks, 3)
}

func TestForecastBatch(t *testing.T) {
	e := newTestServer(nil)

	body := `{"requests": [` + validBody + `, {"collection": "empty"}]}`
	rec, env := do(t, e, http.MethodPost, "/api/forecast/batch", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Reports []models.ForecastReport `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.Reports, 2)
	assert.True(t, res.Reports[0].Prediction.Success)
	assert.False(t, res.Reports[1].Prediction.Success)

	rec, _ = do(t, e, http.MethodPost, "/api/forecast/batch", `{"requests": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimeframes(t *testing.T) {
	e := newTestServer(nil)

	rec, env := do(t, e, http.MethodGet, "/api/timeframes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.TimeframeFactors
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, models.TF24h, rows[0].Timeframe)
	assert.Equal(t, 3.0, rows[0].NoiseAmplitude)
}

func TestHealth(t *testing.T) {
	e := newTestServer(nil)
	rec, _ := do(t, e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
