package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"NFTPredict/internal/domain/models"
	icache "NFTPredict/internal/service/cache"
	apimetrics "NFTPredict/internal/service/metrics"
	"NFTPredict/internal/services/prediction"
	"NFTPredict/internal/usecase"
	xhttp "NFTPredict/pkg/http"
	xlogger "NFTPredict/pkg/logger"
)

const batchWorkers = 8

// CacheConfig controls caching of risk responses. A nil Store disables it.
type CacheConfig struct {
	Store  icache.BytesCache
	TTL    time.Duration
	Prefix string
}

// ForecastEchoHandler exposes the forecast use case over HTTP.
type ForecastEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.ForecastUseCase
	cache  CacheConfig
}

func NewForecastEchoHandler(logger *xlogger.Logger, uc *usecase.ForecastUseCase, cache CacheConfig) *ForecastEchoHandler {
	apimetrics.Register()
	return &ForecastEchoHandler{logger: logger, uc: uc, cache: cache}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/predict", h.Predict)
	g.POST("/risks", h.Risks)
	g.POST("/forecast", h.Forecast)
	g.POST("/forecast/batch", h.ForecastBatch)
	g.GET("/timeframes", h.Timeframes)
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Predict returns the prediction bundle. success=false is still a 200: it is a domain result.
func (h *ForecastEchoHandler) Predict(c echo.Context) error {
	defer observe("predict", time.Now())
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.EndpointErrors.WithLabelValues("predict").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.uc.Predict(c.Request().Context(), *req))
}

func (h *ForecastEchoHandler) Risks(c echo.Context) error {
	defer observe("risks", time.Now())
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.EndpointErrors.WithLabelValues("risks").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	key, ok := h.riskKey(*req)
	if ok {
		if b, hit := h.cachedRisks(ctx, key); hit {
			c.Response().Header().Set("X-Cache", "HIT")
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	body := xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    models.RisksResponse{Risks: h.uc.Risks(ctx, *req)},
	}
	b, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("risks encode error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if ok {
		if err := h.cache.Store.SetBytes(ctx, key, b, h.cache.TTL); err != nil {
			h.logger.Warn("risks cache write failed", xlogger.Error(err))
		}
		c.Response().Header().Set("X-Cache", "MISS")
	}
	return c.JSONBlob(http.StatusOK, b)
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	defer observe("forecast", time.Now())
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.EndpointErrors.WithLabelValues("forecast").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.uc.Forecast(c.Request().Context(), *req)
	if err != nil {
		apimetrics.EndpointErrors.WithLabelValues("forecast").Inc()
		h.logger.Warn("forecast aborted", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("request cancelled").WithError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *ForecastEchoHandler) ForecastBatch(c echo.Context) error {
	defer observe("forecast_batch", time.Now())
	req := &models.BatchForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.EndpointErrors.WithLabelValues("forecast_batch").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	reports, err := h.uc.ForecastBatch(c.Request().Context(), req.Requests, batchWorkers)
	if err != nil {
		apimetrics.EndpointErrors.WithLabelValues("forecast_batch").Inc()
		h.logger.Warn("forecast batch aborted", xlogger.Error(err), xlogger.Int("size", len(req.Requests)))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("request cancelled").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"reports": reports})
}

// Timeframes publishes the static factor table, including the columns the scoring ignores.
func (h *ForecastEchoHandler) Timeframes(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, prediction.TimeframeTable())
}

// riskKey hashes the normalized inputs the assessor reads.
func (h *ForecastEchoHandler) riskKey(req models.ForecastRequest) (string, bool) {
	if h.cache.Store == nil {
		return "", false
	}
	in, err := models.Normalize(req.MarketData, req.AIAnalysis)
	if err != nil {
		return "", false
	}
	key, err := icache.Key(h.cache.Prefix, struct {
		Volume24h float64          `json:"v"`
		MarketCap float64          `json:"c"`
		Sentiment models.Sentiment `json:"s"`
	}{in.Volume24h, in.MarketCap, in.Sentiment})
	if err != nil {
		return "", false
	}
	return key, true
}

func (h *ForecastEchoHandler) cachedRisks(ctx context.Context, key string) ([]byte, bool) {
	b, ok, err := h.cache.Store.GetBytes(ctx, key)
	switch {
	case err != nil:
		apimetrics.CacheLookups.WithLabelValues("error").Inc()
		h.logger.Warn("risks cache read failed", xlogger.Error(err))
		return nil, false
	case !ok:
		apimetrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	default:
		apimetrics.CacheLookups.WithLabelValues("hit").Inc()
		return b, true
	}
}

func observe(endpoint string, start time.Time) {
	apimetrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
