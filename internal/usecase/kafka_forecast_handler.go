package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"NFTPredict/internal/domain/models"
	domrepo "NFTPredict/internal/domain/repository"
	pkgkafka "NFTPredict/pkg/kafka"
	"NFTPredict/pkg/validate"
)

// KafkaForecastHandler turns forecast requests from Kafka into published reports.
type KafkaForecastHandler struct {
	topic   string
	uc      *ForecastUseCase
	metrics domrepo.Metrics
}

func NewKafkaForecastHandler(topic string, uc *ForecastUseCase, metrics domrepo.Metrics) *KafkaForecastHandler {
	return &KafkaForecastHandler{topic: topic, uc: uc, metrics: metrics}
}

func (h *KafkaForecastHandler) Topic() string { return h.topic }

// Handle decodes and validates a ForecastRequest, then forecasts and publishes it.
// Bad payloads are permanent failures; publish errors are returned as retryable.
func (h *KafkaForecastHandler) Handle(ctx context.Context, b []byte) error {
	var req models.ForecastRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("%w: decode forecast request: %v", pkgkafka.ErrPermanent, err)
	}
	if err := validate.DefaultsAndStruct(ctx, &req); err != nil {
		h.metrics.RecordError("consumer_validate")
		return fmt.Errorf("%w: invalid forecast request: %v", pkgkafka.ErrPermanent, err)
	}

	// publish failures stay retryable; the report is this path's only output
	if _, err := h.uc.ForecastAndPublish(ctx, req); err != nil {
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaForecastHandler)(nil)
