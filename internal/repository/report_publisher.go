package repository

import (
	"context"
	"fmt"

	"NFTPredict/internal/domain/models"
	"NFTPredict/internal/domain/repository"
)

// producer is the part of pkg/kafka.Producer the publisher needs.
type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaReportPublisher implements ReportPublisher for Kafka.
// Reports are keyed by collection so one collection's history stays ordered.
type KafkaReportPublisher struct {
	producer producer
	topic    string
}

// NewKafkaReportPublisher creates a Kafka report publisher.
func NewKafkaReportPublisher(p producer, topic string) repository.ReportPublisher {
	return &KafkaReportPublisher{producer: p, topic: topic}
}

func (p *KafkaReportPublisher) PublishReport(ctx context.Context, r *models.ForecastReport) error {
	key := r.Collection
	if key == "" {
		key = r.ID
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(key), r); err != nil {
		return fmt.Errorf("publish report %s: %w", r.ID, err)
	}
	return nil
}

func (p *KafkaReportPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
