package repository

import (
	"context"

	"DriftWatch/internal/domain/models"
	domrepo "DriftWatch/internal/domain/repository"
	pkgkafka "DriftWatch/pkg/kafka"
)

// KafkaAlertPublisher fans persisted alert records out to a Kafka topic so
// downstream consumers (pagers, warehouses) can react without polling the
// alert store. Keyed by metric date to keep one day's alerts on one
// partition.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, alert *models.Alert) error {
	return p.producer.Publish(ctx, p.topic, []byte(alert.MetricDate.String()), alert)
}

var _ domrepo.AlertEventPublisher = (*KafkaAlertPublisher)(nil)
