package events

import (
	"context"
	"fmt"

	"crafthub/pkg/kafka"
	kafka_config "crafthub/pkg/kafka/config"
	kafka_middleware "crafthub/pkg/kafka/middleware"
	"crafthub/pkg/logger"
	"crafthub/pkg/model"
)

const (
	eventSource   = "crafthub-bookings"
	schemaVersion = "1"
)

type messageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher keys every event by booking id so the lifecycle of one hold
// stays ordered within a partition.
type KafkaPublisher struct {
	producer messageProducer
}

func NewKafkaPublisher(cfg *kafka_config.Config, topic string, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(cfg, topic, "", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking events producer: %w", err)
	}
	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
	}
	return &KafkaPublisher{producer: producer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := NewBookingMessage(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func NewBookingMessage(event model.BookingEvent) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventID("").
		WithEventType(event.Type).
		WithSchemaVersion(schemaVersion).
		WithSource(eventSource).
		WithTimestamp(event.OccurredAt).
		Build()
}
