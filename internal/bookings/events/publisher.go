package events

import (
	"context"
	"fmt"

	"crafthub/pkg/config"
	kafka_config "crafthub/pkg/kafka/config"
	"crafthub/pkg/model"
)

// Publisher fans booking lifecycle events out to the rest of the platform.
type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
	Close() error
}

// NewPublisher builds the publisher selected by EVENTS_BROKER. kafkaCfg may be
// nil unless the broker is kafka.
func NewPublisher(cfg *config.Config, kafkaCfg *kafka_config.Config) (Publisher, error) {
	switch cfg.EventsBroker {
	case config.EventsBrokerKafka:
		if kafkaCfg == nil {
			return nil, fmt.Errorf("kafka configuration is required for the kafka events broker")
		}
		return NewKafkaPublisher(kafkaCfg, cfg.BookingEventsTopic, cfg.Log)
	case config.EventsBrokerRabbitMQ:
		return NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.BookingEventsTopic, cfg.Log)
	case config.EventsBrokerNone:
		return NoopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown events broker: %s", cfg.EventsBroker)
	}
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.BookingEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
