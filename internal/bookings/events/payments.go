package events

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"crafthub/pkg/config"
	apperrors "crafthub/pkg/errors"
	"crafthub/pkg/kafka"
	kafka_config "crafthub/pkg/kafka/config"
	kafka_middleware "crafthub/pkg/kafka/middleware"
	"crafthub/pkg/logger"
	"crafthub/pkg/model"
)

// Confirmer settles holds once their payment is captured.
type Confirmer interface {
	Confirm(ctx context.Context, actor model.Actor, bookingIDs []string) ([]model.ConfirmResult, error)
}

// PaymentConsumer confirms holds from payment.succeeded events.
type PaymentConsumer struct {
	consumer  *kafka.Consumer
	confirmer Confirmer
	log       *logger.Logger
}

func NewPaymentConsumer(cfg *config.Config, kafkaCfg *kafka_config.Config, confirmer Confirmer) (*PaymentConsumer, error) {
	pc := &PaymentConsumer{
		confirmer: confirmer,
		log:       cfg.Log,
	}

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.PaymentsTopic, cfg.PaymentsGroupID, cfg.PaymentsDLQTopic, pc.Handle, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create payments consumer: %w", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}
	pc.consumer = consumer

	return pc, nil
}

// Run consumes payment events until ctx is cancelled, then closes the reader.
func (pc *PaymentConsumer) Run(ctx context.Context) error {
	err := pc.consumer.Start(ctx)
	pc.log.Info("Payments consumer stopping", "lag", pc.consumer.Lag())
	if closeErr := pc.consumer.Close(); closeErr != nil {
		pc.log.Error("Failed to close payments consumer", "error", closeErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Handle decodes one payment event and confirms its holds. Malformed payloads
// and rejected confirmations are permanent; anything else is retried.
func (pc *PaymentConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != "" && eventType != model.EventPaymentSucceeded {
		pc.log.Debug("Ignoring payment event", "event_type", eventType, "key", msg.Key)
		return nil
	}

	var payment model.PaymentSucceeded
	if err := msg.DecodeValue(&payment); err != nil {
		return kafka.NewPermanentError("failed to decode payment event", err)
	}
	if payment.UserID == "" || len(payment.BookingIDs) == 0 {
		return kafka.NewPermanentError(
			fmt.Sprintf("payment %s has no user or bookings", payment.PaymentID), nil)
	}

	actor := model.Actor{UserID: payment.UserID, Role: model.RoleUser}
	results, err := pc.confirmer.Confirm(ctx, actor, payment.BookingIDs)
	if err != nil {
		if isRejected(err) {
			return kafka.NewPermanentError("payment confirmation rejected", err)
		}
		return kafka.NewTransientError("payment confirmation failed", err)
	}

	confirmed := 0
	for _, result := range results {
		if result.Outcome == model.OutcomeConfirmed {
			confirmed++
			continue
		}
		pc.log.Warn("Paid booking was not confirmed",
			"payment_id", payment.PaymentID,
			"booking_id", result.BookingID,
			"outcome", result.Outcome,
			"status", result.Status,
		)
	}

	pc.log.Info("Payment applied to bookings",
		"payment_id", payment.PaymentID,
		"user_id", payment.UserID,
		"requested", len(payment.BookingIDs),
		"confirmed", confirmed,
	)
	return nil
}

func isRejected(err error) bool {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.StatusCode() >= http.StatusBadRequest && appErr.StatusCode() < http.StatusInternalServerError
}
