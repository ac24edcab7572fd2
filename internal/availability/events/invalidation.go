package events

import (
	"context"
	"fmt"

	"sisagenda/internal/availability/service"
	"sisagenda/pkg/config"
	domainevents "sisagenda/pkg/events"
	"sisagenda/pkg/kafka"
	kafka_config "sisagenda/pkg/kafka/config"
	kafka_middleware "sisagenda/pkg/kafka/middleware"
)

// NewInvalidationHandler drops cached availability for the organization,
// delivery type and dates named by an appointment or schedule event.
func NewInvalidationHandler(invalidator service.CacheInvalidator) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var payload domainevents.Payload
		if err := msg.DecodeValue(&payload); err != nil {
			return err
		}
		if payload.OrganizationID == "" {
			return kafka.NewPermanentError("event has no organization id", kafka.ErrInvalidMessage)
		}

		if err := invalidator.Invalidate(ctx, payload.OrganizationID, payload.DeliveryTypeID, payload.Dates...); err != nil {
			return kafka.NewTransientError("failed to invalidate availability cache", err)
		}
		return nil
	}
}

// NewConsumers subscribes handler to the appointment and schedule topics
// under the availability consumer group.
func NewConsumers(cfg *config.Config, handler kafka.MessageHandler) ([]*kafka.Consumer, error) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	topics := []string{cfg.AppointmentsTopic, cfg.SchedulesTopic}
	consumers := make([]*kafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		consumer, err := kafka.NewConsumer(kafkaCfg, topic, cfg.AvailabilityGroupID, cfg.EventsDLQTopic, handler, cfg.Log)
		if err != nil {
			for _, c := range consumers {
				_ = c.Close()
			}
			return nil, fmt.Errorf("failed to create consumer for %s: %w", topic, err)
		}
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumers = append(consumers, consumer)
	}
	return consumers, nil
}
