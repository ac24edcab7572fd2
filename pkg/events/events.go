package events

import (
	"context"
	"fmt"
	"time"

	"sisagenda/pkg/config"
	"sisagenda/pkg/kafka"
	kafka_config "sisagenda/pkg/kafka/config"
	kafka_middleware "sisagenda/pkg/kafka/middleware"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/middleware"
)

const SchemaVersion = "1"

const (
	AppointmentCreated               = "appointment.created"
	AppointmentConfirmed             = "appointment.confirmed"
	AppointmentRescheduleRequested   = "appointment.reschedule_requested"
	AppointmentRescheduled           = "appointment.rescheduled"
	AppointmentCancellationRequested = "appointment.cancellation_requested"
	AppointmentCancelled             = "appointment.cancelled"
	AppointmentCompleted             = "appointment.completed"

	WeeklyRuleChanged   = "weekly_rule.changed"
	OverrideChanged     = "override.changed"
	DeliveryTypeChanged = "delivery_type.changed"
	OrganizationChanged = "organization.changed"
)

// Payload is the value of every domain event. Dates lists the calendar days
// whose availability changed; empty means every day of the delivery type,
// or of the whole organization when DeliveryTypeID is empty too.
type Payload struct {
	OrganizationID string    `json:"organization_id"`
	DeliveryTypeID string    `json:"delivery_type_id,omitempty"`
	Dates          []string  `json:"dates,omitempty"`
	AppointmentID  string    `json:"appointment_id,omitempty"`
	Status         string    `json:"status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Emitter publishes domain events after a write has been committed. Publish
// failures are logged and never fail the caller's request.
type Emitter struct {
	publisher kafka.Publisher
	source    string
	log       *logger.Logger
}

func NewEmitter(publisher kafka.Publisher, source string, log *logger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		source:    source,
		log:       log,
	}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, payload Payload) {
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = time.Now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(payload.OrganizationID).
		WithValue(payload).
		WithEventType(eventType).
		WithOrganizationID(payload.OrganizationID).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(e.source).
		Build()
	if err != nil {
		e.log.Error("Failed to build event", "event_type", eventType, "error", err)
		return
	}

	if err := e.publisher.Publish(context.WithoutCancel(ctx), msg); err != nil {
		e.log.Error("Failed to publish event",
			"event_type", eventType,
			"organization_id", payload.OrganizationID,
			"error", err,
		)
	}
}

// NewPublisher returns a Kafka producer for topic, or a no-op publisher when
// events are disabled.
func NewPublisher(cfg *config.Config, topic string) (kafka.Publisher, error) {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Events disabled, using no-op publisher", "topic", topic)
		return kafka.NoopPublisher{}, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, topic, cfg.EventsDLQTopic, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	producer.Use(kafka_middleware.MetricsProducerMiddleware())
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	return producer, nil
}
