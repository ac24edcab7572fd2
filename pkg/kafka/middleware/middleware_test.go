package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"sisagenda/pkg/kafka"
	"sisagenda/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMiddlewarePassThrough(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	boom := errors.New("boom")
	msg := kafka.Message{Key: "org-1", Topic: "sisagenda.appointments", Headers: map[string]string{}}

	tests := []struct {
		name string
		mw   func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error
	}{
		{"logging producer", LoggingProducerMiddleware(log)},
		{"logging consumer", LoggingConsumerMiddleware(log)},
		{"metrics producer", MetricsProducerMiddleware()},
		{"metrics consumer", MetricsConsumerMiddleware()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			err := tt.mw(context.Background(), msg, func(ctx context.Context, m kafka.Message) error {
				called = true
				assert.Equal(t, "org-1", m.Key)
				return boom
			})
			assert.True(t, called)
			assert.ErrorIs(t, err, boom)
		})
	}
}
