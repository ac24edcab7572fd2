package kafka_middleware

import (
	"context"
	"time"

	"sisagenda/pkg/kafka"
	"sisagenda/pkg/metrics"
)

const (
	directionPublish = "publish"
	directionConsume = "consume"
)

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return observe(directionPublish)
}

func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return observe(directionConsume)
}

func observe(direction string) func(context.Context, kafka.Message, kafka.MessageHandler) error {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.ObserveKafkaMessage(direction, msg.GetEventType(), err, time.Since(start))
		return err
	}
}
