package kafka_middleware

import (
	"context"
	"time"

	"bikeshare/pkg/kafka"
	"bikeshare/pkg/metrics"
)

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.RecordKafkaPublish(msg.Topic, time.Since(start), err == nil)
		return err
	}
}

func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		metrics.RecordKafkaConsume(msg.Topic, time.Since(start), err == nil)
		return err
	}
}
