// Package relay forwards outbox notification jobs to kafka.
package relay

import (
	"context"
	"log/slog"
	"time"

	"scent-fulfillment/internal/pkg/config"
	"scent-fulfillment/internal/pkg/errs"
	"scent-fulfillment/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

const writeTimeout = 10 * time.Second

type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: writeTimeout,
		},
		logger: logger,
	}
}

// Publish writes one message. The topic is per message so one writer serves
// every job kind.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		p.logger.Error("failed to publish notification", "topic", topic, "key", key, "error", err.Error())
		return errs.Wrap(err, "kafka write")
	}

	p.logger.Debug("notification published", "topic", topic, "key", key)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
