package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/domain/trade"
	"github.com/buneko/backend/internal/infrastructure/config"
	"github.com/buneko/backend/internal/infrastructure/logger"
)

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a writer for the configured brokers and topic
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
}

// KafkaOrderPublisher writes order events to a Kafka topic. Messages are
// keyed by order id so every event of one order lands on the same partition.
type KafkaOrderPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaOrderPublisher creates a publisher on an existing writer
func NewKafkaOrderPublisher(writer *kafka.Writer, zapLogger *zap.Logger) *KafkaOrderPublisher {
	return newKafkaOrderPublisher(writer, zapLogger)
}

func newKafkaOrderPublisher(writer messageWriter, zapLogger *zap.Logger) *KafkaOrderPublisher {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &KafkaOrderPublisher{writer: writer, logger: zapLogger}
}

// PublishOrderEvent encodes the event as JSON and writes it
func (p *KafkaOrderPublisher) PublishOrderEvent(ctx context.Context, event trade.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%d", event.OrderID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID.String())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write order event %s: %w", event.Type, err)
	}
	logger.Enrich(ctx, p.logger).Debug("order event published",
		zap.String("event_type", event.Type),
		zap.Int64("order_id", event.OrderID),
	)
	return nil
}

// Close flushes pending messages and closes the writer
func (p *KafkaOrderPublisher) Close() error {
	return p.writer.Close()
}

// LogOrderPublisher records order events in the log. It is used when no
// broker is configured.
type LogOrderPublisher struct {
	logger *zap.Logger
}

// NewLogOrderPublisher creates a log-only publisher
func NewLogOrderPublisher(zapLogger *zap.Logger) *LogOrderPublisher {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &LogOrderPublisher{logger: zapLogger}
}

// PublishOrderEvent logs the event at info level
func (p *LogOrderPublisher) PublishOrderEvent(ctx context.Context, event trade.OrderEvent) error {
	logger.Enrich(ctx, p.logger).Info("order event",
		zap.String("event_type", event.Type),
		zap.String("event_id", event.ID.String()),
		zap.Int64("order_id", event.OrderID),
		zap.String("status", event.Status.String()),
		zap.String("previous_status", event.PreviousStatus.String()),
		zap.String("total_amount", event.TotalAmount.StringFixed(2)),
	)
	return nil
}

var (
	_ trade.OrderEventPublisher = (*KafkaOrderPublisher)(nil)
	_ trade.OrderEventPublisher = (*LogOrderPublisher)(nil)
)
