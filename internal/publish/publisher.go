// Package publish sends generated DDL batches to Kafka so downstream
// migration runners can apply them.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/config"
	"github.com/rzpsarthak13/schema-forge/internal/logging"
)

var (
	// ErrPublisherClosed is returned when publishing on a closed Publisher.
	ErrPublisherClosed = errors.New("publisher is closed")

	// ErrEmptyBatch is returned for a batch without a table or statements.
	ErrEmptyBatch = errors.New("batch has no statements")
)

// Batch is the ordered list of statements generated for one table.
type Batch struct {
	Table       string    `json:"table"`
	Dialect     string    `json:"dialect"`
	Statements  []string  `json:"statements"`
	GeneratedAt time.Time `json:"generated_at"`
}

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes batches to a Kafka topic, one message per batch, keyed by
// table so that all statements for a table stay on one partition.
type Publisher struct {
	writer messageWriter
	topic  string
	log    *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a synchronous Kafka producer for cfg.Topic.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("Kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		MaxAttempts:  3,
		Async:        false,
	}

	p := newPublisher(writer, cfg.Topic, logger)
	p.log.Info("kafka publisher initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.Int("required_acks", cfg.RequiredAcks))
	return p, nil
}

func newPublisher(w messageWriter, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: w,
		topic:  topic,
		log:    logging.OrNop(logger).Named("publish").With(zap.String("topic", topic)),
	}
}

// Publish writes batch as a single message. GeneratedAt is set to the
// current time when zero.
func (p *Publisher) Publish(ctx context.Context, batch Batch) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	if batch.Table == "" {
		return fmt.Errorf("%w: table name is required", ErrEmptyBatch)
	}
	if len(batch.Statements) == 0 {
		return ErrEmptyBatch
	}
	if batch.GeneratedAt.IsZero() {
		batch.GeneratedAt = time.Now().UTC()
	}

	msg, err := encode(batch)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("failed to publish batch", zap.String("table", batch.Table), zap.Error(err))
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.log.Info("published DDL batch",
		zap.String("table", batch.Table),
		zap.String("dialect", batch.Dialect),
		zap.Int("statements", len(batch.Statements)))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}
	return nil
}

func encode(batch Batch) (kafka.Message, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal batch: %w", err)
	}
	return kafka.Message{
		Key:   []byte(batch.Table),
		Value: data,
		Time:  batch.GeneratedAt,
		Headers: []kafka.Header{
			{Key: "dialect", Value: []byte(batch.Dialect)},
			{Key: "table", Value: []byte(batch.Table)},
		},
	}, nil
}

// Decode parses a message produced by Publish.
func Decode(msg kafka.Message) (Batch, error) {
	var batch Batch
	if err := json.Unmarshal(msg.Value, &batch); err != nil {
		return Batch{}, fmt.Errorf("failed to unmarshal batch: %w", err)
	}
	return batch, nil
}
