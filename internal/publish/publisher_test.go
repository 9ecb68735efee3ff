package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/schema-forge/internal/config"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w, "ddl", nil)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), Batch{
		Table:       "users",
		Dialect:     "postgres",
		Statements:  []string{`ALTER TABLE "users" ADD COLUMN "age" integer`},
		GeneratedAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	require.Equal(t, "users", string(msg.Key))
	require.Equal(t, at, msg.Time)
	require.Equal(t, []kafka.Header{
		{Key: "dialect", Value: []byte("postgres")},
		{Key: "table", Value: []byte("users")},
	}, msg.Headers)

	batch, err := Decode(msg)
	require.NoError(t, err)
	require.Equal(t, []string{`ALTER TABLE "users" ADD COLUMN "age" integer`}, batch.Statements)
	require.True(t, at.Equal(batch.GeneratedAt))
}

func TestPublishStampsTime(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w, "ddl", nil)
	require.NoError(t, p.Publish(context.Background(), Batch{Table: "t", Statements: []string{"DROP TABLE t"}}))
	require.False(t, w.msgs[0].Time.IsZero())
}

func TestPublishRejectsEmptyBatch(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w, "ddl", nil)

	require.ErrorIs(t, p.Publish(context.Background(), Batch{Table: "users"}), ErrEmptyBatch)
	require.ErrorIs(t, p.Publish(context.Background(), Batch{Statements: []string{"x"}}), ErrEmptyBatch)
	require.Empty(t, w.msgs)
}

func TestPublishWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := newPublisher(&recordingWriter{err: boom}, "ddl", nil)
	err := p.Publish(context.Background(), Batch{Table: "t", Statements: []string{"x"}})
	require.ErrorIs(t, err, boom)
}

func TestClose(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w, "ddl", nil)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	require.True(t, w.closed)
	require.ErrorIs(t, p.Publish(context.Background(), Batch{Table: "t", Statements: []string{"x"}}), ErrPublisherClosed)
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	_, err := NewKafkaPublisher(config.KafkaConfig{Topic: "ddl"}, nil)
	require.ErrorContains(t, err, "broker")

	_, err = NewKafkaPublisher(config.KafkaConfig{Brokers: []string{"k:9092"}}, nil)
	require.ErrorContains(t, err, "topic")

	p, err := NewKafkaPublisher(config.KafkaConfig{Brokers: []string{"k:9092"}, Topic: "ddl"}, nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
}
