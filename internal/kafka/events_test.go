package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Novip1906/tasks-http/internal/config"
	"github.com/Novip1906/tasks-http/internal/models"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w *fakeWriter) *EventProducer {
	p := NewEventProducer(&config.Kafka{Brokers: []string{"localhost:9092"}, EventsTopic: "task-events"})
	p.producer.writer = w
	return p
}

func TestSendTaskEvent(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	event := &models.TaskEvent{
		Type:       models.EventCreate,
		TaskId:     3,
		UserId:     42,
		Username:   "admin",
		Title:      "X",
		OccurredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.SendTaskEvent(context.Background(), event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "task-events", msg.Topic)
	assert.Equal(t, "42", string(msg.Key))

	var got models.TaskEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, *event, got)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestSendTaskEventWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newTestProducer(&fakeWriter{err: boom})

	err := p.SendTaskEvent(context.Background(), &models.TaskEvent{Type: models.EventDelete})
	assert.ErrorIs(t, err, boom)
}
