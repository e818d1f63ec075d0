package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Novip1906/tasks-http/internal/config"
	"github.com/Novip1906/tasks-http/internal/models"
)

// EventProducer publishes task lifecycle events keyed by user id, so one
// user's events stay ordered within a partition.
type EventProducer struct {
	producer    *producer
	eventsTopic string
}

func NewEventProducer(kafkaCfg *config.Kafka) *EventProducer {
	return &EventProducer{
		producer:    newProducer(kafkaCfg.Brokers),
		eventsTopic: kafkaCfg.EventsTopic,
	}
}

func (e *EventProducer) SendTaskEvent(ctx context.Context, event *models.TaskEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	err = e.producer.SendMessage(
		ctx,
		e.eventsTopic,
		[]byte(strconv.FormatInt(event.UserId, 10)),
		jsonData,
	)
	if err != nil {
		return fmt.Errorf("failed to send task event: %w", err)
	}

	return nil
}

func (e *EventProducer) Close() error {
	return e.producer.Close()
}
