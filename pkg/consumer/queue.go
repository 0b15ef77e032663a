package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

const DefaultQueueName = "incidentparser_queue"

var ErrNoQueueConnection = errors.New("no queue connection")

// QueueConsumer runs batch consumers on an rmq queue.
type QueueConsumer struct {
	Connection rmq.Connection
	QueueName  string

	NumberConsumers int
	BatchSize       int

	Timeout time.Duration

	Consumer rmq.BatchConsumer
}

func (c *QueueConsumer) Setup() (rmq.Queue, error) {
	if c.Connection == nil {
		return nil, ErrNoQueueConnection
	}

	log.Info().Str("queue", c.QueueName).Msg("Starting consumers")

	queue, err := c.Connection.OpenQueue(c.QueueName)
	if err != nil {
		return nil, fmt.Errorf("opening queue %s: %w", c.QueueName, err)
	}
	if err := queue.StartConsuming(int64(c.NumberConsumers*c.BatchSize), 1*time.Second); err != nil {
		return nil, fmt.Errorf("consuming queue %s: %w", c.QueueName, err)
	}

	for i := 0; i < c.NumberConsumers; i++ {
		log.Info().Msgf("Starting %s consumer %d", c.QueueName, i)

		if _, err := queue.AddBatchConsumer(fmt.Sprintf("incident-queue-%d", i), int64(c.BatchSize), c.Timeout, c.Consumer); err != nil {
			return nil, fmt.Errorf("adding consumer %d: %w", i, err)
		}
	}

	return queue, nil
}

// PublishReport queues a report in the shape BatchConsumer reads.
func PublishReport(connection rmq.Connection, queueName string, line string, problem string) error {
	if connection == nil {
		return ErrNoQueueConnection
	}

	queue, err := connection.OpenQueue(queueName)
	if err != nil {
		return fmt.Errorf("opening queue: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		LineField:    line,
		ProblemField: problem,
	})
	if err != nil {
		return err
	}

	return queue.PublishBytes(payload)
}

// BatchConsumer parses queued incident reports. Unusable reports are acked
// and dropped, deliveries whose incident could not be dispatched are rejected.
type BatchConsumer struct {
	Processor *Processor
}

func (c *BatchConsumer) Consume(batch rmq.Deliveries) {
	ctx := context.Background()

	messages := make([]Message, 0, len(batch))
	deliveries := make([]rmq.Delivery, 0, len(batch))

	for _, delivery := range batch {
		message, err := DecodeQueuePayload(delivery.Payload())
		if err != nil {
			log.Error().Err(err).Str("payload", delivery.Payload()).Msg("Failed to decode queued message")
			c.Processor.Collector.ConsumedMessageErrors.Inc()

			ack(delivery)
			continue
		}

		messages = append(messages, message)
		deliveries = append(deliveries, delivery)
	}

	incidents, _ := c.Processor.PrepareBatch(messages)

	for i, incident := range incidents {
		if incident == nil {
			ack(deliveries[i])
			continue
		}

		if err := c.Processor.Dispatch(ctx, incident); err != nil {
			log.Error().Err(err).Msg("Failed to publish incident")

			reject(deliveries[i])
			continue
		}

		ack(deliveries[i])
	}
}

func ack(delivery rmq.Delivery) {
	if err := delivery.Ack(); err != nil {
		log.Error().Err(err).Msg("Failed to ack message")
	}
}

func reject(delivery rmq.Delivery) {
	if err := delivery.Reject(); err != nil {
		log.Error().Err(err).Msg("Failed to reject message")
	}
}
