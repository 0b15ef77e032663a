package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/incidentparser/pkg/redis_client"
)

const DefaultListeningStreamName = "incidentparser_scrape"

const (
	defaultReadCount   = 100
	defaultReadBlock   = 5 * time.Second
	readMaxElapsedTime = time.Hour
	streamStartCursor  = "0-0"
)

// StreamConsumer reads incident reports from a Redis stream and publishes the
// parsed incidents in stream order.
type StreamConsumer struct {
	Client     redis.Cmdable
	StreamName string

	Count int64
	Block time.Duration

	MaxElapsedTime time.Duration

	Processor *Processor
}

func (c *StreamConsumer) streamName() string {
	if c.StreamName == "" {
		return DefaultListeningStreamName
	}
	return c.StreamName
}

// Run consumes new stream entries until the context is cancelled.
func (c *StreamConsumer) Run(ctx context.Context) error {
	log.Info().Str("stream", c.streamName()).Msg("Waiting for messages on stream")

	lastID, err := c.StartID(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}

	for {
		seenID, err := c.ReadStream(ctx, lastID)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}

		if seenID != "" {
			lastID = seenID
		}
	}
}

// StartID returns the ID of the newest entry already in the stream, or "0-0"
// when it is empty. Reading after it yields only entries added from now on,
// without the gap "$" leaves between two blocking reads.
func (c *StreamConsumer) StartID(ctx context.Context) (string, error) {
	entries, err := c.Client.XRevRangeN(ctx, c.streamName(), "+", "-", 1).Result()
	if err != nil {
		return "", fmt.Errorf("finding last entry of stream %s: %w", c.streamName(), err)
	}

	if len(entries) == 0 {
		return streamStartCursor, nil
	}

	return entries[0].ID, nil
}

// ReadStream handles every entry after lastID available in one read and returns
// the ID of the last entry seen, or "" if there was none.
func (c *StreamConsumer) ReadStream(ctx context.Context, lastID string) (string, error) {
	streams, err := c.read(ctx, lastID)
	if err != nil {
		return "", err
	}

	var messages []Message
	for _, stream := range streams {
		for _, entry := range stream.Messages {
			messages = append(messages, Message{ID: entry.ID, Values: entry.Values})
		}
	}

	if len(messages) == 0 {
		return "", nil
	}

	incidents, _ := c.Processor.PrepareBatch(messages)
	for i, incident := range incidents {
		if incident == nil {
			continue
		}

		if err := c.Processor.Dispatch(ctx, incident); err != nil {
			return messages[i].ID, err
		}
	}

	return messages[len(messages)-1].ID, nil
}

func (c *StreamConsumer) read(ctx context.Context, lastID string) ([]redis.XStream, error) {
	count := c.Count
	if count <= 0 {
		count = defaultReadCount
	}

	block := c.Block
	if block <= 0 {
		block = defaultReadBlock
	}

	maxElapsedTime := c.MaxElapsedTime
	if maxElapsedTime <= 0 {
		maxElapsedTime = readMaxElapsedTime
	}

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = maxElapsedTime

	var streams []redis.XStream

	err := backoff.RetryNotify(func() error {
		result, err := c.Client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{c.streamName(), lastID},
			Count:   count,
			Block:   block,
		}).Result()

		if errors.Is(err, redis.Nil) {
			streams = nil
			return nil
		}
		if err != nil && !redis_client.IsRetryable(err) {
			return backoff.Permanent(err)
		}

		streams = result
		return err
	}, backoff.WithContext(retryBackoff, ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("stream", c.streamName()).Str("retry", wait.String()).Msg("Failed to read stream")
	})
	if err != nil {
		return nil, fmt.Errorf("reading stream %s: %w", c.streamName(), err)
	}

	return streams, nil
}
