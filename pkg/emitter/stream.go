package emitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/incidentparser/pkg/ctdf"
	"github.com/travigo/incidentparser/pkg/redis_client"
)

// DataField is the stream entry field holding the incident JSON.
const DataField = "data"

const DefaultStreamName = "incidentparser_incidents"

const dispatchMaxElapsedTime = time.Hour

var ErrNoClient = errors.New("redis client not initialized")

// StreamEmitter appends incidents to a Redis stream as {data: <incident json>}.
type StreamEmitter struct {
	client     redis.Cmdable
	streamName string

	MaxElapsedTime time.Duration
}

func NewStreamEmitter(client redis.Cmdable, streamName string) (*StreamEmitter, error) {
	if client == nil {
		return nil, ErrNoClient
	}

	if streamName == "" {
		streamName = DefaultStreamName
	}

	return &StreamEmitter{
		client:         client,
		streamName:     streamName,
		MaxElapsedTime: dispatchMaxElapsedTime,
	}, nil
}

func (e *StreamEmitter) Dispatch(ctx context.Context, incident *ctdf.Incident) error {
	incidentJSON, err := incident.JSON()
	if err != nil {
		return fmt.Errorf("encoding incident %s: %w", incident.Hash(), err)
	}

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = e.MaxElapsedTime

	return backoff.RetryNotify(func() error {
		err := e.client.XAdd(ctx, &redis.XAddArgs{
			Stream: e.streamName,
			Values: map[string]interface{}{DataField: string(incidentJSON)},
		}).Err()

		if err != nil && !redis_client.IsRetryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}, backoff.WithContext(retryBackoff, ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("stream", e.streamName).Str("retry", wait.String()).Msg("Failed to publish incident")
	})
}
