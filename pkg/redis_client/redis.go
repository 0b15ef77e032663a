package redis_client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/incidentparser/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const connectMaxElapsedTime = 5 * time.Minute

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["INCIDENTPARSER_REDIS_ADDRESS"] != "" {
		address = env["INCIDENTPARSER_REDIS_ADDRESS"]
	}

	if env["INCIDENTPARSER_REDIS_PASSWORD"] != "" {
		password = env["INCIDENTPARSER_REDIS_PASSWORD"]
	}

	if env["INCIDENTPARSER_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["INCIDENTPARSER_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return fmt.Errorf("invalid INCIDENTPARSER_REDIS_DATABASE: %w", err)
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	log.Info().Str("address", address).Msg("Trying to connect to redis")

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = connectMaxElapsedTime

	err := backoff.RetryNotify(func() error {
		return Client.Ping(context.Background()).Err()
	}, retryBackoff, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("retry", wait.String()).Msg("Redis not reachable")
	})
	if err != nil {
		return fmt.Errorf("connecting to redis at %s: %w", address, err)
	}

	log.Info().Msg("Successfully connected to redis")

	QueueConnection, err = rmq.OpenConnectionWithRedisClient("incidentparser", Client, nil)
	if err != nil {
		return err
	}

	return nil
}

// IsRetryable is false for replies from the redis server and for cancellation,
// everything else is treated as a connection problem worth retrying.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var redisError redis.Error
	return !errors.As(err, &redisError)
}
