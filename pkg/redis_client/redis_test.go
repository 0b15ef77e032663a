package redis_client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Set(context.Background(), "key", "value", 0).Err())
	wrongType := client.XLen(context.Background(), "key").Err()
	require.Error(t, wrongType)

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"cancelled", context.Canceled, false},
		{"wrapped deadline", fmt.Errorf("reading: %w", context.DeadlineExceeded), false},
		{"server reply", wrongType, false},
		{"wrapped server reply", fmt.Errorf("reading: %w", wrongType), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestConnect(t *testing.T) {
	server := miniredis.RunT(t)

	t.Setenv("INCIDENTPARSER_REDIS_ADDRESS", server.Addr())
	t.Setenv("INCIDENTPARSER_REDIS_DATABASE", "0")

	require.NoError(t, Connect())
	t.Cleanup(func() {
		<-QueueConnection.StopAllConsuming()
		Client.Close()
	})

	assert.NoError(t, Client.Ping(context.Background()).Err())
	assert.NotNil(t, QueueConnection)
}

func TestConnectInvalidDatabase(t *testing.T) {
	t.Setenv("INCIDENTPARSER_REDIS_DATABASE", "first")

	assert.Error(t, Connect())
}
