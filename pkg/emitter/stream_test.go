package emitter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/incidentparser/pkg/ctdf"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return server, client
}

func testIncident() *ctdf.Incident {
	return ctdf.NewIncident(7, "Signal fault", []ctdf.StopTime{
		{Station: "Central", Time: "08:15"},
		{Station: "North", Time: "08:40"},
	})
}

func TestNewStreamEmitterWithoutClient(t *testing.T) {
	_, err := NewStreamEmitter(nil, "")
	assert.ErrorIs(t, err, ErrNoClient)
}

func TestStreamEmitterDispatch(t *testing.T) {
	_, client := newTestClient(t)

	streamEmitter, err := NewStreamEmitter(client, "")
	require.NoError(t, err)

	require.NoError(t, streamEmitter.Dispatch(context.Background(), testIncident()))

	entries, err := client.XRange(context.Background(), DefaultStreamName, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, ok := entries[0].Values[DataField].(string)
	require.True(t, ok)
	assert.Contains(t, data, `"direction":"Central -> North"`)

	var record ctdf.IncidentRecord
	require.NoError(t, json.Unmarshal([]byte(data), &record))
	assert.Equal(t, 7, record.Line)
	assert.Equal(t, "Signal fault", record.What)
	assert.Equal(t, "66587cf711a5fe2", record.Hash)
	assert.Len(t, record.Stations, 2)
}

func TestStreamEmitterKeepsUnicode(t *testing.T) {
	_, client := newTestClient(t)

	streamEmitter, err := NewStreamEmitter(client, "incidents")
	require.NoError(t, err)

	require.NoError(t, streamEmitter.Dispatch(context.Background(), ctdf.NewIncident(1, "Störung", nil)))

	entries, err := client.XRange(context.Background(), "incidents", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Values[DataField], "Störung")
}

func TestStreamEmitterGivesUpOnClosedServer(t *testing.T) {
	server, client := newTestClient(t)

	streamEmitter, err := NewStreamEmitter(client, "incidents")
	require.NoError(t, err)
	streamEmitter.MaxElapsedTime = 200 * time.Millisecond

	server.Close()

	assert.Error(t, streamEmitter.Dispatch(context.Background(), testIncident()))
}

func TestStreamEmitterWrongTypeIsPermanent(t *testing.T) {
	_, client := newTestClient(t)
	require.NoError(t, client.Set(context.Background(), "incidents", "not a stream", 0).Err())

	streamEmitter, err := NewStreamEmitter(client, "incidents")
	require.NoError(t, err)

	start := time.Now()
	assert.Error(t, streamEmitter.Dispatch(context.Background(), testIncident()))
	assert.Less(t, time.Since(start), 5*time.Second)
}
