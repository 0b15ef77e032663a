package emitter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/incidentparser/pkg/ctdf"
)

func TestMultiEmitterDispatchesToAll(t *testing.T) {
	first := &countingEmitter{}
	second := &countingEmitter{}

	err := MultiEmitter{first, second}.Dispatch(context.Background(), testIncident())

	assert.NoError(t, err)
	assert.Len(t, first.dispatched, 1)
	assert.Len(t, second.dispatched, 1)
}

func TestMultiEmitterJoinsErrors(t *testing.T) {
	streamErr := errors.New("stream gone")
	natsErr := errors.New("nats gone")
	working := &countingEmitter{}

	err := MultiEmitter{&countingEmitter{err: streamErr}, working, &countingEmitter{err: natsErr}}.Dispatch(context.Background(), testIncident())

	assert.ErrorIs(t, err, streamErr)
	assert.ErrorIs(t, err, natsErr)
	assert.Len(t, working.dispatched, 1)
}

func TestNATSEmitterSubject(t *testing.T) {
	natsEmitter := &NATSEmitter{subject: "incidents"}

	assert.Equal(t, "incidents.7", natsEmitter.Subject(testIncident()))
	assert.Equal(t, "incidents.12", natsEmitter.Subject(ctdf.NewIncident(12, "x", nil)))
}

func TestNewNATSEmitterUnreachable(t *testing.T) {
	_, err := NewNATSEmitter("nats://127.0.0.1:1", "")
	assert.Error(t, err)
}
