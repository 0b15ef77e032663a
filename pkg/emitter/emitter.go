package emitter

import (
	"context"
	"errors"

	"github.com/travigo/incidentparser/pkg/ctdf"
)

// Emitter hands a parsed incident to a downstream sink.
type Emitter interface {
	Dispatch(ctx context.Context, incident *ctdf.Incident) error
}

type Counter interface {
	Inc()
}

// MultiEmitter dispatches to every emitter and reports all failures together.
type MultiEmitter []Emitter

func (m MultiEmitter) Dispatch(ctx context.Context, incident *ctdf.Incident) error {
	var errs []error

	for _, emitter := range m {
		if err := emitter.Dispatch(ctx, incident); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
