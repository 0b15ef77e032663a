package emitter

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/travigo/incidentparser/pkg/ctdf"
)

const DefaultNATSSubject = "incidents"

// NATSEmitter publishes the incident JSON on "<subject>.<line>".
type NATSEmitter struct {
	conn    *nats.Conn
	subject string
}

func NewNATSEmitter(url string, subject string) (*NATSEmitter, error) {
	conn, err := nats.Connect(url,
		nats.Name("incidentparser"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}

	if subject == "" {
		subject = DefaultNATSSubject
	}

	return &NATSEmitter{conn: conn, subject: subject}, nil
}

func (e *NATSEmitter) Subject(incident *ctdf.Incident) string {
	return fmt.Sprintf("%s.%d", e.subject, incident.Line())
}

func (e *NATSEmitter) Dispatch(_ context.Context, incident *ctdf.Incident) error {
	incidentJSON, err := incident.JSON()
	if err != nil {
		return fmt.Errorf("encoding incident %s: %w", incident.Hash(), err)
	}

	return e.conn.Publish(e.Subject(incident), incidentJSON)
}

func (e *NATSEmitter) Close() {
	if e.conn == nil {
		return
	}

	if err := e.conn.Drain(); err != nil {
		e.conn.Close()
	}
}
