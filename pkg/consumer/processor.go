package consumer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/incidentparser/pkg/ctdf"
	"github.com/travigo/incidentparser/pkg/emitter"
	"github.com/travigo/incidentparser/pkg/incidentparser"
	"github.com/travigo/incidentparser/pkg/stats"
)

const defaultWorkers = 4

// FailureRecorder is told about every text whose stops could not be extracted.
type FailureRecorder interface {
	RecordParseFailure(line int, text string, err error)
}

// Processor turns messages into incidents and dispatches them.
type Processor struct {
	Parser    *incidentparser.Parser
	Emitter   emitter.Emitter
	Collector *stats.Collector
	Failures  FailureRecorder

	Workers int
}

func NewProcessor(collector *stats.Collector, incidentEmitter emitter.Emitter) *Processor {
	return &Processor{
		Parser:    incidentparser.NewParser(collector.ParsingErrors),
		Emitter:   incidentEmitter,
		Collector: collector,
		Workers:   defaultWorkers,
	}
}

// Prepare builds the incident for a message. Messages without a usable line or
// problem are counted, logged and returned as an error; no incident is built.
func (p *Processor) Prepare(message Message) (*ctdf.Incident, error) {
	line, problem, err := message.Fields()
	if err != nil {
		log.Error().Err(err).Str("id", message.ID).Interface("message", message.Values).Msg("Missing 'line' and/or 'problem' in message")
		p.Collector.ConsumedMessageErrors.Inc()

		return nil, err
	}

	log.Debug().Int("line", line).Str("problem", problem).Msg("Received message")

	result := p.Parser.Extract(problem)
	if result.Err != nil && p.Failures != nil {
		p.Failures.RecordParseFailure(line, problem, result.Err)
	}

	incident := ctdf.NewIncident(line, result.Description, result.Stops)
	p.Collector.ConsumedMessages.Inc()

	return incident, nil
}

// Dispatch hands an incident to the emitter and counts the outcome.
func (p *Processor) Dispatch(ctx context.Context, incident *ctdf.Incident) error {
	if err := p.Emitter.Dispatch(ctx, incident); err != nil {
		p.Collector.PublishErrors.Inc()

		return fmt.Errorf("dispatching incident %s: %w", incident.Hash(), err)
	}

	p.Collector.PublishedIncidents.Inc()

	return nil
}

// PrepareBatch parses the messages concurrently. The returned slices are in
// message order; an entry has either an incident or an error.
func (p *Processor) PrepareBatch(messages []Message) ([]*ctdf.Incident, []error) {
	incidents := make([]*ctdf.Incident, len(messages))
	errs := make([]error, len(messages))

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	workerPool := pool.New().WithMaxGoroutines(workers)
	for i, message := range messages {
		workerPool.Go(func() {
			incidents[i], errs[i] = p.Prepare(message)
		})
	}
	workerPool.Wait()

	return incidents, errs
}
