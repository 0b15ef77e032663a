package incidentparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/incidentparser/pkg/ctdf"
)

const descriptionSeparator = "*"

var ErrMissingDescriptionSeparator = errors.New("stop information without description separator")

// MalformedStopError is returned for a stop candidate that is not "<name> <time>".
type MalformedStopError struct {
	Candidate string
}

func (e *MalformedStopError) Error() string {
	return fmt.Sprintf("could not extract stop and time from %q", e.Candidate)
}

// Counter is incremented once for every message whose stop extraction failed.
// prometheus.Counter satisfies it.
type Counter interface {
	Inc()
}

type noopCounter struct{}

func (noopCounter) Inc() {}

// Result is the outcome of parsing one incident text.
// Err is set when the text looked structured but its stops could not be
// extracted, in which case Stops is empty.
type Result struct {
	Description string
	Stops       []ctdf.StopTime

	Err error
}

// Parser turns raw incident texts into a description and the affected stops.
// It is safe for concurrent use.
type Parser struct {
	patterns *Patterns
	failures Counter
}

func NewParser(failures Counter) *Parser {
	if failures == nil {
		failures = noopCounter{}
	}

	return &Parser{
		patterns: NewPatterns(),
		failures: failures,
	}
}

func (p *Parser) Parse(text string) (string, []ctdf.StopTime) {
	result := p.Extract(text)

	return result.Description, result.Stops
}

func (p *Parser) Extract(text string) Result {
	if !p.patterns.ContainsStopInformation(text) {
		return Result{Description: p.patterns.CleanProse(text)}
	}

	return p.extractStopInformation(text)
}

func (p *Parser) extractStopInformation(text string) Result {
	description, blob, found := strings.Cut(text, descriptionSeparator)
	if !found {
		p.reportFailure(text, ErrMissingDescriptionSeparator)

		return Result{
			Description: p.patterns.CleanProse(text),
			Err:         ErrMissingDescriptionSeparator,
		}
	}

	candidates := p.stopCandidates(strings.TrimSpace(blob))
	stops := make([]ctdf.StopTime, 0, len(candidates))

	for _, candidate := range candidates {
		stop, ok := p.patterns.ExtractStop(candidate)
		if !ok {
			err := &MalformedStopError{Candidate: candidate}
			p.reportFailure(text, err)

			return Result{
				Description: strings.TrimSpace(text),
				Err:         err,
			}
		}

		stops = append(stops, stop)
	}

	return Result{
		Description: strings.TrimSpace(description),
		Stops:       stops,
	}
}

// stopCandidates splits the blob on the stop markers, dropping empty pieces.
// A bare stop name directly followed by a piece starting with its time
// ("Central (H) 08:15") is joined back into one candidate.
func (p *Parser) stopCandidates(blob string) []string {
	var candidates []string

	pieces := p.patterns.SplitStops(blob)
	for i := 0; i < len(pieces); i++ {
		piece := strings.TrimSpace(pieces[i])
		if piece == "" {
			continue
		}

		if p.patterns.isNameOnly(piece) && i+1 < len(pieces) {
			next := strings.TrimSpace(pieces[i+1])
			if p.patterns.startsWithTime(next) {
				piece = piece + " " + next
				i++
			}
		}

		candidates = append(candidates, piece)
	}

	return candidates
}

func (p *Parser) reportFailure(text string, err error) {
	log.Warn().Str("text", text).Err(err).Msg("Can't parse stop information")
	p.failures.Inc()
}
