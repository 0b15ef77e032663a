package consumer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	LineField    = "line"
	ProblemField = "problem"
)

var ErrMissingField = errors.New("missing field")
var ErrInvalidLine = errors.New("invalid line")

// Message is one incoming incident report, either a stream entry or a decoded
// queue payload.
type Message struct {
	ID     string
	Values map[string]interface{}
}

// DecodeQueuePayload reads a JSON object such as {"line": 7, "problem": "..."}.
func DecodeQueuePayload(payload string) (Message, error) {
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()

	var values map[string]interface{}
	if err := decoder.Decode(&values); err != nil {
		return Message{}, fmt.Errorf("decoding queue payload: %w", err)
	}

	return Message{Values: values}, nil
}

// Fields returns the line and problem text of the message.
func (m Message) Fields() (int, string, error) {
	rawLine, ok := m.Values[LineField]
	if !ok || rawLine == nil {
		return 0, "", fmt.Errorf("%w %q", ErrMissingField, LineField)
	}

	rawProblem, ok := m.Values[ProblemField]
	if !ok || rawProblem == nil {
		return 0, "", fmt.Errorf("%w %q", ErrMissingField, ProblemField)
	}

	problem, ok := rawProblem.(string)
	if !ok {
		return 0, "", fmt.Errorf("%w %q: not text", ErrMissingField, ProblemField)
	}

	line, err := parseLine(rawLine)
	if err != nil {
		return 0, "", err
	}

	return line, problem, nil
}

func parseLine(value interface{}) (int, error) {
	switch line := value.(type) {
	case int:
		return line, nil
	case int64:
		return int(line), nil
	case float64:
		if line != math.Trunc(line) {
			return 0, fmt.Errorf("%w %v", ErrInvalidLine, line)
		}
		return int(line), nil
	case json.Number:
		n, err := strconv.Atoi(line.String())
		if err != nil {
			return 0, fmt.Errorf("%w %q", ErrInvalidLine, line.String())
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return 0, fmt.Errorf("%w %q", ErrInvalidLine, line)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w %v", ErrInvalidLine, value)
	}
}
