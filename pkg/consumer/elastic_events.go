package consumer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/travigo/incidentparser/pkg/elastic_client"
)

type ParseFailureElasticEvent struct {
	Timestamp time.Time

	Line   int
	Text   string
	Reason string
}

// ElasticFailureRecorder indexes parse failures into a weekly index. Nothing is
// sent when Elasticsearch was not configured.
type ElasticFailureRecorder struct {
	now func() time.Time
}

func NewElasticFailureRecorder() *ElasticFailureRecorder {
	return &ElasticFailureRecorder{now: time.Now}
}

func ParseFailureIndexName(t time.Time) string {
	yearNumber, weekNumber := t.ISOWeek()
	return fmt.Sprintf("incident-parse-failures-%d-%d", yearNumber, weekNumber)
}

func (r *ElasticFailureRecorder) RecordParseFailure(line int, text string, err error) {
	currentTime := r.now()

	reason := ""
	if err != nil {
		reason = err.Error()
	}

	elasticEvent, _ := json.Marshal(ParseFailureElasticEvent{
		Timestamp: currentTime,

		Line:   line,
		Text:   text,
		Reason: reason,
	})

	elastic_client.IndexRequest(ParseFailureIndexName(currentTime), bytes.NewReader(elasticEvent))
}
