package ctdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// IncidentHashLength is the number of hex characters kept from the digest.
const IncidentHashLength = 15

// directionNone is how an absent direction is rendered in the canonical text.
const directionNone = "None"

// StopTime is an affected stop and the time it was given with.
// Time is carried through exactly as written ("14:30", "14:30 h").
type StopTime struct {
	Station string `json:"station" groups:"basic"`
	Time    string `json:"time" groups:"basic"`
}

func (s StopTime) String() string {
	return fmt.Sprintf("%s (%s)", s.Station, s.Time)
}

// Incident describes a single service disruption on a line.
// Direction and hash are derived once in NewIncident and the record is never
// modified afterwards.
type Incident struct {
	line        int
	description string
	stops       []StopTime

	direction *string
	hash      string
}

func NewIncident(line int, description string, stops []StopTime) *Incident {
	incident := &Incident{
		line:        line,
		description: description,
		stops:       append([]StopTime{}, stops...),
	}

	incident.direction = incident.generateDirection()
	incident.hash = incident.generateHash()

	return incident
}

func (i *Incident) Line() int {
	return i.line
}

func (i *Incident) Description() string {
	return i.description
}

// Stops returns a copy of the affected stops in their original order.
func (i *Incident) Stops() []StopTime {
	return append([]StopTime{}, i.stops...)
}

// Direction returns "<first stop> -> <last stop>", or false if there are no stops.
func (i *Incident) Direction() (string, bool) {
	if i.direction == nil {
		return "", false
	}

	return *i.direction, true
}

func (i *Incident) Hash() string {
	return i.hash
}

// String is the canonical text of the incident and the input of its hash.
func (i *Incident) String() string {
	direction := directionNone
	if i.direction != nil {
		direction = *i.direction
	}

	renderedStops := make([]string, len(i.stops))
	for index, stop := range i.stops {
		renderedStops[index] = stop.String()
	}

	return fmt.Sprintf("%d: %s: %s\n[%s]\n", i.line, direction, i.description, strings.Join(renderedStops, ", "))
}

func (i *Incident) generateDirection() *string {
	if len(i.stops) == 0 {
		return nil
	}

	direction := fmt.Sprintf("%s -> %s", i.stops[0].Station, i.stops[len(i.stops)-1].Station)

	return &direction
}

func (i *Incident) generateHash() string {
	sum := sha256.Sum256([]byte(i.String()))

	return hex.EncodeToString(sum[:])[:IncidentHashLength]
}

// IncidentRecord is the published shape of an Incident.
// The wire names (what, stations) are consumed downstream and must not change.
type IncidentRecord struct {
	Line      int        `json:"line" groups:"basic"`
	What      string     `json:"what" groups:"basic"`
	Stations  []StopTime `json:"stations" groups:"basic"`
	Direction *string    `json:"direction" groups:"basic"`
	Hash      string     `json:"hash" groups:"basic"`

	Canonical string `json:"canonical,omitempty" groups:"debug"`
}

func (i *Incident) Record() IncidentRecord {
	var direction *string
	if i.direction != nil {
		value := *i.direction
		direction = &value
	}

	return IncidentRecord{
		Line:      i.line,
		What:      i.description,
		Stations:  i.Stops(),
		Direction: direction,
		Hash:      i.hash,
	}
}

// JSON encodes the published shape without HTML escaping so the "->" in the
// direction is not turned into \u003e.
func (i *Incident) JSON() ([]byte, error) {
	var buffer bytes.Buffer

	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(i.Record()); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

func (i *Incident) MarshalJSON() ([]byte, error) {
	return i.JSON()
}
