package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the service counters on a registry of its own so several
// collectors (and tests) never clash on the default registry.
type Collector struct {
	reg *prometheus.Registry

	ConsumedMessages      prometheus.Counter
	ConsumedMessageErrors prometheus.Counter
	ParsingErrors         prometheus.Counter

	PublishedIncidents prometheus.Counter
	DuplicateIncidents prometheus.Counter
	PublishErrors      prometheus.Counter
}

func NewCollector(prefix string) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ConsumedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_consumed_messages_total",
			Help: "Messages turned into incidents.",
		}),
		ConsumedMessageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_consumed_messages_errors_total",
			Help: "Messages skipped because line or problem was missing or invalid.",
		}),
		ParsingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_parsing_errors_total",
			Help: "Incident texts whose stop information could not be extracted.",
		}),
		PublishedIncidents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_published_incidents_total",
			Help: "Incidents handed to the sending stream.",
		}),
		DuplicateIncidents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_duplicate_incidents_total",
			Help: "Incidents dropped because the same hash was published recently.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_publish_errors_total",
			Help: "Incidents that could not be published.",
		}),
	}

	reg.MustRegister(
		c.ConsumedMessages, c.ConsumedMessageErrors, c.ParsingErrors,
		c.PublishedIncidents, c.DuplicateIncidents, c.PublishErrors,
	)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}
