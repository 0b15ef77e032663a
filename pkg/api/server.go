package api

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/travigo/incidentparser/pkg/api/routes"
	"github.com/travigo/incidentparser/pkg/incidentparser"
)

// NewApp builds the API. When metrics is set its counters are served on /metrics.
func NewApp(parser *incidentparser.Parser, metrics prometheus.Gatherer) *fiber.App {
	webApp := fiber.New(fiber.Config{
		JSONEncoder: marshalUnescaped,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.ParseRouter(group.Group("/parse"), parser)

	if metrics != nil {
		webApp.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics, promhttp.HandlerOpts{})))
	}

	return webApp
}

func SetupServer(listen string, parser *incidentparser.Parser, metrics prometheus.Gatherer) error {
	return NewApp(parser, metrics).Listen(listen)
}

// keeps "->" readable in directions
func marshalUnescaped(v interface{}) ([]byte, error) {
	var buffer bytes.Buffer

	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}
