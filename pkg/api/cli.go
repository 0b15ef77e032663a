package api

import (
	"github.com/travigo/incidentparser/pkg/incidentparser"
	"github.com/travigo/incidentparser/pkg/stats"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the incident parsing web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Value:   ":8080",
						Usage:   "listen target for the web server",
						EnvVars: []string{"INCIDENTPARSER_API_LISTEN"},
					},
					&cli.StringFlag{
						Name:    "metrics-prefix",
						Value:   "incidentparser",
						EnvVars: []string{"INCIDENTPARSER_METRICS_PREFIX"},
					},
				},
				Action: func(c *cli.Context) error {
					collector := stats.NewCollector(c.String("metrics-prefix"))

					return SetupServer(c.String("listen"), incidentparser.NewParser(collector.ParsingErrors), collector.Registry())
				},
			},
		},
	}
}
