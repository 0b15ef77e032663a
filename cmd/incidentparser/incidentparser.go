package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/incidentparser/pkg/api"
	"github.com/travigo/incidentparser/pkg/consumer"
	"github.com/travigo/incidentparser/pkg/incidentparser"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	// a missing .env is fine, the environment is used as is
	_ = godotenv.Load()

	if os.Getenv("INCIDENTPARSER_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("INCIDENTPARSER_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "incidentparser",
		Description: "Turns scraped transit incident reports into structured incidents",

		Commands: []*cli.Command{
			consumer.RegisterCLI(),
			api.RegisterCLI(),
			incidentparser.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
