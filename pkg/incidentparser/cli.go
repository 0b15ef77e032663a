package incidentparser

import (
	"fmt"
	"strconv"

	"github.com/kr/pretty"
	"github.com/travigo/incidentparser/pkg/ctdf"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Print the incident built from a line number and problem text",
		ArgsUsage: "<line> <problem>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("expected <line> and <problem>", 1)
			}

			line, err := strconv.Atoi(c.Args().Get(0))
			if err != nil {
				return cli.Exit(fmt.Sprintf("invalid line %q", c.Args().Get(0)), 1)
			}

			result := NewParser(nil).Extract(c.Args().Get(1))
			incident := ctdf.NewIncident(line, result.Description, result.Stops)

			pretty.Println(incident.Record())
			fmt.Print(incident.String())

			if result.Err != nil {
				pretty.Println(result.Err)
			}

			return nil
		},
	}
}
