package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/incidentparser/pkg/ctdf"
	"github.com/travigo/incidentparser/pkg/incidentparser"
)

type parseRequest struct {
	Line    *int    `json:"line"`
	Problem *string `json:"problem"`
}

func ParseRouter(router fiber.Router, parser *incidentparser.Parser) {
	router.Post("/", func(c *fiber.Ctx) error {
		return parseIncident(c, parser)
	})
}

func parseIncident(c *fiber.Ctx, parser *incidentparser.Parser) error {
	var request parseRequest
	if err := c.BodyParser(&request); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Could not read request body",
		})
	}

	if request.Line == nil || request.Problem == nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Both line and problem are required",
		})
	}

	result := parser.Extract(*request.Problem)
	incident := ctdf.NewIncident(*request.Line, result.Description, result.Stops)

	groups := []string{"basic"}
	record := incident.Record()

	if c.QueryBool("debug", false) {
		groups = append(groups, "debug")
		record.Canonical = incident.String()
	}

	incidentReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, record)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce Incident",
		})
	}

	response := fiber.Map{
		"incident": incidentReduced,
	}
	if result.Err != nil {
		response["warning"] = result.Err.Error()
	}

	return c.JSON(response)
}
