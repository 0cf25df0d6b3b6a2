package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const serviceName = "go-inventory-tracker"

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "OK",
		"service": serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
