package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/campus-records/database"
	"github.com/sahilchouksey/campus-records/utils/response"
)

func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		log.Errorf("health check failed: %v", err)
		return response.ServiceUnavailable(c, "Database unavailable")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
