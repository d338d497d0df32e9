package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postgen/internal/service"
)

// GetUserID returns the caller set by the auth middleware, "" when unowned.
func GetUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

func errorStatus(err error) int {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrPostNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
