package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postgen/internal/transfer"
)

// BatchRunner runs one sweep over due scheduled posts.
type BatchRunner interface {
	Run(ctx context.Context) (*transfer.RunSummary, error)
}

type RunnerHandler struct {
	runner BatchRunner
}

func NewRunnerHandler(runner BatchRunner) *RunnerHandler {
	return &RunnerHandler{runner: runner}
}

func (h *RunnerHandler) RunScheduledPosts(c *fiber.Ctx) error {
	summary, err := h.runner.Run(c.UserContext())
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}
