package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postgen/internal/service"
	"github.com/maheshrc27/postgen/internal/transfer"
)

type ScheduledPostHandler struct {
	s service.ComposerService
}

func NewScheduledPostHandler(service service.ComposerService) *ScheduledPostHandler {
	return &ScheduledPostHandler{s: service}
}

func (h *ScheduledPostHandler) SchedulePost(c *fiber.Ctx) error {
	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Schedule(c.UserContext(), GetUserID(c), &req)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *ScheduledPostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if postID := c.Query("id"); postID != "" {
		post, err := h.s.Get(c.UserContext(), userID, postID)
		if err != nil {
			return sendError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.UserContext(), userID)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *ScheduledPostHandler) RemovePost(c *fiber.Ctx) error {
	if err := h.s.Deactivate(c.UserContext(), GetUserID(c), c.Query("id")); err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Successfully removed post",
	})
}

func (h *ScheduledPostHandler) PostHistory(c *fiber.Ctx) error {
	history, err := h.s.History(c.UserContext(), GetUserID(c), c.Query("id"))
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(history)
}

func (h *ScheduledPostHandler) EnhancePrompt(c *fiber.Ctx) error {
	var req transfer.EnhanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	prompt, err := h.s.EnhancePrompt(req.Prompt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"prompt": prompt,
	})
}
