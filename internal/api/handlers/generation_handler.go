package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postgen/internal/service"
	"github.com/maheshrc27/postgen/internal/transfer"
)

type GenerationHandler struct {
	images     service.ImageService
	captions   service.CaptionService
	video      service.VideoService
	storyboard service.StoryboardService
}

func NewGenerationHandler(
	images service.ImageService,
	captions service.CaptionService,
	video service.VideoService,
	storyboard service.StoryboardService) *GenerationHandler {
	return &GenerationHandler{
		images:     images,
		captions:   captions,
		video:      video,
		storyboard: storyboard,
	}
}

func parseGeneration(c *fiber.Ctx) (*transfer.GenerationRequest, error) {
	var req transfer.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Invalid request body")
	}
	return &req, nil
}

func (h *GenerationHandler) GenerateImage(c *fiber.Ctx) error {
	req, err := parseGeneration(c)
	if err != nil {
		return sendError(c, err)
	}

	resp, err := h.images.Generate(c.UserContext(), req.Prompt, req.Style)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *GenerationHandler) GenerateCaptions(c *fiber.Ctx) error {
	req, err := parseGeneration(c)
	if err != nil {
		return sendError(c, err)
	}

	resp, err := h.captions.Generate(c.UserContext(), req.Prompt, req.Style)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *GenerationHandler) GenerateVideo(c *fiber.Ctx) error {
	req, err := parseGeneration(c)
	if err != nil {
		return sendError(c, err)
	}

	resp, err := h.video.Generate(c.UserContext(), req.Prompt, req.VideoType)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *GenerationHandler) GenerateStoryboard(c *fiber.Ctx) error {
	req, err := parseGeneration(c)
	if err != nil {
		return sendError(c, err)
	}

	resp, err := h.storyboard.Generate(c.UserContext(), req.Prompt, req.VideoType, req.Style)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
