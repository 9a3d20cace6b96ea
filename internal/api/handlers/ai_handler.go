package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oweru/content-api/internal/service"
	"github.com/oweru/content-api/internal/transfer"
)

type AIHandler struct {
	s service.AIService
}

func NewAIHandler(service service.AIService) *AIHandler {
	return &AIHandler{s: service}
}

func (h *AIHandler) Generate(c *fiber.Ctx) error {
	var req transfer.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	resp, err := h.s.Generate(c.Context(), GetUserID(c), &req)
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AIHandler) Improve(c *fiber.Ctx) error {
	var req transfer.ImproveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	improved, err := h.s.Improve(c.Context(), GetUserID(c), &req)
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(improved)
}

func (h *AIHandler) Suggestions(c *fiber.Ctx) error {
	suggestions, err := h.s.Suggestions(c.Context(), c.Params("category"))
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(suggestions)
}
