package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/oweru/content-api/internal/service"
	"github.com/oweru/content-api/internal/transfer"
)

type InstagramHandler struct {
	s service.InstagramService
}

func NewInstagramHandler(service service.InstagramService) *InstagramHandler {
	return &InstagramHandler{s: service}
}

func (h *InstagramHandler) CreatePost(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	postID, err := strconv.ParseInt(c.FormValue("post_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": fiber.Map{"post_id": "post_id must be an integer"},
		})
	}

	req := &transfer.InstagramPostRequest{
		Caption:  c.FormValue("caption"),
		PostType: c.FormValue("post_type"),
		PostID:   postID,
	}

	result, err := h.s.PublishPost(c.Context(), req, form.File["media"])
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"message":   "Post created successfully",
		"post_id":   result.PostID,
		"permalink": result.Permalink,
	})
}

func (h *InstagramHandler) AccountInfo(c *fiber.Ctx) error {
	info, err := h.s.AccountInfo(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"account": info,
	})
}

func (h *InstagramHandler) Status(c *fiber.Ctx) error {
	status := h.s.Status(c.Context())

	code := fiber.StatusOK
	if status.Status != "connected" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"success": status.Status == "connected",
		"status":  status.Status,
		"message": status.Message,
	})
}
