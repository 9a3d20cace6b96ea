package handlers

import (
	"io"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/oweru/content-api/internal/service"
)

type MediaHandler struct {
	s service.MediaService
}

func NewMediaHandler(service service.MediaService) *MediaHandler {
	return &MediaHandler{s: service}
}

func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("media")
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No media file uploaded",
		})
	}

	var postID int64
	if raw := c.FormValue("post_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid post_id",
			})
		}
		postID = parsed
	}

	media, err := h.s.Upload(c.Context(), postID, file)
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(media)
}

func (h *MediaHandler) Remove(c *fiber.Ctx) error {
	mediaID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid media id",
		})
	}

	if err := h.s.Remove(c.Context(), GetActor(c), int64(mediaID)); err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Media removed",
	})
}

func (h *MediaHandler) Download(c *fiber.Ctx) error {
	fileURL := c.Query("url")
	if fileURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing url parameter",
		})
	}

	body, contentType, err := h.s.Download(c.Context(), fileURL)
	if err != nil {
		return ServiceError(c, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read stored object",
		})
	}

	c.Set("Content-Type", contentType)
	return c.Status(fiber.StatusOK).Send(data)
}
