package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/oweru/content-api/internal/authz"
	"github.com/oweru/content-api/internal/service"
	"github.com/oweru/content-api/internal/transfer"
)

type PostHandler struct {
	s service.PostService
}

func NewPostHandler(service service.PostService) *PostHandler {
	return &PostHandler{s: service}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	creation := &transfer.PostCreation{
		Category:    c.FormValue("category"),
		PostType:    c.FormValue("post_type"),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}
	if raw := c.FormValue("metadata"); raw != "" {
		metadata, err := transfer.ParseMetadata(raw)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "validation failed",
				"fields": fiber.Map{"metadata": "metadata must be a JSON object"},
			})
		}
		creation.Metadata = metadata
	}

	files := form.File["media"]

	post, err := h.s.Create(c.Context(), userID, creation, files)
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	filter := transfer.PostListFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", transfer.DefaultPerPage),
	}

	page, err := h.s.List(c.Context(), filter)
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, err := h.s.Get(c.Context(), int64(postID))
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var upd transfer.PostUpdate
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, err := h.s.Update(c.Context(), GetActor(c), int64(postID), &upd)
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	if err := h.s.Remove(c.Context(), GetActor(c), int64(postID)); err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post removed",
	})
}

func (h *PostHandler) ListByCategory(c *fiber.Ctx) error {
	filter := transfer.PostListFilter{
		Status:   c.Query("status"),
		Category: c.Params("category"),
		Page:     c.QueryInt("page", 1),
		PerPage:  c.QueryInt("per_page", transfer.DefaultPerPage),
	}

	page, err := h.s.List(c.Context(), filter)
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

func (h *PostHandler) ApprovePost(c *fiber.Ctx) error {
	return h.moderate(c, h.s.Approve)
}

func (h *PostHandler) RejectPost(c *fiber.Ctx) error {
	return h.moderate(c, h.s.Reject)
}

type moderationRequest struct {
	Note string `json:"note"`
}

func (h *PostHandler) moderate(c *fiber.Ctx, verdict func(ctx context.Context, actor authz.Actor, postID int64, note string) (*transfer.PostView, error)) error {
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var req moderationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to parse request body",
			})
		}
	}

	post, err := verdict(c.Context(), GetActor(c), int64(postID), req.Note)
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) ListApproved(c *fiber.Ctx) error {
	page, err := h.s.ListApproved(c.Context(), c.QueryInt("page", 1), c.QueryInt("per_page", transfer.DefaultPerPage))
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

func (h *PostHandler) GetApproved(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, err := h.s.GetApproved(c.Context(), int64(postID))
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}
