package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oweru/content-api/internal/service"
	"github.com/oweru/content-api/internal/transfer"
)

type ContactHandler struct {
	s service.ContactService
}

func NewContactHandler(service service.ContactService) *ContactHandler {
	return &ContactHandler{s: service}
}

func (h *ContactHandler) CreateContact(c *fiber.Ctx) error {
	var req transfer.ContactCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	contact, err := h.s.Create(c.Context(), &req)
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(contact)
}

func (h *ContactHandler) ListContacts(c *fiber.Ctx) error {
	page, err := h.s.List(c.Context(), GetActor(c), c.QueryInt("page", 1), c.QueryInt("per_page", transfer.DefaultPerPage))
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(page)
}

func (h *ContactHandler) GetContact(c *fiber.Ctx) error {
	contactID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid contact id",
		})
	}

	contact, err := h.s.Get(c.Context(), GetActor(c), int64(contactID))
	if err != nil {
		return ServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(contact)
}
