package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/oweru/content-api/internal/authz"
	"github.com/oweru/content-api/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

func GetUserRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}

func GetActor(c *fiber.Ctx) authz.Actor {
	return authz.Actor{
		ID:   GetUserID(c),
		Role: GetUserRole(c),
	}
}

// ServiceError maps service failures to HTTP responses.
func ServiceError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	}
	if errors.Is(err, service.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "forbidden",
		})
	}
	if errors.Is(err, service.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
