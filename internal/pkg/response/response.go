package response

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the error JSON shape: {"status": 409, "message": "..."}.
// Success responses are the bare entity or collection, no envelope.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// JSON sends data with the given status.
func JSON(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Created sends 201 with the created entity.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// NoContent sends 204.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// Error sends the standard error body.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorBody{Status: status, Message: message})
}

// Unauthorized sends 401 with the standard error body.
func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Invalid credentials")
}
