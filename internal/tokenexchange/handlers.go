package tokenexchange

import (
	"household-backend/internal/middleware"
	"household-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the token-exchange routes.
type Handlers struct {
	Service *Service
}

type exchangeBody struct {
	HouseholdID int64  `json:"household_id"`
	Audience    string `json:"audience"`
}

// Exchange POST /api/v1/token/exchange
func (h *Handlers) Exchange(c *fiber.Ctx) error {
	var body exchangeBody
	if err := c.BodyParser(&body); err != nil || body.HouseholdID == 0 {
		return response.Error(c, fiber.StatusBadRequest, "household_id is required")
	}
	token, err := h.Service.ExchangeToken(c.Context(), middleware.Identity(c), body.HouseholdID, body.Audience)
	if err != nil {
		return err
	}
	return response.JSON(c, fiber.StatusOK, fiber.Map{"token": token})
}

// PublicKey GET /api/v1/token/public-key
func (h *Handlers) PublicKey(c *fiber.Ctx) error {
	key, err := h.Service.PublicKey()
	if err != nil {
		return err
	}
	return response.JSON(c, fiber.StatusOK, fiber.Map{"publicKey": key})
}
