package userinfo

import (
	"household-backend/internal/domain"
	"household-backend/internal/middleware"
	"household-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers exposes the profile routes.
type Handlers struct {
	Service *Service
}

// providerKey picks the identity-provider user id: the token subject, which is
// what the management API keys records on. Identity (e-mail-preferred) only
// steps in when the token carries no sub.
func providerKey(c *fiber.Ctx) string {
	if sub := middleware.Subject(c); sub != "" {
		return sub
	}
	return middleware.Identity(c)
}

// Get GET /api/v1/user-info
func (h *Handlers) Get(c *fiber.Ctx) error {
	info, err := h.Service.GetUserInfo(c.Context(), providerKey(c))
	if err != nil {
		return err
	}
	log.Info().Str("trace_id", middleware.GetTraceID(c)).Str("email", info.Email).Msg("Handle user info")
	return response.JSON(c, fiber.StatusOK, info)
}

// Patch PATCH /api/v1/user-info
func (h *Handlers) Patch(c *fiber.Ctx) error {
	var patch domain.PatchUserInfo
	if err := c.BodyParser(&patch); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	info, err := h.Service.UpdateUserInfo(c.Context(), providerKey(c), patch)
	if err != nil {
		return err
	}
	log.Info().Str("trace_id", middleware.GetTraceID(c)).Str("email", info.Email).Msg("Handle user info")
	return response.JSON(c, fiber.StatusOK, info)
}
