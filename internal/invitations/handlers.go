package invitations

import (
	"household-backend/internal/households"
	"household-backend/internal/middleware"
	"household-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the invitee-facing invitation routes. The lifecycle rules
// live in the households service; these handlers only adapt transport.
type Handlers struct {
	Service *households.Service
}

// Delete DELETE /api/v1/invitations/:invitationId
// Withdraw/reject a pending invitation. Callers other than the inviter's
// household creator or the invitee get a silent 204, not an error.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("invitationId")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid invitation id")
	}
	if err := h.Service.DeleteInvitation(c.Context(), middleware.Identity(c), int64(id)); err != nil {
		return err
	}
	return response.NoContent(c)
}

// Accept POST /api/v1/invitations/:invitationId/accept
func (h *Handlers) Accept(c *fiber.Ctx) error {
	id, err := c.ParamsInt("invitationId")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid invitation id")
	}
	if err := h.Service.AcceptInvitation(c.Context(), middleware.Identity(c), int64(id)); err != nil {
		return err
	}
	return response.NoContent(c)
}
