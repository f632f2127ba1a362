package households

import (
	"household-backend/internal/middleware"
	"household-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles household handlers with the lifecycle service. Service
// errors bubble up to the global error handler for status mapping.
type Handlers struct {
	Service *Service
}

// List GET /api/v1/households
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.Service.GetUserHouseholds(c.Context(), middleware.Identity(c))
	if err != nil {
		return err
	}
	return response.JSON(c, fiber.StatusOK, list)
}

// Create POST /api/v1/households
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in CreateHouseholdInput
	if err := c.BodyParser(&in); err != nil || in.Name == "" {
		return response.Error(c, fiber.StatusBadRequest, "name is required")
	}
	hh, err := h.Service.CreateHousehold(c.Context(), middleware.Identity(c), in)
	if err != nil {
		return err
	}
	return response.Created(c, hh)
}

// Get GET /api/v1/households/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid household id")
	}
	hh, err := h.Service.GetHousehold(c.Context(), middleware.Identity(c), int64(id))
	if err != nil {
		return err
	}
	return response.JSON(c, fiber.StatusOK, hh)
}

// Update PATCH /api/v1/households/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid household id")
	}
	var patch WritableHousehold
	if err := c.BodyParser(&patch); err != nil || patch.Name == "" {
		return response.Error(c, fiber.StatusBadRequest, "name is required")
	}
	hh, err := h.Service.UpdateHousehold(c.Context(), middleware.Identity(c), int64(id), patch)
	if err != nil {
		return err
	}
	return response.JSON(c, fiber.StatusOK, hh)
}

// Delete DELETE /api/v1/households/:id
// Deleting someone else's household is a deliberate silent no-op; the 204
// does not reveal whether the household exists.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid household id")
	}
	if err := h.Service.DeleteHousehold(c.Context(), middleware.Identity(c), int64(id)); err != nil {
		return err
	}
	return response.NoContent(c)
}

type inviteBody struct {
	Emails []string `json:"emails"`
}

// Invite POST /api/v1/households/:id/invitations
func (h *Handlers) Invite(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid household id")
	}
	var body inviteBody
	if err := c.BodyParser(&body); err != nil || len(body.Emails) == 0 {
		return response.Error(c, fiber.StatusBadRequest, "emails is required")
	}
	invites, err := h.Service.InviteUsers(c.Context(), middleware.Identity(c), int64(id), body.Emails)
	if err != nil {
		return err
	}
	return response.Created(c, invites)
}

// RemoveMember DELETE /api/v1/households/:householdId/members/:memberId
func (h *Handlers) RemoveMember(c *fiber.Ctx) error {
	householdID, err := c.ParamsInt("householdId")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid household id")
	}
	memberID, err := c.ParamsInt("memberId")
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid member id")
	}
	if err := h.Service.RemoveMember(c.Context(), middleware.Identity(c), int64(householdID), int64(memberID)); err != nil {
		return err
	}
	return response.NoContent(c)
}
