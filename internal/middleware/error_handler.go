package middleware

import (
	"errors"

	"household-backend/internal/pkg/apperrors"
	"household-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the global Fiber error handler. It translates the service
// error taxonomy into HTTP statuses; everything else is an internal error
// with the underlying message surfaced for debugging.
func ErrorHandler(c *fiber.Ctx, err error) error {
	switch apperrors.KindOf(err) {
	case apperrors.KindDuplicateEntity:
		return response.Error(c, fiber.StatusConflict, err.Error())
	case apperrors.KindNotFound:
		return response.Error(c, fiber.StatusNotFound, err.Error())
	case apperrors.KindForbidden:
		return response.Error(c, fiber.StatusForbidden, err.Error())
	case apperrors.KindInvitedUserIsOwner:
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return response.Error(c, fe.Code, fe.Message)
	}

	log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("Unhandled error")
	return response.Error(c, fiber.StatusInternalServerError, err.Error())
}
