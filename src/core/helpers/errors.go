package helpers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Domain error taxonomy. Module packages return these (possibly wrapped)
// and handlers translate them with HandleServiceError, so every failure
// class stays distinguishable for the caller.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("not authorized")
	ErrValidation       = errors.New("invalid input")
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrPrivateProfile is the third response class next to success and
	// not-found: the subject exists but the viewer may not see it.
	ErrPrivateProfile = errors.New("this profile is private")
)

// HandleServiceError maps a domain error onto the matching HTTP response.
func HandleServiceError(c *fiber.Ctx, message string, err error) error {
	switch {
	case errors.Is(err, ErrPrivateProfile):
		// Private profiles get a dedicated payload so clients can render
		// the private-account placeholder instead of a generic error.
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":     "error",
			"message":    "This profile is private",
			"is_private": true,
			"error":      err.Error(),
			"data":       nil,
		})
	case errors.Is(err, ErrNotFound):
		return HandleError(c, fiber.StatusNotFound, message, err)
	case errors.Is(err, ErrUnauthorized):
		// The actor is authenticated but does not own the resource.
		return HandleError(c, fiber.StatusForbidden, message, err)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidOperation):
		return HandleError(c, fiber.StatusBadRequest, message, err)
	default:
		return HandleError(c, fiber.StatusInternalServerError, message, err)
	}
}
