package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleServiceErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", ErrNotFound, fiber.StatusNotFound},
		// Ownership violations come from authenticated actors; the JWT
		// middleware already answers 401 for missing credentials.
		{"not owner", ErrUnauthorized, fiber.StatusForbidden},
		{"validation", ErrValidation, fiber.StatusBadRequest},
		{"invalid operation", ErrInvalidOperation, fiber.StatusBadRequest},
		{"private profile", ErrPrivateProfile, fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return HandleServiceError(c, "boom", tc.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
