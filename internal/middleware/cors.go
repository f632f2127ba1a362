package middleware

import (
	"strings"

	"household-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedSuffix string
}

// CORS allows origins ending with AllowedSuffix, plus localhost for
// development. Credentials allowed.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		// No origin (same-origin requests, curl): allow
		if origin == "" {
			return c.Next()
		}
		if !originAllowed(origin, cfg.AllowedSuffix) {
			return response.Error(c, fiber.StatusForbidden, "Not allowed by CORS")
		}
		c.Set("Access-Control-Allow-Origin", origin)
		c.Set("Access-Control-Allow-Credentials", "true")
		c.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func originAllowed(origin, suffix string) bool {
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
		return true
	}
	return suffix != "" && strings.HasSuffix(strings.ToLower(origin), strings.ToLower(suffix))
}
