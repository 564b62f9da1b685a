// Package middleware holds the request middleware for the JSON API.
package middleware

import (
	"crypto/subtle"
	"strings"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"searchlens/internal/settings"
)

// APIKeyAuth validates the bearer API key on every request it guards.
// Expects: Authorization: Bearer <api_key>
func APIKeyAuth(db *gorm.DB, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		providedKey, errMsg := bearerToken(c.Get("Authorization"))
		if errMsg != "" {
			return unauthorized(c, errMsg)
		}

		storedKey, err := settings.GetAPIKey(db)
		if err != nil || storedKey == "" {
			logger.Warn("API key not configured", slog.Any("error", err))
			return unauthorized(c, "API key not configured. Run the server once to generate it.")
		}

		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(storedKey)) != 1 {
			return unauthorized(c, "Invalid API key")
		}

		return c.Next()
	}
}

// bearerToken extracts the key from an Authorization header value. The
// second return value is an error message for the client, empty on success.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Missing Authorization header"
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", "Invalid Authorization header format. Expected: Bearer <api_key>"
	}
	key := strings.TrimPrefix(header, "Bearer ")
	if key == "" {
		return "", "API key is empty"
	}
	return key, ""
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
