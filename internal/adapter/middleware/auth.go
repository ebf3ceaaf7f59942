package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tiyas17/backend-ledger/internal/core/security"
)

// Protected authenticates requests by API key. The key is hashed before the
// lookup; plain keys never touch the database.
func Protected(db *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization") // "Bearer sk_live_..."
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing API Key"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Header Format"})
		}

		hashedKey := security.HashKey(parts[1])

		var accountID string
		err := db.QueryRow(c.Context(), "SELECT account_id FROM api_keys WHERE key_hash = $1", hashedKey).Scan(&accountID)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid API Key"})
		}

		// So handlers know who is calling
		c.Locals("account_id", accountID)

		return c.Next()
	}
}
