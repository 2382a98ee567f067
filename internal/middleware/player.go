package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/utils"
)

const PlayerIDHeader = "X-Player-ID"

// EnsurePlayerID resolves the caller's player ID from the X-Player-ID header,
// falling back to the playerId query parameter (browsers cannot set headers on
// websocket upgrades).
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		playerID := c.Get(PlayerIDHeader)
		if playerID == "" {
			playerID = c.Query("playerId")
		}
		if playerID == "" {
			log.Debugf("%s %s rejected: no player ID", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		// header and query values alias the request buffer, which fasthttp reuses
		c.Locals("playerID", utils.CopyString(playerID))
		return c.Next()
	}
}

// PlayerKey keys per-client limits by player ID, or by address for anonymous callers.
func PlayerKey(c *fiber.Ctx) string {
	if id := c.Get(PlayerIDHeader); id != "" {
		return utils.CopyString(id)
	}
	return c.IP()
}
