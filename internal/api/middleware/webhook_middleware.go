package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	config "github.com/maheshrc27/postsync/configs"
)

const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookSecret gates the automation platform endpoints behind a shared
// secret. With no secret configured every request passes.
func WebhookSecret(cfg config.Webhook) fiber.Handler {
	secret := []byte(cfg.Secret)
	return func(c *fiber.Ctx) error {
		if len(secret) == 0 {
			return c.Next()
		}
		got := []byte(c.Get(WebhookSecretHeader))
		if subtle.ConstantTimeCompare(got, secret) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Invalid webhook secret",
			})
		}
		return c.Next()
	}
}
