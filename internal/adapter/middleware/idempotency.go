package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gostore/internal/adapter/storage"
)

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key already seen in the same session. Server errors are not
// stored so the client can retry them.
func Idempotency(store storage.IdempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Get Key from Header
		key := c.Get("Idempotency-Key")
		if key == "" {
			return c.Next()
		}
		scoped := CurrentSession(c).ID + ":" + key

		// 2. Check if key exists
		cached, hit, err := store.Get(c.UserContext(), scoped)
		if err != nil {
			slog.Error("❌ Failed to read Idempotency Key", "error", err, "key", key)
		}
		if hit {
			slog.Info("🛑 Idempotency Hit! Returning cached response", "key", key)
			c.Set("X-Idempotency-Hit", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(cached.Status).Send(cached.Body)
		}

		// 3. Run the Handler
		if err := c.Next(); err != nil {
			return err
		}

		// 4. Save the Result
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		if err := store.Put(c.UserContext(), scoped, storage.CachedResponse{Status: status, Body: body}); err != nil {
			slog.Error("❌ Failed to save Idempotency Key", "error", err, "key", key)
		} else {
			slog.Info("💾 Idempotency Key Saved", "key", key)
		}
		return nil
	}
}
