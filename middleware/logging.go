package middleware

import (
	"time"

	"cargo-portal/logger"
	"cargo-portal/types"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger records each API request through the async logger, off the
// request path.
func RequestLogger(asyncLogger *logger.AsyncLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		actorUID := ""
		if id := IdentityFromCtx(c); id != nil {
			actorUID = id.UID
		}

		asyncLogger.Log(types.LogEntry{
			Method:         c.Method(),
			URL:            c.OriginalURL(),
			ActorUID:       actorUID,
			RequestBody:    string(c.Body()),
			ResponseBody:   string(c.Response().Body()),
			StatusCode:     c.Response().StatusCode(),
			DurationMillis: time.Since(start).Milliseconds(),
			CreatedAt:      start,
		})

		return err
	}
}
