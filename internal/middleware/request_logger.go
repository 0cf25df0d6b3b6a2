package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs every request through zerolog, at warn for 4xx and
// error for 5xx.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status_code", status).
			Str("client_ip", c.IP()).
			Str("latency", time.Since(start).String()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Msg("Request processed")
		return err
	}
}
