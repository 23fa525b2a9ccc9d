package middlewares

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTP timeout guard (selaras dengan statement_timeout di DB)
const DefaultRequestTimeout = 5 * time.Second

// Deadline memasang context dengan batas waktu dari pick(c) ke UserContext.
func Deadline(pick func(c *fiber.Ctx) time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), pick(c))
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequestTimeout: POST /api/a/exams menjalankan satu transaksi penuh + retry, jadi dapat runTimeout
func RequestTimeout(runTimeout time.Duration) func(c *fiber.Ctx) time.Duration {
	return func(c *fiber.Ctx) time.Duration {
		if c.Method() == fiber.MethodPost && strings.TrimSuffix(c.Path(), "/") == "/api/a/exams" {
			return runTimeout
		}
		return DefaultRequestTimeout
	}
}
