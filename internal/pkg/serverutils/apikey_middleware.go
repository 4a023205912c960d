package serverutils

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// KeyValidator checks a client API key. Implemented by the auth service.
type KeyValidator interface {
	Validate(ctx context.Context, key string) error
}

// ApiKeyMiddleware guards the pipeline surface. When required is false the
// middleware is a pass-through so local setups work without keys.
func ApiKeyMiddleware(validator KeyValidator, required bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !required {
			return ctx.Next()
		}

		key := ctx.Get("X-API-Key")
		if key == "" {
			authHeader := ctx.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				key = authHeader[7:]
			}
		}
		if key == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing API key"))
		}

		if err := validator.Validate(ctx.Context(), key); err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid API key"))
		}
		return ctx.Next()
	}
}
