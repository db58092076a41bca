package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/matriculausa/payment_service/internal/helper"
)

func AuthMiddleware(auth helper.Auth) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// 1) try cookie first
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))

		// 2) fallback to Authorization header
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get("Authorization"))
		}

		user, err := auth.VerifyToken(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		ctx.Locals("userID", uint(user.UserID))
		ctx.Locals("user", user)
		return ctx.Next()
	}
}

func CurrentUserID(ctx *fiber.Ctx) (uint, bool) {
	userID, ok := ctx.Locals("userID").(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}
