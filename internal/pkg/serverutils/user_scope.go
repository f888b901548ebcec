package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const UserIdLocal = "user_id"

// UserScope validates the :userId path segment and, when a secret is set,
// requires a bearer token whose user_id claim names the same user.
func UserScope(jwtSecret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userId := ctx.Params("userId")
		if !ValidUserId(userId) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, "Invalid user id"))
		}

		if jwtSecret != "" {
			claimed, ok := tokenUserId(requestToken(ctx), jwtSecret)
			if !ok {
				return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
			}
			if claimed != userId {
				return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, "Token does not belong to this user"))
			}
		}

		ctx.Locals(UserIdLocal, userId)
		return ctx.Next()
	}
}

// requestToken prefers the Authorization header and falls back to the
// token query parameter, which browsers need for websocket handshakes.
func requestToken(ctx *fiber.Ctx) string {
	if tokenStr, found := strings.CutPrefix(ctx.Get(fiber.HeaderAuthorization), "Bearer "); found {
		return tokenStr
	}
	return ctx.Query("token")
}

func tokenUserId(tokenStr, secret string) (string, bool) {
	if tokenStr == "" {
		return "", false
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	userId, ok := claims["user_id"].(string)
	return userId, ok
}

// UserId reads the id stored by UserScope.
func UserId(ctx *fiber.Ctx) string {
	userId, _ := ctx.Locals(UserIdLocal).(string)
	return userId
}
