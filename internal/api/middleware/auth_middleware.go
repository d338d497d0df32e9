package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/pkg/utils"
)

const sessionCookie = "postgen_session"

type AuthMiddleware struct {
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

// AuthMiddleware validates the bearer token (or session cookie) and stores the
// caller's user id in the "user_id" local. With no SECRET_KEY configured the
// API is open and requests run unowned.
func (m *AuthMiddleware) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.cfg.SecretKey == "" {
			c.Locals("user_id", "")
			return c.Next()
		}

		tokenString := utils.BearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			tokenString = c.Cookies(sessionCookie)
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing bearer token",
			})
		}

		claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
		if err != nil {
			c.Cookie(&fiber.Cookie{
				Name:   sessionCookie,
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})

			slog.Info("token validation failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}
