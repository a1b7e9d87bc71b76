package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"filehub/internal/auth"
)

const (
	// ClaimsLocalKey is the key used to store parsed token claims in Fiber's
	// context locals.
	ClaimsLocalKey = "auth_claims"
	// UserIDLocalKey is the key used to store the authenticated user id.
	UserIDLocalKey = "auth_user_id"
)

// RequireAuth validates the Bearer token on each request and stores the
// claims and user id in context locals for downstream handlers.
// Requests without a valid token are rejected with 401.
func RequireAuth(issuer *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return fiber.ErrUnauthorized
		}

		claims, err := issuer.ParseValidate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(ClaimsLocalKey, claims)
		c.Locals(UserIDLocalKey, claims.Sub)

		return c.Next()
	}
}

// UserIDFromCtx returns the authenticated user id stored by RequireAuth,
// or "" when the request is unauthenticated.
func UserIDFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(UserIDLocalKey).(string); ok {
		return v
	}
	return ""
}
