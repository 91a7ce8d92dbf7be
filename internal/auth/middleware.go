package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// Middleware verifies the Authorization bearer token and stores the caller's
// Identity in the request locals. Requests without a token get 401; requests
// with an invalid or expired one get 403.
func Middleware(tokens *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "malformed authorization header")
		}

		ident, err := tokens.Verify(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusForbidden, "invalid or expired token")
		}

		c.Locals(identityLocal, ident)
		return c.Next()
	}
}

// IdentityFromCtx returns the identity stored by Middleware.
func IdentityFromCtx(c *fiber.Ctx) (Identity, bool) {
	ident, ok := c.Locals(identityLocal).(Identity)
	return ident, ok
}
