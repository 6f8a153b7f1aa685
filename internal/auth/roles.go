package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/movie-api/pkg/util/errorutil"
)

// RequireAuthenticated ensures the gate has attached a principal.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireSelf ensures the route parameter names the authenticated user.
func RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Username != c.Params(param) {
			return apperrors.NewForbidden("you can only manage your own account")
		}
		return c.Next()
	}
}
