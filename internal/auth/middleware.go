package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/movie-api/internal/domain"
	apperrors "github.com/spec-kit/movie-api/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller for the current request.
type Principal struct {
	ID       string
	Username string
}

// TokenVerifier recovers an identity from a bearer token.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// AuthMiddleware validates bearer tokens before protected handlers run.
// Verification is stateless: the user store is not consulted.
type AuthMiddleware struct {
	tokens TokenVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	identity, err := m.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return mapTokenError(err)
	}

	c.Locals(principalKey, &Principal{ID: identity.ID, Username: identity.Username})
	return c.Next()
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return apperrors.NewUnauthorized("missing bearer token")
	case errors.Is(err, ErrTokenExpired):
		return apperrors.NewTokenExpired()
	case errors.Is(err, ErrTokenInvalidSignature):
		return apperrors.NewInvalidToken("invalid token signature")
	case errors.Is(err, ErrTokenMalformed):
		return apperrors.NewInvalidToken("malformed token")
	default:
		return apperrors.NewInvalidToken("invalid token")
	}
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
