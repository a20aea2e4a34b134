package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-service/internal/domain"
	"github.com/spec-kit/facility-service/internal/repository"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the authenticated acting user attached to a request context.
type Principal struct {
	User         *domain.User
	Capabilities domain.Capabilities
}

// AuthMiddleware resolves the bearer token to a Principal.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware builds the middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle parses the Authorization header and loads the acting user.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return apperrors.NewUnauthorized("missing bearer token")
	}
	claims, err := m.tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		return apperrors.NewUnauthorized("unknown user")
	}
	c.Locals(principalKey, &Principal{
		User:         user,
		Capabilities: domain.PermissionsFor(user.Role),
	})
	return c.Next()
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil && principal.User != nil
}
