package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-service/internal/domain"
	apperrors "github.com/spec-kit/facility-service/pkg/util"
)

// RequireAuthenticated ensures a principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireCapability gates a route on one capability from the role's fixed
// vector, e.g. RequireCapability(func(c domain.Capabilities) bool { return c.CanManageUsers }).
func RequireCapability(selector func(domain.Capabilities) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !selector(principal.Capabilities) {
			return apperrors.NewForbidden("insufficient permissions")
		}
		return c.Next()
	}
}
