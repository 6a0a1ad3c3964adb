package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-service/internal/domain"
	apperrors "github.com/spec-kit/task-service/pkg/util/errorutil"
)

// Rule inspects the authenticated user; a non-nil error refuses the request.
type Rule func(*domain.User) error

// InternalOnly refuses portal (shared) accounts.
func InternalOnly(u *domain.User) error {
	if !u.Internal() {
		return apperrors.NewForbidden("portal users cannot modify records")
	}
	return nil
}

// Require builds a guard that needs an authenticated principal satisfying every rule.
func Require(rules ...Rule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, rule := range rules {
			if err := rule(principal.User); err != nil {
				return err
			}
		}
		return c.Next()
	}
}

// RequireInternalUser guards write routes: portal users may read but never
// change tasks, subtasks, teams or timesheets.
func RequireInternalUser() fiber.Handler {
	return Require(InternalOnly)
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return Require()
}
