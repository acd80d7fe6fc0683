package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/domain"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// RequireRole restricts a route to the given roles. It must run after
// AuthMiddleware.Handle so the requester is present in the context.
func RequireRole(roles ...domain.Role) fiber.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		requester, ok := RequesterFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if _, ok := allowed[requester.Role]; !ok {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
