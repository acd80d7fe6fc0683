package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/identity"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

const requesterKey = "auth_requester"

// RequesterResolver loads (or lazily provisions) the account behind a
// verified identity.
type RequesterResolver interface {
	ResolveRequester(ctx context.Context, ident identity.Identity) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and loads the requester.
type AuthMiddleware struct {
	verifier identity.Verifier
	resolver RequesterResolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier identity.Verifier, resolver RequesterResolver) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	ident, err := m.verifier.Verify(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid or expired token")
	}

	requester, err := m.resolver.ResolveRequester(c.Context(), *ident)
	if err != nil {
		return apperrors.MapError(err)
	}

	c.Locals(requesterKey, requester)
	return c.Next()
}

// RequesterFromContext retrieves the authenticated account.
func RequesterFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(requesterKey)
	if val == nil {
		return nil, false
	}
	requester, ok := val.(*domain.User)
	return requester, ok
}
