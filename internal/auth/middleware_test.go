package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/identity"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

type stubResolver struct {
	role domain.Role
}

func (r *stubResolver) ResolveRequester(_ context.Context, ident identity.Identity) (*domain.User, error) {
	return &domain.User{Email: ident.Email, Name: ident.Name, Role: r.role}, nil
}

func newAuthApp(t *testing.T, role domain.Role, guards ...fiber.Handler) (*fiber.App, *identity.TokenManager) {
	t.Helper()
	tokens := identity.NewTokenManager("test-secret", 30)
	middleware := NewAuthMiddleware(tokens, &stubResolver{role: role})

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
				"success": false,
				"message": domainErr.Message,
			})
		},
	})
	chain := append([]fiber.Handler{middleware.Handle}, guards...)
	chain = append(chain, func(c *fiber.Ctx) error {
		requester, ok := RequesterFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"email": requester.Email})
	})
	app.Get("/protected", chain...)
	return app, tokens
}

func TestAuthMiddleware(t *testing.T) {
	app, tokens := newAuthApp(t, domain.RoleCitizen)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, _, err := tokens.Issue(identity.Identity{Email: "citizen@example.com"})
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app, tokens := newAuthApp(t, domain.RoleCitizen, RequireRole(domain.RoleAdmin))

	token, _, err := tokens.Issue(identity.Identity{Email: "citizen@example.com"})
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminApp, adminTokens := newAuthApp(t, domain.RoleAdmin, RequireRole(domain.RoleAdmin))
	token, _, err = adminTokens.Issue(identity.Identity{Email: "admin@example.com"})
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = adminApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
