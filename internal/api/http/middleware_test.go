package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civic-care/issue-service/internal/observability"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp() *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), time.Second)
	return app
}

func decodeEnvelope(t *testing.T, body io.Reader) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	return envelope
}

func TestErrorEnvelope(t *testing.T) {
	app := newTestApp()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("Issue", nil)
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return apperrors.NewInvalidInput("missing required fields", map[string]any{"title": "required"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	envelope := decodeEnvelope(t, resp.Body)
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
	assert.Equal(t, "Issue not found", envelope.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/invalid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	envelope = decodeEnvelope(t, resp.Body)
	assert.Equal(t, "INVALID_INPUT", envelope.Error.Code)
	assert.Equal(t, "required", envelope.Error.Details["title"])
}

func TestPanicRecovery(t *testing.T) {
	app := newTestApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	envelope := decodeEnvelope(t, resp.Body)
	assert.Equal(t, "INTERNAL_ERROR", envelope.Error.Code)
}

func TestUnknownRoutePassesThrough(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	envelope := decodeEnvelope(t, resp.Body)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}
