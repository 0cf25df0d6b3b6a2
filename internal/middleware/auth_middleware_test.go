package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuth accepts the tokens in its map and rejects everything else.
type stubAuth struct {
	service.AuthService
	actors map[string]*service.Actor
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*service.Actor, error) {
	if a, ok := s.actors[token]; ok {
		return a, nil
	}
	return nil, service.Unauthorized("Invalid or expired token")
}

func newApp(auth service.AuthService) *fiber.App {
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		a := ActorFrom(c)
		if a == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(a.Username)
	}
	app.Get("/private", RequireAuth(auth), whoami)
	app.Get("/optional", OptionalAuth(auth), whoami)
	app.Delete("/admin", RequireAuth(auth), RequirePrivilege(model.PrivProductDelete), whoami)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, header string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	auth := stubAuth{actors: map[string]*service.Actor{
		"admin-token": {ID: uuid.New(), Username: "root", Role: model.RoleAdmin},
		"staff-token": {ID: uuid.New(), Username: "clerk", Role: model.RoleStaff},
	}}
	app := newApp(auth)

	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"missing header", http.MethodGet, "/private", "", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "/private", "Basic admin-token", http.StatusUnauthorized},
		{"unknown token", http.MethodGet, "/private", "Bearer nope", http.StatusUnauthorized},
		{"valid token", http.MethodGet, "/private", "Bearer staff-token", http.StatusOK},
		{"lowercase scheme", http.MethodGet, "/private", "bearer staff-token", http.StatusOK},
		{"optional anonymous", http.MethodGet, "/optional", "", http.StatusOK},
		{"optional bad token", http.MethodGet, "/optional", "Bearer nope", http.StatusOK},
		{"staff lacks privilege", http.MethodDelete, "/admin", "Bearer staff-token", http.StatusForbidden},
		{"admin has privilege", http.MethodDelete, "/admin", "Bearer admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, app, tt.method, tt.path, tt.header))
		})
	}
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLogger())
	app.Get("/teapot", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadGateway, "upstream") })

	assert.Equal(t, fiber.StatusTeapot, call(t, app, http.MethodGet, "/teapot", ""))
	assert.Equal(t, fiber.StatusBadGateway, call(t, app, http.MethodGet, "/boom", ""))
}
