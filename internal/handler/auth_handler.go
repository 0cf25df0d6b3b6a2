package handler

import (
	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a user; a role can only be assigned by an admin token.
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	res, err := h.authService.Register(c.UserContext(), middleware.ActorFrom(c), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

// Login handles user authentication
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	res, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.authService.Me(c.UserContext(), actor(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
