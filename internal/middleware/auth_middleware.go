package middleware

import (
	"fmt"
	"strings"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func setActor(c *fiber.Ctx, actor *service.Actor) {
	c.Locals(actorKey, actor)
	c.Locals("user_id", actor.ID.String())
	c.Locals("username", actor.Username)
	c.Locals("user_role", string(actor.Role))
}

// ActorFrom returns the authenticated actor, or nil on anonymous requests.
func ActorFrom(c *fiber.Ctx) *service.Actor {
	actor, _ := c.Locals(actorKey).(*service.Actor)
	return actor
}

// RequireAuth validates the bearer token and loads the caller into the context.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Access token required"})
		}
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid authorization format. Use: Bearer <token>"})
		}

		actor, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if service.KindOf(err) == service.KindUnauthorized {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
			}
			return err
		}

		setActor(c, actor)
		return c.Next()
	}
}

// OptionalAuth loads the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}
		if actor, err := auth.Authenticate(c.UserContext(), token); err == nil {
			setActor(c, actor)
		}
		return c.Next()
	}
}

// RequirePrivilege checks the authenticated role against the capability table.
func RequirePrivilege(required model.Privilege) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFrom(c)
		if actor == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Access token required"})
		}
		if !actor.Role.Has(required) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": fmt.Sprintf("Forbidden: requires '%s' privilege", required),
			})
		}
		return c.Next()
	}
}
