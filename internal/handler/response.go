package handler

import (
	"errors"

	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func statusOf(kind service.ErrorKind) int {
	switch kind {
	case service.KindValidation, service.KindInsufficientStock, service.KindConflict:
		return fiber.StatusBadRequest
	case service.KindUnauthorized:
		return fiber.StatusUnauthorized
	case service.KindForbidden:
		return fiber.StatusForbidden
	case service.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders err as the JSON error envelope. Internal causes are
// logged and never leak to the client.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *service.AppError
	if !errors.As(err, &appErr) {
		appErr = service.Internal(err)
	}

	switch appErr.Kind {
	case service.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": appErr.Fields})
	case service.KindInternal:
		log.Error().Err(appErr.Err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("Request failed")
	}
	return c.Status(statusOf(appErr.Kind)).JSON(fiber.Map{"message": appErr.Message})
}

// ErrorHandler is installed on the fiber app for errors that escape handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	return respondError(c, err)
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
}

// actor returns the caller set by the auth middleware.
func actor(c *fiber.Ctx) service.Actor {
	if a := middleware.ActorFrom(c); a != nil {
		return *a
	}
	return service.Actor{}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, service.Invalid("id", "uuid", "must be a valid id")
	}
	return id, nil
}

// parseQuery decodes and validates query parameters into dest.
func parseQuery(c *fiber.Ctx, dest interface{}) error {
	if err := c.QueryParser(dest); err != nil {
		return service.Invalid("query", "invalid", err.Error())
	}
	if errs := validator.ValidateStruct(dest); len(errs) > 0 {
		return service.ValidationFailed(errs)
	}
	return nil
}
