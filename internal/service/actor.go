package service

import (
	"fmt"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	ID       uuid.UUID
	Username string
	Role     model.Role
}

func (a Actor) auditID() string {
	if a.ID == uuid.Nil {
		return "system"
	}
	return a.ID.String()
}

func authorize(a Actor, p model.Privilege) error {
	if !a.Role.Has(p) {
		return Forbidden(fmt.Sprintf("Forbidden: requires '%s' privilege", p))
	}
	return nil
}
