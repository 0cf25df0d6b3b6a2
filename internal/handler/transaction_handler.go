package handler

import (
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	ledger    service.LedgerService
	dashboard service.DashboardService
}

func NewTransactionHandler(ledger service.LedgerService, dashboard service.DashboardService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, dashboard: dashboard}
}

type transactionQuery struct {
	Page      int    `query:"page" json:"page" validate:"omitempty,min=1"`
	Limit     int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	ProductID string `query:"productId" json:"productId" validate:"omitempty,uuid"`
	Type      string `query:"type" json:"type" validate:"omitempty,oneof=in out"`
}

func (q transactionQuery) filter() repository.TransactionFilter {
	f := repository.TransactionFilter{Type: model.TransactionType(q.Type)}
	if q.ProductID != "" {
		f.ProductID = uuid.MustParse(q.ProductID)
	}
	return f
}

// GetTransactions lists the ledger along with the overall transaction value.
// Query params: page, limit, productId, type
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	var q transactionQuery
	if err := parseQuery(c, &q); err != nil {
		return respondError(c, err)
	}

	page, err := h.ledger.List(c.UserContext(), q.filter(), model.NewPageRequest(q.Page, q.Limit))
	if err != nil {
		return respondError(c, err)
	}
	total, err := h.dashboard.TotalValue(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"items":      page.Items,
		"pagination": page.Pagination,
		"totalValue": total,
	})
}

func (h *TransactionHandler) GetTotalValue(c *fiber.Ctx) error {
	total, err := h.dashboard.TotalValue(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"totalValue": total})
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	tx, err := h.ledger.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"transaction": tx})
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.ApplyInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	tx, err := h.ledger.Apply(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Transaction created successfully", "transaction": tx})
}

func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.ReviseInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	tx, err := h.ledger.Revise(c.UserContext(), actor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated successfully", "transaction": tx})
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.ledger.Retract(c.UserContext(), actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
}
