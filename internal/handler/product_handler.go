package handler

import (
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	products  service.ProductService
	dashboard service.DashboardService
}

func NewProductHandler(products service.ProductService, dashboard service.DashboardService) *ProductHandler {
	return &ProductHandler{products: products, dashboard: dashboard}
}

type productQuery struct {
	Page     int    `query:"page" json:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	Category string `query:"category" json:"category" validate:"omitempty,max=100"`
	LowStock bool   `query:"lowStock" json:"lowStock"`
}

// GetProducts lists products.
// Query params: page, limit, category, lowStock
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	var q productQuery
	if err := parseQuery(c, &q); err != nil {
		return respondError(c, err)
	}

	page, err := h.products.List(c.UserContext(), repository.ProductFilter{
		Category: q.Category,
		LowStock: q.LowStock,
	}, model.NewPageRequest(q.Page, q.Limit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product": product})
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.products.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created successfully", "product": product})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.UpdateProductInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	product, err := h.products.Update(c.UserContext(), actor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated successfully", "product": product})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.products.Delete(c.UserContext(), actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// SeedProducts inserts the sample catalogue.
// POST /api/products/seed
func (h *ProductHandler) SeedProducts(c *fiber.Ctx) error {
	products, err := h.products.Seed(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Products seeded successfully",
		"count":    len(products),
		"products": products,
	})
}

func (h *ProductHandler) GetLowStockAlerts(c *fiber.Ctx) error {
	products, err := h.dashboard.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"alerts": products})
}

func (h *ProductHandler) GetTotalQuantity(c *fiber.Ctx) error {
	totals, err := h.dashboard.CategoryTotals(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categoryTotals": totals})
}

// GetReconciliation reports products whose stored quantity disagrees with
// their ledger.
func (h *ProductHandler) GetReconciliation(c *fiber.Ctx) error {
	drift, err := h.dashboard.Reconciliation(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"consistent": len(drift) == 0, "drift": drift})
}
