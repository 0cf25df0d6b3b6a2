package handler

import (
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ShopHandler struct {
	shops service.ShopService
}

func NewShopHandler(shops service.ShopService) *ShopHandler {
	return &ShopHandler{shops: shops}
}

type shopQuery struct {
	Page  int `query:"page" json:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

// GetShops lists shops by name.
// Query params: page, limit
func (h *ShopHandler) GetShops(c *fiber.Ctx) error {
	var q shopQuery
	if err := parseQuery(c, &q); err != nil {
		return respondError(c, err)
	}

	page, err := h.shops.List(c.UserContext(), model.NewPageRequest(q.Page, q.Limit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *ShopHandler) GetShop(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	shop, err := h.shops.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"shop": shop})
}

func (h *ShopHandler) CreateShop(c *fiber.Ctx) error {
	var req service.ShopInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	shop, err := h.shops.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Shop created successfully", "shop": shop})
}

func (h *ShopHandler) UpdateShop(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.ShopInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	shop, err := h.shops.Update(c.UserContext(), actor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Shop updated successfully", "shop": shop})
}

func (h *ShopHandler) DeleteShop(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.shops.Delete(c.UserContext(), actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Shop deleted successfully"})
}
