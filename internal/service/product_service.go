package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-tracker/internal/cache"
	"go-inventory-tracker/internal/events"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	reasonInitialStock = "Initial stock"
	reasonAdjustment   = "Stock adjustment"
	reasonSeeded       = "Initial stock from seeding"

	seedShopName = "Main Store"
)

type CreateProductInput struct {
	Name              string           `json:"name" validate:"required,min=1,max=255"`
	Description       *string          `json:"description" validate:"omitempty,max=1000"`
	Price             *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Quantity          *int             `json:"quantity" validate:"required,gte=0"`
	LowStockThreshold *int             `json:"lowStockThreshold" validate:"omitempty,gte=0"`
	Category          *string          `json:"category" validate:"omitempty,max=100"`
	ShopID            uuid.UUID        `json:"shopId" validate:"uuid_required"`
}

type UpdateProductInput struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description       *string          `json:"description" validate:"omitempty,max=1000"`
	Price             *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Quantity          *int             `json:"quantity" validate:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"lowStockThreshold" validate:"omitempty,gte=0"`
	Category          *string          `json:"category" validate:"omitempty,max=100"`
	ShopID            *uuid.UUID       `json:"shopId"`
}

type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter, page model.PageRequest) (*model.Page[model.Product], error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Create(ctx context.Context, actor Actor, in CreateProductInput) (*model.Product, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateProductInput) (*model.Product, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Seed(ctx context.Context, actor Actor) ([]model.Product, error)
}

type productService struct {
	notifier
	db           *gorm.DB
	products     repository.ProductRepository
	shops        repository.ShopRepository
	transactions repository.TransactionRepository
}

func NewProductService(db *gorm.DB, products repository.ProductRepository, shops repository.ShopRepository, transactions repository.TransactionRepository, publisher events.Publisher, reports cache.ReportCache) ProductService {
	return &productService{
		notifier:     newNotifier(publisher, reports),
		db:           db,
		products:     products,
		shops:        shops,
		transactions: transactions,
	}
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter, page model.PageRequest) (*model.Page[model.Product], error) {
	items, total, err := s.products.FindPage(ctx, filter, page)
	if err != nil {
		return nil, Internal(err)
	}
	return &model.Page[model.Product]{Items: items, Pagination: model.NewPagination(total, page)}, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.products.FindDetail(ctx, id)
	if err != nil {
		return nil, asAppError(notFoundOr(err, "Product not found"))
	}
	return p, nil
}

// recordStock writes a ledger row for a stock change that did not come
// through the transaction endpoints.
func recordStock(ctx context.Context, transactions repository.TransactionRepository, actor Actor, productID uuid.UUID, delta int, reason string) error {
	if delta == 0 {
		return nil
	}
	typ, qty := model.TxIn, delta
	if delta < 0 {
		typ, qty = model.TxOut, -delta
	}
	r := reason
	entry := &model.Transaction{Type: typ, Quantity: qty, Reason: &r, ProductID: productID, UserID: actor.ID}
	entry.Stamp(actor.auditID())
	return transactions.Create(ctx, entry)
}

func (s *productService) Create(ctx context.Context, actor Actor, in CreateProductInput) (*model.Product, error) {
	if err := authorize(actor, model.PrivProductCreate); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:              in.Name,
		Description:       in.Description,
		Price:             *in.Price,
		Quantity:          *in.Quantity,
		LowStockThreshold: model.DefaultLowStockThreshold,
		Category:          in.Category,
		ShopID:            in.ShopID,
	}
	if in.LowStockThreshold != nil {
		product.LowStockThreshold = *in.LowStockThreshold
	}
	product.Stamp(actor.auditID())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.shops.WithTx(tx).FindByID(ctx, in.ShopID); err != nil {
			return notFoundOr(err, "Shop not found")
		}
		if err := s.products.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		return recordStock(ctx, s.transactions.WithTx(tx), actor, product.ID, product.Quantity, reasonInitialStock)
	})
	if err != nil {
		return nil, asAppError(err)
	}

	s.committed(ctx, actor, events.StockEvent{
		Action:   events.ActionProductCreated,
		Products: []events.ProductChange{{ID: product.ID, Name: product.Name, OldQuantity: 0, NewQuantity: product.Quantity}},
		Message:  fmt.Sprintf("%s created product '%s'", actor.Username, product.Name),
	})
	return product, nil
}

func (s *productService) Update(ctx context.Context, actor Actor, id uuid.UUID, in UpdateProductInput) (*model.Product, error) {
	if err := authorize(actor, model.PrivProductUpdate); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		product     *model.Product
		oldQuantity int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)

		var err error
		product, err = products.LockByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "Product not found")
		}
		oldQuantity = product.Quantity

		if in.Name != nil {
			product.Name = *in.Name
		}
		if in.Description != nil {
			product.Description = in.Description
		}
		if in.Price != nil {
			product.Price = *in.Price
		}
		if in.LowStockThreshold != nil {
			product.LowStockThreshold = *in.LowStockThreshold
		}
		if in.Category != nil {
			product.Category = in.Category
		}
		if in.ShopID != nil && *in.ShopID != product.ShopID {
			if _, err := s.shops.WithTx(tx).FindByID(ctx, *in.ShopID); err != nil {
				return notFoundOr(err, "Shop not found")
			}
			product.ShopID = *in.ShopID
		}
		if in.Quantity != nil {
			product.Quantity = *in.Quantity
		}
		product.UpdatedBy = actor.auditID()

		if err := products.Update(ctx, product); err != nil {
			return err
		}
		// a direct quantity edit is reconciled by an adjustment row
		return recordStock(ctx, s.transactions.WithTx(tx), actor, product.ID, product.Quantity-oldQuantity, reasonAdjustment)
	})
	if err != nil {
		return nil, asAppError(err)
	}

	s.committed(ctx, actor, events.StockEvent{
		Action:   events.ActionProductUpdated,
		Products: []events.ProductChange{{ID: product.ID, Name: product.Name, OldQuantity: oldQuantity, NewQuantity: product.Quantity}},
		Message:  fmt.Sprintf("%s updated product '%s'", actor.Username, product.Name),
	})
	return product, nil
}

func (s *productService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := authorize(actor, model.PrivProductDelete); err != nil {
		return err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return asAppError(notFoundOr(err, "Product not found"))
	}
	if err := s.products.Delete(ctx, id, actor.auditID()); err != nil {
		return asAppError(notFoundOr(err, "Product not found"))
	}

	s.committed(ctx, actor, events.StockEvent{
		Action:   events.ActionProductDeleted,
		Products: []events.ProductChange{{ID: product.ID, Name: product.Name, OldQuantity: product.Quantity, NewQuantity: 0}},
		Message:  fmt.Sprintf("%s deleted product '%s'", actor.Username, product.Name),
	})
	return nil
}

func sampleProducts() []model.Product {
	electronics, household := "Electronics", "Household"
	d1, d2 := "This is a sample product for testing", "Another sample product"
	return []model.Product{
		{Name: "Sample Product 1", Description: &d1, Price: decimal.RequireFromString("100.00"), Quantity: 20, LowStockThreshold: 5, Category: &electronics},
		{Name: "Sample Product 2", Description: &d2, Price: decimal.RequireFromString("50.00"), Quantity: 15, LowStockThreshold: 5, Category: &household},
	}
}

// Seed adds the sample products to the oldest shop, creating one when none exists.
func (s *productService) Seed(ctx context.Context, actor Actor) ([]model.Product, error) {
	if err := authorize(actor, model.PrivProductSeed); err != nil {
		return nil, err
	}

	samples := sampleProducts()
	names := make([]string, len(samples))
	for i := range samples {
		names[i] = samples[i].Name
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		shops := s.shops.WithTx(tx)
		transactions := s.transactions.WithTx(tx)

		existing, err := products.FindByNames(ctx, names)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return Conflict("Sample products already exist")
		}

		shop, err := shops.FindFirst(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			shop = &model.Shop{Name: seedShopName}
			shop.Stamp(actor.auditID())
			if err := shops.Create(ctx, shop); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for i := range samples {
			samples[i].ShopID = shop.ID
			samples[i].Stamp(actor.auditID())
			if err := products.Create(ctx, &samples[i]); err != nil {
				return err
			}
			if err := recordStock(ctx, transactions, actor, samples[i].ID, samples[i].Quantity, reasonSeeded); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	changes := make([]events.ProductChange, len(samples))
	for i, p := range samples {
		changes[i] = events.ProductChange{ID: p.ID, Name: p.Name, NewQuantity: p.Quantity}
	}
	s.committed(ctx, actor, events.StockEvent{
		Action:   events.ActionProductsSeeded,
		Products: changes,
		Message:  fmt.Sprintf("%s seeded %d sample products", actor.Username, len(samples)),
	})
	return samples, nil
}
