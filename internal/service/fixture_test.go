package service

import (
	"context"
	"testing"

	"go-inventory-tracker/internal/cache"
	"go-inventory-tracker/internal/events"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	ledger    LedgerService
	products  ProductService
	shops     ShopService
	dashboard DashboardService
	events    *events.Recorder
	reports   *cache.Memory
	admin     Actor
	manager   Actor
	staff     Actor
	shop      *model.Shop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	productRepo := repository.NewProductRepo(db)
	shopRepo := repository.NewShopRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	rec := &events.Recorder{}
	reports := cache.NewMemory()

	actor := func(name string, role model.Role) Actor {
		u := testutil.CreateUser(t, db, name, role)
		return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
	}

	return &fixture{
		ctx:       context.Background(),
		db:        db,
		ledger:    NewLedgerService(db, productRepo, txRepo, rec, reports),
		products:  NewProductService(db, productRepo, shopRepo, txRepo, rec, reports),
		shops:     NewShopService(shopRepo),
		dashboard: NewDashboardService(productRepo, txRepo, reports),
		events:    rec,
		reports:   reports,
		admin:     actor("admin", model.RoleAdmin),
		manager:   actor("manager", model.RoleManager),
		staff:     actor("staff", model.RoleStaff),
		shop:      testutil.CreateShop(t, db, "Main"),
	}
}

// product creates a product through the service so its ledger starts consistent.
func (f *fixture) product(t *testing.T, name string, quantity int, threshold int) *model.Product {
	t.Helper()
	p, err := f.products.Create(f.ctx, f.admin, CreateProductInput{
		Name:              name,
		Price:             testutil.Ptr(decimal.RequireFromString("10.00")),
		Quantity:          testutil.Ptr(quantity),
		LowStockThreshold: testutil.Ptr(threshold),
		ShopID:            f.shop.ID,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) apply(t *testing.T, productID uuid.UUID, typ model.TransactionType, qty int) *model.Transaction {
	t.Helper()
	tx, err := f.ledger.Apply(f.ctx, f.admin, ApplyInput{Type: typ, Quantity: qty, ProductID: productID})
	require.NoError(t, err)
	return tx
}

func (f *fixture) quantity(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	return testutil.Quantity(t, f.db, productID)
}

func (f *fixture) ledgerRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Transaction{}).Count(&n).Error)
	return n
}

// requireNoDrift asserts every product still equals the fold of its ledger.
func (f *fixture) requireNoDrift(t *testing.T) {
	t.Helper()
	drift, err := f.dashboard.Reconciliation(f.ctx, f.admin)
	require.NoError(t, err)
	require.Empty(t, drift)
}

func repositoryFilter(productID uuid.UUID, typ model.TransactionType) repository.TransactionFilter {
	return repository.TransactionFilter{ProductID: productID, Type: typ}
}
