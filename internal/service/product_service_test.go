package service

import (
	"testing"

	"go-inventory-tracker/internal/events"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerFor(t *testing.T, f *fixture, productID uuid.UUID) []model.Transaction {
	t.Helper()
	var rows []model.Transaction
	require.NoError(t, f.db.Where("product_id = ?", productID).Order("created_at ASC").Find(&rows).Error)
	return rows
}

func TestCreateProductRecordsInitialStock(t *testing.T) {
	f := newFixture(t)

	p := f.product(t, "Widget", 12, 3)

	rows := ledgerFor(t, f, p.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.TxIn, rows[0].Type)
	assert.Equal(t, 12, rows[0].Quantity)
	require.NotNil(t, rows[0].Reason)
	assert.Equal(t, "Initial stock", *rows[0].Reason)
	assert.Equal(t, f.admin.ID, rows[0].UserID)

	ev, ok := f.events.Last()
	require.True(t, ok)
	assert.Equal(t, events.ActionProductCreated, ev.Action)
}

func TestCreateProductWithoutStockHasEmptyLedger(t *testing.T) {
	f := newFixture(t)

	p := f.product(t, "Empty", 0, 3)

	assert.Empty(t, ledgerFor(t, f, p.ID))
	f.requireNoDrift(t)
}

func TestCreateProductDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)

	p, err := f.products.Create(f.ctx, f.manager, CreateProductInput{
		Name:     "Defaulted",
		Price:    testutil.Ptr(decimal.Zero),
		Quantity: testutil.Ptr(1),
		ShopID:   f.shop.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLowStockThreshold, p.LowStockThreshold)

	tests := []struct {
		name  string
		actor Actor
		in    CreateProductInput
		kind  ErrorKind
	}{
		{"negative price", f.admin, CreateProductInput{Name: "x", Price: testutil.Ptr(decimal.NewFromInt(-1)), Quantity: testutil.Ptr(1), ShopID: f.shop.ID}, KindValidation},
		{"missing quantity", f.admin, CreateProductInput{Name: "x", Price: testutil.Ptr(decimal.Zero), ShopID: f.shop.ID}, KindValidation},
		{"unknown shop", f.admin, CreateProductInput{Name: "x", Price: testutil.Ptr(decimal.Zero), Quantity: testutil.Ptr(1), ShopID: uuid.New()}, KindNotFound},
		{"staff", f.staff, CreateProductInput{Name: "x", Price: testutil.Ptr(decimal.Zero), Quantity: testutil.Ptr(1), ShopID: f.shop.ID}, KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.products.Create(f.ctx, tt.actor, tt.in)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestUpdateProductQuantityRecordsAdjustment(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 3)

	updated, err := f.products.Update(f.ctx, f.manager, p.ID, UpdateProductInput{Quantity: testutil.Ptr(4), Name: testutil.Ptr("Gadget")})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
	assert.Equal(t, "Gadget", updated.Name)

	rows := ledgerFor(t, f, p.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, model.TxOut, rows[1].Type)
	assert.Equal(t, 6, rows[1].Quantity)
	assert.Equal(t, "Stock adjustment", *rows[1].Reason)

	_, err = f.products.Update(f.ctx, f.manager, p.ID, UpdateProductInput{Quantity: testutil.Ptr(9)})
	require.NoError(t, err)
	rows = ledgerFor(t, f, p.ID)
	require.Len(t, rows, 3)
	assert.Equal(t, model.TxIn, rows[2].Type)
	assert.Equal(t, 5, rows[2].Quantity)

	// no quantity change, no ledger row
	_, err = f.products.Update(f.ctx, f.manager, p.ID, UpdateProductInput{Price: testutil.Ptr(decimal.RequireFromString("1.25"))})
	require.NoError(t, err)
	assert.Len(t, ledgerFor(t, f, p.ID), 3)

	f.requireNoDrift(t)
}

func TestUpdateProductErrors(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 3)

	_, err := f.products.Update(f.ctx, f.admin, uuid.New(), UpdateProductInput{Name: testutil.Ptr("x")})
	assert.Equal(t, KindNotFound, KindOf(err))

	other := uuid.New()
	_, err = f.products.Update(f.ctx, f.admin, p.ID, UpdateProductInput{ShopID: &other})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.products.Update(f.ctx, f.admin, p.ID, UpdateProductInput{Quantity: testutil.Ptr(-1)})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.products.Update(f.ctx, f.staff, p.ID, UpdateProductInput{Name: testutil.Ptr("x")})
	assert.Equal(t, KindForbidden, KindOf(err))

	assert.Equal(t, 10, f.quantity(t, p.ID))
}

func TestGetProductIncludesHistory(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 3)
	f.apply(t, p.ID, model.TxOut, 2)

	got, err := f.products.Get(f.ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Shop)
	assert.Equal(t, "Main", got.Shop.Name)
	require.Len(t, got.Transactions, 2)
	require.NotNil(t, got.Transactions[0].User)
	assert.Equal(t, "admin", got.Transactions[0].User.Username)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Widget", 10, 3)

	assert.Equal(t, KindForbidden, KindOf(f.products.Delete(f.ctx, f.manager, p.ID)))
	require.NoError(t, f.products.Delete(f.ctx, f.admin, p.ID))

	_, err := f.products.Get(f.ctx, p.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindNotFound, KindOf(f.products.Delete(f.ctx, f.admin, p.ID)))

	// ledger is kept for audit
	var n int64
	require.NoError(t, f.db.Model(&model.Transaction{}).Where("product_id = ?", p.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestListProductsPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 15; i++ {
		f.product(t, "P", 1, 0)
	}

	page, err := f.products.List(f.ctx, repository.ProductFilter{}, model.NewPageRequest(2, 10))
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, model.Pagination{Total: 15, Page: 2, Pages: 2, Limit: 10}, page.Pagination)
}

func TestSeedIsNotRepeatable(t *testing.T) {
	f := newFixture(t)

	seeded, err := f.products.Seed(f.ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, seeded, 2)
	assert.Equal(t, f.shop.ID, seeded[0].ShopID)
	assert.Equal(t, 20, seeded[0].Quantity)
	assert.Equal(t, 5, seeded[1].LowStockThreshold)

	rows := ledgerFor(t, f, seeded[0].ID)
	require.Len(t, rows, 1)
	assert.Equal(t, "Initial stock from seeding", *rows[0].Reason)

	_, err = f.products.Seed(f.ctx, f.admin)
	assert.Equal(t, KindConflict, KindOf(err))

	var n int64
	require.NoError(t, f.db.Model(&model.Product{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
	f.requireNoDrift(t)
}

func TestSeedCreatesShopWhenNoneExists(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Delete(&model.Shop{}, "id = ?", f.shop.ID).Error)

	seeded, err := f.products.Seed(f.ctx, f.admin)
	require.NoError(t, err)

	var shop model.Shop
	require.NoError(t, f.db.First(&shop, "id = ?", seeded[0].ShopID).Error)
	assert.Equal(t, "Main Store", shop.Name)

	_, err = f.products.Seed(f.ctx, f.manager)
	assert.Equal(t, KindForbidden, KindOf(err))
}
