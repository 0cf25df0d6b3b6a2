// Package testutil builds throwaway sqlite stores and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory sqlite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, Name: dsn, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, u.SetPassword("Secret123"))
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateShop(t *testing.T, db *gorm.DB, name string) *model.Shop {
	t.Helper()
	s := &model.Shop{Name: name}
	require.NoError(t, db.Create(s).Error)
	return s
}

// CreateProduct inserts a product row directly, without a ledger entry.
func CreateProduct(t *testing.T, db *gorm.DB, shopID uuid.UUID, name string, price string, quantity int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:              name,
		Price:             decimal.RequireFromString(price),
		Quantity:          quantity,
		LowStockThreshold: model.DefaultLowStockThreshold,
		ShopID:            shopID,
	}
	require.NoError(t, db.Omit("Shop", "Transactions").Create(p).Error)
	return p
}

func CreateTransaction(t *testing.T, db *gorm.DB, productID, userID uuid.UUID, typ model.TransactionType, quantity int) *model.Transaction {
	t.Helper()
	tx := &model.Transaction{Type: typ, Quantity: quantity, ProductID: productID, UserID: userID}
	require.NoError(t, db.Omit("Product", "User").Create(tx).Error)
	return tx
}

// Quantity reloads the stored quantity of a product.
func Quantity(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, db.Select("quantity").First(&p, "id = ?", productID).Error)
	return p.Quantity
}

func Ptr[T any](v T) *T {
	return &v
}
