package bootstrap

import (
	"context"
	"testing"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	opts := Options{AdminEmail: "Admin@Example.com", AdminPassword: "Admin123"}

	require.NoError(t, Run(ctx, db, opts))
	require.NoError(t, Run(ctx, db, opts))

	var users, shops int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&model.Shop{}).Count(&shops).Error)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, len(defaultShops), shops)

	admin, err := repository.NewUserRepo(db).FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.True(t, admin.CheckPassword("Admin123"))
}

func TestSeedShopsSkipsExisting(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateShop(t, db, "Corner")

	n, err := SeedShops(context.Background(), repository.NewShopRepo(db))
	require.NoError(t, err)
	assert.Zero(t, n)
}
