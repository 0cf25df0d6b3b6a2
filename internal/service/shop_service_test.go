package service

import (
	"testing"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopLifecycle(t *testing.T) {
	f := newFixture(t)
	addr := "1 Market St"

	shop, err := f.shops.Create(f.ctx, f.manager, ShopInput{Name: "Branch", Address: &addr})
	require.NoError(t, err)

	updated, err := f.shops.Update(f.ctx, f.manager, shop.ID, ShopInput{Name: "Branch 2"})
	require.NoError(t, err)
	assert.Equal(t, "Branch 2", updated.Name)
	assert.Nil(t, updated.Address)

	shops, err := f.shops.List(f.ctx, model.NewPageRequest(1, 1))
	require.NoError(t, err)
	assert.Len(t, shops.Items, 1)
	assert.Equal(t, model.Pagination{Total: 2, Page: 1, Pages: 2, Limit: 1}, shops.Pagination)

	assert.Equal(t, KindForbidden, KindOf(f.shops.Delete(f.ctx, f.manager, shop.ID)))
	require.NoError(t, f.shops.Delete(f.ctx, f.admin, shop.ID))

	_, err = f.shops.Get(f.ctx, shop.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestShopDeleteWithProductsConflicts(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Widget", 1, 0)

	err := f.shops.Delete(f.ctx, f.admin, f.shop.ID)
	assert.Equal(t, KindConflict, KindOf(err))

	assert.Equal(t, KindNotFound, KindOf(f.shops.Delete(f.ctx, f.admin, uuid.New())))
}

func TestShopValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.shops.Create(f.ctx, f.admin, ShopInput{})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.shops.Create(f.ctx, f.staff, ShopInput{Name: "Nope"})
	assert.Equal(t, KindForbidden, KindOf(err))
}
