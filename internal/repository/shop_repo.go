package repository

import (
	"context"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopRepository interface {
	WithTx(tx *gorm.DB) ShopRepository
	Create(ctx context.Context, shop *model.Shop) error
	FindPage(ctx context.Context, page model.PageRequest) ([]model.Shop, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	FindFirst(ctx context.Context) (*model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)
}

type shopRepo struct {
	db *gorm.DB
}

func NewShopRepo(db *gorm.DB) ShopRepository {
	return &shopRepo{db}
}

func (r *shopRepo) WithTx(tx *gorm.DB) ShopRepository {
	return &shopRepo{tx}
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return translate(r.db.WithContext(ctx).Create(shop).Error)
}

func (r *shopRepo) FindPage(ctx context.Context, page model.PageRequest) ([]model.Shop, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Shop{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	shops := []model.Shop{}
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&shops).Error
	return shops, total, err
}

func (r *shopRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

// FindFirst returns the oldest shop.
func (r *shopRepo) FindFirst(ctx context.Context) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).Order("created_at ASC").First(&shop).Error; err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

func (r *shopRepo) Update(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).
		Model(&model.Shop{}).
		Where("id = ?", shop.ID).
		Updates(map[string]interface{}{
			"name":       shop.Name,
			"address":    shop.Address,
			"phone":      shop.Phone,
			"updated_by": shop.UpdatedBy,
		}).Error
}

func (r *shopRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return softDelete(r.db.WithContext(ctx), &model.Shop{}, id, deletedBy)
}

func (r *shopRepo) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("shop_id = ?", id).Count(&count).Error
	return count, err
}

// softDelete records who deleted the row, then sets deleted_at.
func softDelete(db *gorm.DB, value interface{}, id uuid.UUID, deletedBy string) error {
	if err := db.Model(value).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
