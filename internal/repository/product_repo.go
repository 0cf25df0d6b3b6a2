package repository

import (
	"context"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Category string
	LowStock bool
}

func (f ProductFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.LowStock {
		db = db.Where("quantity <= low_stock_threshold")
	}
	return db
}

// CategoryTotal is Σ quantity for one category; uncategorised products report "".
type CategoryTotal struct {
	Category      string `json:"category"`
	TotalQuantity int64  `json:"totalQuantity"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"totalProducts"`
	LowStockCount  int64           `json:"lowStockCount"`
	TotalValuation decimal.Decimal `json:"totalValuation"`
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindPage(ctx context.Context, filter ProductFilter, page model.PageRequest) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByNames(ctx context.Context, names []string) ([]model.Product, error)
	FindAllQuantities(ctx context.Context) ([]model.Product, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int, updatedBy string) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindLowStock(ctx context.Context) ([]model.Product, error)
	CategoryTotals(ctx context.Context) ([]CategoryTotal, error)
	Stats(ctx context.Context) (*DashboardStats, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// WithTx binds the repository to an open transaction.
func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error)
}

func (r *productRepo) FindPage(ctx context.Context, filter ProductFilter, page model.PageRequest) ([]model.Product, int64, error) {
	var total int64
	if err := filter.apply(r.db.WithContext(ctx).Model(&model.Product{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	products := []model.Product{}
	err := filter.apply(r.db.WithContext(ctx)).
		Preload("Shop").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Shop").First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindDetail loads the product with its shop and ledger, newest entry first.
func (r *productRepo) FindDetail(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Transactions.User").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindByNames(ctx context.Context, names []string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&products).Error
	return products, err
}

func (r *productRepo) FindAllQuantities(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Select("id", "name", "quantity").Order("name ASC").Find(&products).Error
	return products, err
}

// LockByID reads the product with SELECT ... FOR UPDATE. Only meaningful on a
// repository bound with WithTx.
func (r *productRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":                product.Name,
			"description":         product.Description,
			"price":               product.Price,
			"quantity":            product.Quantity,
			"low_stock_threshold": product.LowStockThreshold,
			"category":            product.Category,
			"shop_id":             product.ShopID,
			"updated_by":          product.UpdatedBy,
		}).Error
}

func (r *productRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return softDelete(r.db.WithContext(ctx), &model.Product{}, id, deletedBy)
}

func (r *productRepo) FindLowStock(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Where("quantity <= low_stock_threshold").
		Order("quantity ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) CategoryTotals(ctx context.Context) ([]CategoryTotal, error) {
	totals := []CategoryTotal{}
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Select("COALESCE(category, '') AS category, COALESCE(SUM(quantity), 0) AS total_quantity").
		Group("category").
		Order("category ASC").
		Scan(&totals).Error
	return totals, err
}

func (r *productRepo) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Product{}).
		Where("quantity <= low_stock_threshold").
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// decimal is a Scanner, so go through database/sql directly
	err := db.Model(&model.Product{}).
		Select("COALESCE(SUM(quantity * price), 0)").
		Row().
		Scan(&stats.TotalValuation)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
