package repository

import (
	"context"
	"time"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionFilter struct {
	ProductID uuid.UUID
	Type      model.TransactionType
}

func (f TransactionFilter) apply(db *gorm.DB) *gorm.DB {
	if f.ProductID != uuid.Nil {
		db = db.Where("product_id = ?", f.ProductID)
	}
	if f.Type != "" {
		db = db.Where("type = ?", f.Type)
	}
	return db
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// LedgerBalance is the fold of a product's live ledger rows.
type LedgerBalance struct {
	ProductID uuid.UUID
	Balance   int64
}

type TransactionRepository interface {
	WithTx(tx *gorm.DB) TransactionRepository
	Create(ctx context.Context, transaction *model.Transaction) error
	FindPage(ctx context.Context, filter TransactionFilter, page model.PageRequest) ([]model.Transaction, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	LockByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	Update(ctx context.Context, transaction *model.Transaction) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	TotalValue(ctx context.Context) (decimal.Decimal, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	LedgerBalances(ctx context.Context) ([]LedgerBalance, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) WithTx(tx *gorm.DB) TransactionRepository {
	return &transactionRepo{tx}
}

func (r *transactionRepo) Create(ctx context.Context, transaction *model.Transaction) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(transaction).Error)
}

func (r *transactionRepo) FindPage(ctx context.Context, filter TransactionFilter, page model.PageRequest) ([]model.Transaction, int64, error) {
	var total int64
	if err := filter.apply(r.db.WithContext(ctx).Model(&model.Transaction{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	transactions := []model.Transaction{}
	err := filter.apply(r.db.WithContext(ctx)).
		Preload("Product").
		Preload("User").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&transactions).Error
	return transactions, total, err
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("User").
		First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &transaction, nil
}

func (r *transactionRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &transaction, nil
}

func (r *transactionRepo) Update(ctx context.Context, transaction *model.Transaction) error {
	return r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ?", transaction.ID).
		Updates(map[string]interface{}{
			"type":       transaction.Type,
			"quantity":   transaction.Quantity,
			"reason":     transaction.Reason,
			"product_id": transaction.ProductID,
			"updated_by": transaction.UpdatedBy,
		}).Error
}

func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return softDelete(r.db.WithContext(ctx), &model.Transaction{}, id, deletedBy)
}

// TotalValue is Σ(quantity × price) over every live transaction, regardless of type.
func (r *transactionRepo) TotalValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("COALESCE(SUM(transactions.quantity * products.price), 0)").
		Joins("JOIN products ON products.id = transactions.product_id AND products.deleted_at IS NULL").
		Row().
		Scan(&total)
	return total, err
}

func (r *transactionRepo) FindBetween(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.WithContext(ctx).
		Select("id", "type", "quantity", "created_at").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at ASC").
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) LedgerBalances(ctx context.Context) ([]LedgerBalance, error) {
	var balances []LedgerBalance
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("product_id, SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END) AS balance", model.TxIn).
		Group("product_id").
		Scan(&balances).Error
	return balances, err
}
