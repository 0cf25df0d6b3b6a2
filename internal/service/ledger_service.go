package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"go-inventory-tracker/internal/cache"
	"go-inventory-tracker/internal/events"
	"go-inventory-tracker/internal/metrics"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplyInput struct {
	Type      model.TransactionType `json:"type" validate:"required,oneof=in out"`
	Quantity  int                   `json:"quantity" validate:"required,gte=1"`
	Reason    *string               `json:"reason" validate:"omitempty,max=255"`
	ProductID uuid.UUID             `json:"productId" validate:"uuid_required"`
}

// ReviseInput changes any subset of a recorded transaction.
type ReviseInput struct {
	Type      *model.TransactionType `json:"type" validate:"omitempty,oneof=in out"`
	Quantity  *int                   `json:"quantity" validate:"omitempty,gte=1"`
	Reason    *string                `json:"reason" validate:"omitempty,max=255"`
	ProductID *uuid.UUID             `json:"productId"`
}

// LedgerService records stock movements and keeps Product.Quantity equal to
// the fold of each product's ledger.
type LedgerService interface {
	Apply(ctx context.Context, actor Actor, in ApplyInput) (*model.Transaction, error)
	Revise(ctx context.Context, actor Actor, id uuid.UUID, in ReviseInput) (*model.Transaction, error)
	Retract(ctx context.Context, actor Actor, id uuid.UUID) error
	List(ctx context.Context, filter repository.TransactionFilter, page model.PageRequest) (*model.Page[model.Transaction], error)
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
}

type ledgerService struct {
	notifier
	db           *gorm.DB
	products     repository.ProductRepository
	transactions repository.TransactionRepository
}

func NewLedgerService(db *gorm.DB, products repository.ProductRepository, transactions repository.TransactionRepository, publisher events.Publisher, reports cache.ReportCache) LedgerService {
	return &ledgerService{
		notifier:     newNotifier(publisher, reports),
		db:           db,
		products:     products,
		transactions: transactions,
	}
}

// applyEffect returns the quantity p would hold after moving q units in
// direction t, refusing to go below zero.
func applyEffect(p *model.Product, t model.TransactionType, q int) (int, error) {
	next := p.Quantity + t.Signed(q)
	if next < 0 {
		return 0, InsufficientStock(fmt.Sprintf("Insufficient stock for '%s': available %d, requested %d", p.Name, p.Quantity, q))
	}
	return next, nil
}

func observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	metrics.ObserveReconciliation(operation, outcome)
}

func (s *ledgerService) Apply(ctx context.Context, actor Actor, in ApplyInput) (*model.Transaction, error) {
	if err := authorize(actor, model.PrivTransactionCreate); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		entry  *model.Transaction
		change events.ProductChange
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)

		// 1. Lock the product row before reading its quantity
		product, err := products.LockByID(ctx, in.ProductID)
		if err != nil {
			return notFoundOr(err, "Product not found")
		}

		// 2. Compute and persist the new quantity
		next, err := applyEffect(product, in.Type, in.Quantity)
		if err != nil {
			return err
		}
		if err := products.UpdateQuantity(ctx, product.ID, next, actor.auditID()); err != nil {
			return err
		}

		// 3. Ledger row in the same transaction
		entry = &model.Transaction{
			Type:      in.Type,
			Quantity:  in.Quantity,
			Reason:    in.Reason,
			ProductID: product.ID,
			UserID:    actor.ID,
		}
		entry.Stamp(actor.auditID())
		if err := s.transactions.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		change = events.ProductChange{ID: product.ID, Name: product.Name, OldQuantity: product.Quantity, NewQuantity: next}
		return nil
	})
	observe("apply", err)
	if err != nil {
		return nil, asAppError(err)
	}

	s.committed(ctx, actor, events.StockEvent{
		Action:        events.ActionTransactionCreated,
		TransactionID: &entry.ID,
		Products:      []events.ProductChange{change},
		Message:       fmt.Sprintf("%s recorded %s %d of '%s'", actor.Username, entry.Type, entry.Quantity, change.Name),
	})
	return entry, nil
}

// lockInOrder locks every distinct product in ascending id order so two
// revisions touching the same pair cannot deadlock.
func lockInOrder(ctx context.Context, products repository.ProductRepository, ids ...uuid.UUID) (map[uuid.UUID]*model.Product, []uuid.UUID, error) {
	ordered := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(ordered, id) {
			ordered = append(ordered, id)
		}
	}
	slices.SortFunc(ordered, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	locked := make(map[uuid.UUID]*model.Product, len(ordered))
	for _, id := range ordered {
		p, err := products.LockByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		locked[id] = p
	}
	return locked, ordered, nil
}

func (s *ledgerService) Revise(ctx context.Context, actor Actor, id uuid.UUID, in ReviseInput) (*model.Transaction, error) {
	if err := authorize(actor, model.PrivTransactionUpdate); err != nil {
		return nil, err
	}
	if err := validate(&in); err != nil {
		return nil, err
	}

	var (
		entry   *model.Transaction
		changes []events.ProductChange
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		transactions := s.transactions.WithTx(tx)

		var err error
		entry, err = transactions.LockByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "Transaction not found")
		}

		targetID := entry.ProductID
		if in.ProductID != nil && *in.ProductID != uuid.Nil {
			targetID = *in.ProductID
		}

		locked, order, err := lockInOrder(ctx, products, entry.ProductID, targetID)
		if err != nil {
			return notFoundOr(err, "Product not found")
		}
		before := make(map[uuid.UUID]int, len(locked))
		for pid, p := range locked {
			before[pid] = p.Quantity
		}

		// 1. Reverse the original effect
		original := locked[entry.ProductID]
		original.Quantity -= entry.Effect()

		// 2. Apply the revised effect to the target, checked against the
		// already reversed quantity when it is the same product
		newType := entry.Type
		if in.Type != nil {
			newType = *in.Type
		}
		newQty := entry.Quantity
		if in.Quantity != nil {
			newQty = *in.Quantity
		}
		target := locked[targetID]
		if newType == model.TxOut && newQty > target.Quantity {
			return InsufficientStock(fmt.Sprintf("Insufficient stock for '%s': available %d, requested %d", target.Name, max(target.Quantity, 0), newQty))
		}
		target.Quantity += newType.Signed(newQty)

		// 3. Every touched product must stay non-negative
		for _, pid := range order {
			p := locked[pid]
			if p.Quantity < 0 {
				return InsufficientStock(fmt.Sprintf("Revising this transaction would leave '%s' at %d", p.Name, p.Quantity))
			}
		}
		for _, pid := range order {
			if err := products.UpdateQuantity(ctx, pid, locked[pid].Quantity, actor.auditID()); err != nil {
				return err
			}
		}

		// 4. Persist the revised ledger row
		entry.Type = newType
		entry.Quantity = newQty
		entry.ProductID = targetID
		if in.Reason != nil {
			entry.Reason = in.Reason
		}
		entry.UpdatedBy = actor.auditID()
		if err := transactions.Update(ctx, entry); err != nil {
			return err
		}

		for _, pid := range order {
			p := locked[pid]
			changes = append(changes, events.ProductChange{ID: pid, Name: p.Name, OldQuantity: before[pid], NewQuantity: p.Quantity})
		}
		return nil
	})
	observe("revise", err)
	if err != nil {
		return nil, asAppError(err)
	}

	s.committed(ctx, actor, events.StockEvent{
		Action:        events.ActionTransactionUpdated,
		TransactionID: &entry.ID,
		Products:      changes,
		Message:       fmt.Sprintf("%s revised a transaction to %s %d", actor.Username, entry.Type, entry.Quantity),
	})
	return entry, nil
}

func (s *ledgerService) Retract(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := authorize(actor, model.PrivTransactionDelete); err != nil {
		return err
	}

	var (
		entry  *model.Transaction
		change events.ProductChange
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		transactions := s.transactions.WithTx(tx)

		var err error
		entry, err = transactions.LockByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "Transaction not found")
		}

		product, err := products.LockByID(ctx, entry.ProductID)
		if err != nil {
			return notFoundOr(err, "Product not found")
		}

		next := product.Quantity - entry.Effect()
		if next < 0 {
			return InsufficientStock(fmt.Sprintf("Cannot delete transaction: '%s' has %d left, removing this entry needs %d", product.Name, product.Quantity, entry.Quantity))
		}
		if err := products.UpdateQuantity(ctx, product.ID, next, actor.auditID()); err != nil {
			return err
		}
		if err := transactions.Delete(ctx, entry.ID, actor.auditID()); err != nil {
			return err
		}

		change = events.ProductChange{ID: product.ID, Name: product.Name, OldQuantity: product.Quantity, NewQuantity: next}
		return nil
	})
	observe("retract", err)
	if err != nil {
		return asAppError(err)
	}

	s.committed(ctx, actor, events.StockEvent{
		Action:        events.ActionTransactionDeleted,
		TransactionID: &entry.ID,
		Products:      []events.ProductChange{change},
		Message:       fmt.Sprintf("%s deleted a %s %d transaction of '%s'", actor.Username, entry.Type, entry.Quantity, change.Name),
	})
	return nil
}

func (s *ledgerService) List(ctx context.Context, filter repository.TransactionFilter, page model.PageRequest) (*model.Page[model.Transaction], error) {
	items, total, err := s.transactions.FindPage(ctx, filter, page)
	if err != nil {
		return nil, Internal(err)
	}
	return &model.Page[model.Transaction]{Items: items, Pagination: model.NewPagination(total, page)}, nil
}

func (s *ledgerService) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	t, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return nil, asAppError(notFoundOr(err, "Transaction not found"))
	}
	return t, nil
}
