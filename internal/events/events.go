// Package events carries committed stock changes to interested listeners.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const TypeStockUpdate = "stock_update"

const (
	ActionProductCreated     = "product_created"
	ActionProductUpdated     = "product_updated"
	ActionProductDeleted     = "product_deleted"
	ActionProductsSeeded     = "products_seeded"
	ActionTransactionCreated = "transaction_created"
	ActionTransactionUpdated = "transaction_updated"
	ActionTransactionDeleted = "transaction_deleted"
)

// ProductChange is the before/after quantity of one product touched by an operation.
type ProductChange struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	OldQuantity int       `json:"oldQuantity"`
	NewQuantity int       `json:"newQuantity"`
}

type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type StockEvent struct {
	Type          string          `json:"type"`
	Action        string          `json:"action"`
	TransactionID *uuid.UUID      `json:"transactionId,omitempty"`
	Products      []ProductChange `json:"products"`
	User          User            `json:"user"`
	Message       string          `json:"message"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// Key is the partition key: the first product touched, so every quantity
// change of one product stays in order on one partition.
func (e StockEvent) Key() string {
	if len(e.Products) > 0 {
		return e.Products[0].ID.String()
	}
	return e.Action
}

// Publisher delivers a committed event. Implementations must not block on slow consumers.
type Publisher interface {
	Publish(ctx context.Context, event StockEvent) error
}

// Multi fans an event out to every publisher; failures are logged, not returned.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event StockEvent) error {
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			log.Error().Err(err).Str("action", event.Action).Msg("Failed to publish stock event")
		}
	}
	return nil
}

type Nop struct{}

func (Nop) Publish(context.Context, StockEvent) error { return nil }

// Recorder keeps every published event in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []StockEvent
}

func (r *Recorder) Publish(_ context.Context, event StockEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

func (r *Recorder) Last() (StockEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Events) == 0 {
		return StockEvent{}, false
	}
	return r.Events[len(r.Events)-1], true
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Events)
}
