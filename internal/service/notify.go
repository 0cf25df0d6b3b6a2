package service

import (
	"context"
	"errors"
	"time"

	"go-inventory-tracker/internal/cache"
	"go-inventory-tracker/internal/events"
	"go-inventory-tracker/internal/repository"

	"github.com/rs/zerolog/log"
)

// notifier runs the after-commit side effects shared by every mutating service.
type notifier struct {
	publisher events.Publisher
	reports   cache.ReportCache
}

func newNotifier(publisher events.Publisher, reports cache.ReportCache) notifier {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if reports == nil {
		reports = cache.NewNop()
	}
	return notifier{publisher: publisher, reports: reports}
}

// committed must only be called once the database transaction has committed.
func (n notifier) committed(ctx context.Context, actor Actor, event events.StockEvent) {
	if err := n.reports.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate report cache")
	}

	event.Type = events.TypeStockUpdate
	event.User = events.User{ID: actor.ID, Username: actor.Username}
	event.OccurredAt = time.Now().UTC()
	if err := n.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("action", event.Action).Msg("Failed to publish stock event")
	}
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound(message)
	}
	return err
}
