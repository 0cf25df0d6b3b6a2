package service

import (
	"context"
	"fmt"
	"time"

	"go-inventory-tracker/internal/cache"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultMovementDays = 7
	maxMovementDays     = 366
)

// DriftEntry is a product whose stored quantity disagrees with its ledger.
type DriftEntry struct {
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	StoredQuantity int       `json:"storedQuantity"`
	LedgerQuantity int64     `json:"ledgerQuantity"`
	Drift          int64     `json:"drift"`
}

type DashboardService interface {
	LowStock(ctx context.Context) ([]model.Product, error)
	CategoryTotals(ctx context.Context) ([]repository.CategoryTotal, error)
	TotalValue(ctx context.Context) (decimal.Decimal, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	// Reconciliation audits every product against the fold of its ledger.
	Reconciliation(ctx context.Context, actor Actor) ([]DriftEntry, error)
}

type dashboardService struct {
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	reports      cache.ReportCache
	now          func() time.Time
}

func NewDashboardService(products repository.ProductRepository, transactions repository.TransactionRepository, reports cache.ReportCache) DashboardService {
	if reports == nil {
		reports = cache.NewNop()
	}
	return &dashboardService{products: products, transactions: transactions, reports: reports, now: time.Now}
}

func (s *dashboardService) LowStock(ctx context.Context) ([]model.Product, error) {
	products, err := cache.Remember(ctx, s.reports, "low-stock", func() ([]model.Product, error) {
		return s.products.FindLowStock(ctx)
	})
	if err != nil {
		return nil, Internal(err)
	}
	return products, nil
}

func (s *dashboardService) CategoryTotals(ctx context.Context) ([]repository.CategoryTotal, error) {
	totals, err := cache.Remember(ctx, s.reports, "category-totals", func() ([]repository.CategoryTotal, error) {
		return s.products.CategoryTotals(ctx)
	})
	if err != nil {
		return nil, Internal(err)
	}
	return totals, nil
}

func (s *dashboardService) TotalValue(ctx context.Context) (decimal.Decimal, error) {
	total, err := cache.Remember(ctx, s.reports, "total-value", func() (decimal.Decimal, error) {
		return s.transactions.TotalValue(ctx)
	})
	if err != nil {
		return decimal.Zero, Internal(err)
	}
	return total, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := cache.Remember(ctx, s.reports, "dashboard-stats", func() (*repository.DashboardStats, error) {
		return s.products.Stats(ctx)
	})
	if err != nil {
		return nil, Internal(err)
	}
	return stats, nil
}

// GetStockMovement returns one bucket per calendar day, oldest first, for the
// last days days including today. Days without movement report zeros.
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = DefaultMovementDays
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}

	now := s.now()
	key := fmt.Sprintf("stock-movement:%s:%d", now.Format(time.DateOnly), days)
	movement, err := cache.Remember(ctx, s.reports, key, func() ([]repository.StockMovementData, error) {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		start := today.AddDate(0, 0, -(days - 1))

		rows, err := s.transactions.FindBetween(ctx, start, now)
		if err != nil {
			return nil, err
		}

		buckets := make([]repository.StockMovementData, days)
		index := make(map[string]int, days)
		for i := range buckets {
			date := start.AddDate(0, 0, i).Format(time.DateOnly)
			buckets[i].Date = date
			index[date] = i
		}
		for _, t := range rows {
			i, ok := index[t.CreatedAt.In(now.Location()).Format(time.DateOnly)]
			if !ok {
				continue
			}
			if t.Type == model.TxIn {
				buckets[i].Inbound += t.Quantity
			} else {
				buckets[i].Outbound += t.Quantity
			}
		}
		return buckets, nil
	})
	if err != nil {
		return nil, Internal(err)
	}
	return movement, nil
}

func (s *dashboardService) Reconciliation(ctx context.Context, actor Actor) ([]DriftEntry, error) {
	if err := authorize(actor, model.PrivReportReconcile); err != nil {
		return nil, err
	}

	products, err := s.products.FindAllQuantities(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	balances, err := s.transactions.LedgerBalances(ctx)
	if err != nil {
		return nil, Internal(err)
	}

	ledger := make(map[uuid.UUID]int64, len(balances))
	for _, b := range balances {
		ledger[b.ProductID] = b.Balance
	}

	drift := []DriftEntry{}
	for _, p := range products {
		folded := ledger[p.ID]
		if int64(p.Quantity) != folded {
			drift = append(drift, DriftEntry{
				ProductID:      p.ID,
				Name:           p.Name,
				StoredQuantity: p.Quantity,
				LedgerQuantity: folded,
				Drift:          int64(p.Quantity) - folded,
			})
		}
	}
	return drift, nil
}
