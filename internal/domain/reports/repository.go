package reports

import (
	"context"
	"time"

	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
)

// Repository defines dashboard data access.
type Repository interface {
	// SalesOn returns the sum and count of sales dated day.
	SalesOn(ctx context.Context, day time.Time) (types.Money, int64, error)
	CountProducts(ctx context.Context) (int64, error)

	// DailySales and MonthlySales return only non-empty buckets.
	DailySales(ctx context.Context, p Period) ([]Point, error)
	MonthlySales(ctx context.Context, p Period) ([]Point, error)

	Totals(ctx context.Context, p Period) (*Totals, error)

	TopSellers(ctx context.Context, p Period, limit int) ([]Ranked, error)
	TopProducts(ctx context.Context, p Period, limit int) ([]Ranked, error)
	TopReturned(ctx context.Context, p Period, limit int) ([]Ranked, error)
}

// AlertSource provides stock and expiry alerts.
type AlertSource interface {
	Alerts(ctx context.Context) (*inventory.Alerts, error)
}

// Cache stores built dashboards. Implementations decide expiry.
type Cache interface {
	GetDashboard(ctx context.Context, key string) (*Dashboard, bool, error)
	SetDashboard(ctx context.Context, key string, d *Dashboard) error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) GetDashboard(context.Context, string) (*Dashboard, bool, error) {
	return nil, false, nil
}

func (NopCache) SetDashboard(context.Context, string, *Dashboard) error { return nil }
