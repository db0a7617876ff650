package reports

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/types"
	"backoffice/pkg/logger"
)

const (
	dailyBuckets   = 30
	monthlyBuckets = 12
	topLimit       = 10
)

// Service builds dashboards.
type Service struct {
	repo   Repository
	alerts AlertSource
	cache  Cache
	now    func() time.Time
}

// NewService creates a new reports service. A nil cache disables caching.
func NewService(repo Repository, alerts AlertSource, cache Cache) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{repo: repo, alerts: alerts, cache: cache, now: time.Now}
}

// CacheKey is the cache key of the dashboard for day.
func CacheKey(day time.Time) string {
	return "dashboard:" + entity.DayOf(day).Format(DayLayout)
}

// Dashboard returns the dashboard of the current day, from cache when possible.
// Cache failures are logged and never fail the request.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	key := CacheKey(now)

	if d, ok, err := s.cache.GetDashboard(ctx, key); err != nil {
		logger.Warn(ctx, "dashboard cache read failed", "error", err)
	} else if ok {
		return d, nil
	}

	d, err := s.Build(ctx, now)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetDashboard(ctx, key, d); err != nil {
		logger.Warn(ctx, "dashboard cache write failed", "error", err)
	}
	return d, nil
}

// Build computes the dashboard as of now, bypassing the cache.
func (s *Service) Build(ctx context.Context, now time.Time) (*Dashboard, error) {
	today := entity.DayOf(now)
	month := MonthOf(today)
	d := &Dashboard{GeneratedAt: now.UTC()}

	total, count, err := s.repo.SalesOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("sales of the day: %w", err)
	}
	d.Today = Today{SalesTotal: total, SalesCount: count}

	if d.ProductCount, err = s.repo.CountProducts(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	days := Period{From: today.AddDate(0, 0, -(dailyBuckets - 1)), To: today.AddDate(0, 0, 1)}
	daily, err := s.repo.DailySales(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	d.Daily = FillDaily(daily, days.From, dailyBuckets)

	months := Period{From: month.From.AddDate(0, -(monthlyBuckets - 1), 0), To: month.To}
	monthly, err := s.repo.MonthlySales(ctx, months)
	if err != nil {
		return nil, fmt.Errorf("monthly sales: %w", err)
	}
	d.Monthly = FillMonthly(monthly, months.From, monthlyBuckets)

	if d.Alerts, err = s.alerts.Alerts(ctx); err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}

	totals, err := s.repo.Totals(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("month totals: %w", err)
	}
	d.Month = *totals
	d.Performance = NewPerformance(*totals, d.Alerts.ExpiredLoss)

	if d.TopSellers, err = s.repo.TopSellers(ctx, month, topLimit); err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}
	if d.TopProducts, err = s.repo.TopProducts(ctx, month, topLimit); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	if d.TopReturned, err = s.repo.TopReturned(ctx, month, topLimit); err != nil {
		return nil, fmt.Errorf("top returned: %w", err)
	}
	return d, nil
}

// FillDaily returns n consecutive day buckets starting at from, taking totals
// from points and zero elsewhere.
func FillDaily(points []Point, from time.Time, n int) []Point {
	return fill(points, n, func(i int) string {
		return from.AddDate(0, 0, i).Format(DayLayout)
	})
}

// FillMonthly is FillDaily for month buckets.
func FillMonthly(points []Point, from time.Time, n int) []Point {
	return fill(points, n, func(i int) string {
		return from.AddDate(0, i, 0).Format(MonthLayout)
	})
}

func fill(points []Point, n int, bucket func(int) string) []Point {
	byBucket := make(map[string]types.Money, len(points))
	for _, p := range points {
		byBucket[p.Bucket] = p.Total
	}
	out := make([]Point, n)
	for i := range out {
		b := bucket(i)
		total, ok := byBucket[b]
		if !ok {
			total = types.Zero()
		}
		out[i] = Point{Bucket: b, Total: total}
	}
	return out
}
