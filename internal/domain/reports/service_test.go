package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
)

type fakeRepo struct {
	totals  Totals
	daily   []Point
	monthly []Point
	periods []Period
	calls   int
	err     error
}

func (f *fakeRepo) SalesOn(context.Context, time.Time) (types.Money, int64, error) {
	f.calls++
	return types.MustMoney("120"), 3, f.err
}
func (f *fakeRepo) CountProducts(context.Context) (int64, error) { return 42, nil }
func (f *fakeRepo) DailySales(_ context.Context, p Period) ([]Point, error) {
	f.periods = append(f.periods, p)
	return f.daily, nil
}
func (f *fakeRepo) MonthlySales(_ context.Context, p Period) ([]Point, error) {
	f.periods = append(f.periods, p)
	return f.monthly, nil
}
func (f *fakeRepo) Totals(_ context.Context, p Period) (*Totals, error) {
	f.periods = append(f.periods, p)
	t := f.totals
	return &t, nil
}
func (f *fakeRepo) TopSellers(context.Context, Period, int) ([]Ranked, error) {
	return []Ranked{{Name: "Ana", Total: types.MustMoney("900")}}, nil
}
func (f *fakeRepo) TopProducts(context.Context, Period, int) ([]Ranked, error) { return nil, nil }
func (f *fakeRepo) TopReturned(context.Context, Period, int) ([]Ranked, error) { return nil, nil }

type fakeAlerts struct{ loss types.Money }

func (f fakeAlerts) Alerts(context.Context) (*inventory.Alerts, error) {
	return &inventory.Alerts{ExpiredLoss: f.loss}, nil
}

type memCache struct {
	items  map[string]*Dashboard
	getErr error
}

func (m *memCache) GetDashboard(_ context.Context, key string) (*Dashboard, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	d, ok := m.items[key]
	return d, ok, nil
}

func (m *memCache) SetDashboard(_ context.Context, key string, d *Dashboard) error {
	m.items[key] = d
	return nil
}

var fixedNow = time.Date(2026, 3, 15, 17, 30, 0, 0, time.UTC)

func newTestService(repo *fakeRepo, cache Cache) *Service {
	s := NewService(repo, fakeAlerts{loss: types.MustMoney("50")}, cache)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestNewPerformance(t *testing.T) {
	p := NewPerformance(Totals{
		Sales:    types.MustMoney("1000"),
		COGS:     types.MustMoney("600"),
		Expenses: types.MustMoney("100"),
		Bonuses:  types.MustMoney("20"),
		Returns:  types.MustMoney("30"),
	}, types.MustMoney("50"))

	assert.True(t, p.GrossMargin.Equal(types.MustMoney("400")))
	assert.True(t, p.Total.Equal(types.MustMoney("200")), p.Total.String())
}

func TestFillDaily(t *testing.T) {
	from := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	got := FillDaily([]Point{
		{Bucket: "2026-03-01", Total: types.MustMoney("10")},
		{Bucket: "2025-01-01", Total: types.MustMoney("99")},
	}, from, 4)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"},
		[]string{got[0].Bucket, got[1].Bucket, got[2].Bucket, got[3].Bucket})
	assert.True(t, got[0].Total.IsZero())
	assert.True(t, got[2].Total.Equal(types.MustMoney("10")))
}

func TestFillMonthly_CrossesYear(t *testing.T) {
	got := FillMonthly([]Point{{Bucket: "2026-01", Total: types.MustMoney("5")}},
		time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), 3)

	require.Len(t, got, 3)
	assert.Equal(t, "2025-11", got[0].Bucket)
	assert.Equal(t, "2026-01", got[2].Bucket)
	assert.True(t, got[2].Total.Equal(types.MustMoney("5")))
}

func TestBuild(t *testing.T) {
	repo := &fakeRepo{totals: Totals{Sales: types.MustMoney("1000"), COGS: types.MustMoney("700")}}
	s := newTestService(repo, nil)

	d, err := s.Build(context.Background(), fixedNow)
	require.NoError(t, err)

	assert.EqualValues(t, 3, d.Today.SalesCount)
	assert.EqualValues(t, 42, d.ProductCount)
	assert.Len(t, d.Daily, 30)
	assert.Equal(t, "2026-03-15", d.Daily[29].Bucket)
	assert.Len(t, d.Monthly, 12)
	assert.Equal(t, "2025-04", d.Monthly[0].Bucket)
	assert.Equal(t, "2026-03", d.Monthly[11].Bucket)
	assert.True(t, d.Performance.Total.Equal(types.MustMoney("250")), d.Performance.Total.String())
	assert.Len(t, d.TopSellers, 1)

	month := repo.periods[2]
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), month.From)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), month.To)
}

func TestDashboard_UsesCache(t *testing.T) {
	repo := &fakeRepo{}
	cache := &memCache{items: map[string]*Dashboard{}}
	s := newTestService(repo, cache)

	first, err := s.Dashboard(context.Background())
	require.NoError(t, err)
	second, err := s.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.calls)
	assert.Contains(t, cache.items, "dashboard:2026-03-15")
}

func TestDashboard_CacheFailureFallsBackToBuild(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestService(repo, &memCache{items: map[string]*Dashboard{}, getErr: errors.New("redis down")})

	d, err := s.Dashboard(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestDashboard_RepositoryError(t *testing.T) {
	s := newTestService(&fakeRepo{err: errors.New("boom")}, nil)

	_, err := s.Dashboard(context.Background())
	assert.ErrorContains(t, err, "sales of the day")
}
