package returns_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/inventory/inventorytest"
	"backoffice/internal/domain/returns"
	"backoffice/internal/domain/sellers"
	"backoffice/pkg/numerator"
)

type memReturns struct {
	rows map[id.ID]returns.Return
}

func (m *memReturns) Create(_ context.Context, r *returns.Return) error {
	m.rows[r.ID] = *r
	return nil
}
func (m *memReturns) GetByID(_ context.Context, returnID id.ID) (*returns.Return, error) {
	r, ok := m.rows[returnID]
	if !ok {
		return nil, apperror.NewNotFound("return", returnID)
	}
	return &r, nil
}
func (m *memReturns) List(context.Context, returns.Filter) ([]returns.Return, error) { return nil, nil }
func (m *memReturns) UpdateHeader(_ context.Context, r *returns.Return) error {
	m.rows[r.ID] = *r
	return nil
}
func (m *memReturns) Delete(_ context.Context, returnID id.ID) error {
	delete(m.rows, returnID)
	return nil
}
func (m *memReturns) Snapshot() func() {
	saved := make(map[id.ID]returns.Return, len(m.rows))
	for k, v := range m.rows {
		saved[k] = v
	}
	return func() { m.rows = saved }
}

type rates struct{ card *sellers.RateCard }

func (r rates) RateCard(context.Context, id.ID) (*sellers.RateCard, error) { return r.card, nil }

type seq struct{ n int64 }

func (s *seq) Next(_ context.Context, cfg numerator.Config, period time.Time) (string, error) {
	s.n++
	return numerator.Format(cfg, period, s.n), nil
}

func setup() (*inventorytest.Store, *memReturns, *returns.Service) {
	store := inventorytest.NewStore()
	repo := &memReturns{rows: map[id.ID]returns.Return{}}
	txm := inventorytest.NewTxManager(store, repo)
	stock := inventory.NewService(store, store, txm, inventory.DefaultConfig())
	seller := sellers.NewSeller("Ana", "", "", types.MustMoney("10"))
	card := &sellers.RateCard{Seller: *seller, ByBrand: map[string]types.Percent{}}
	return store, repo, returns.NewService(repo, stock, rates{card}, &seq{}, txm)
}

func TestRegister_RestoresAggregateOnly(t *testing.T) {
	store, _, svc := setup()
	p := store.SeedProduct("Cookies", "Acme", 2)
	lot := store.SeedLot(p.ID, inventory.Tracked(2), types.NoExpiry(), time.Now())
	price := types.MustMoney("50")

	ret, err := svc.Register(context.Background(), returns.RegisterInput{
		SellerID: id.New(),
		Reason:   " damaged ",
		Lines: []returns.LineInput{
			{ProductID: p.ID, Quantity: 3, Price: &price},
			{ProductID: p.ID, Quantity: 0},
		},
	})
	require.NoError(t, err)

	require.Len(t, ret.Lines, 1)
	assert.Equal(t, "damaged", ret.Reason)
	assert.Equal(t, "Ana", ret.ClientName)
	assert.True(t, ret.Total.Equal(types.MustMoney("135")), ret.Total.String())
	assert.Equal(t, types.Quantity(5), store.Product(p.ID).Quantity)
	assert.Equal(t, inventory.Tracked(2), store.Remaining(lot), "lots are not replenished")
}

func TestDelete_ReversesRestock(t *testing.T) {
	store, repo, svc := setup()
	p := store.SeedProduct("Cookies", "Acme", 0)
	ctx := context.Background()

	ret, err := svc.Register(ctx, returns.RegisterInput{
		SellerID: id.New(),
		Lines:    []returns.LineInput{{ProductID: p.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, types.Quantity(4), store.Product(p.ID).Quantity)

	require.NoError(t, svc.Delete(ctx, ret.ID))
	assert.Equal(t, types.Quantity(0), store.Product(p.ID).Quantity)
	assert.Empty(t, repo.rows)
}

func TestDelete_FailsWhenStockAlreadyGone(t *testing.T) {
	store, repo, svc := setup()
	p := store.SeedProduct("Cookies", "Acme", 0)
	ctx := context.Background()

	ret, err := svc.Register(ctx, returns.RegisterInput{
		SellerID: id.New(),
		Lines:    []returns.LineInput{{ProductID: p.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	require.NoError(t, store.AdjustProductQuantity(ctx, p.ID, -3))

	err = svc.Delete(ctx, ret.ID)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Len(t, repo.rows, 1)
	assert.Equal(t, types.Quantity(1), store.Product(p.ID).Quantity)
}

func TestUpdateHeader(t *testing.T) {
	store, _, svc := setup()
	p := store.SeedProduct("Cookies", "Acme", 0)
	ctx := context.Background()
	ret, err := svc.Register(ctx, returns.RegisterInput{
		SellerID: id.New(),
		Lines:    []returns.LineInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	reason := "expired"
	day := time.Date(2026, 1, 5, 17, 30, 0, 0, time.UTC)
	got, err := svc.UpdateHeader(ctx, ret.ID, returns.HeaderUpdate{Reason: &reason, Date: &day})
	require.NoError(t, err)
	assert.Equal(t, "expired", got.Reason)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), got.Date)
	assert.True(t, ret.Total.Equal(got.Total))

	_, err = svc.UpdateHeader(ctx, id.New(), returns.HeaderUpdate{})
	assert.True(t, apperror.IsNotFound(err))
}
