package sales_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/inventory/inventorytest"
	"backoffice/internal/domain/sales"
	"backoffice/internal/domain/sellers"
	"backoffice/pkg/numerator"
)

type memSales struct {
	mu    sync.Mutex
	sales map[id.ID]sales.Sale
}

func (m *memSales) Create(_ context.Context, s *sales.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	c.Lines = append([]sales.Line(nil), s.Lines...)
	m.sales[s.ID] = c
	return nil
}

func (m *memSales) GetByID(_ context.Context, saleID id.ID) (*sales.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	for i := range s.Lines {
		s.Lines[i].Allocations = nil
	}
	return &s, nil
}

func (m *memSales) List(context.Context, sales.Filter) ([]sales.Sale, error) { return nil, nil }

func (m *memSales) Delete(_ context.Context, saleID id.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sales, saleID)
	return nil
}

func (m *memSales) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[id.ID]sales.Sale, len(m.sales))
	for k, v := range m.sales {
		saved[k] = v
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.sales = saved
	}
}

type fixedRates struct{ card *sellers.RateCard }

func (f fixedRates) RateCard(_ context.Context, sellerID id.ID) (*sellers.RateCard, error) {
	if sellerID != f.card.Seller.ID {
		return nil, apperror.NewNotFound("seller", sellerID)
	}
	return f.card, nil
}

type counter struct{ n int64 }

func (c *counter) Next(_ context.Context, cfg numerator.Config, period time.Time) (string, error) {
	c.n++
	return numerator.Format(cfg, period, c.n), nil
}

type fixture struct {
	store  *inventorytest.Store
	repo   *memSales
	txm    *inventorytest.TxManager
	svc    *sales.Service
	seller *sellers.Seller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := inventorytest.NewStore()
	repo := &memSales{sales: map[id.ID]sales.Sale{}}
	txm := inventorytest.NewTxManager(store, repo)
	stock := inventory.NewService(store, store, txm, inventory.DefaultConfig())

	seller := sellers.NewSeller("Ana", "555", "", types.MustMoney("10"))
	card := &sellers.RateCard{Seller: *seller, ByBrand: map[string]types.Percent{"ACME": types.MustMoney("20")}}

	return &fixture{
		store:  store,
		repo:   repo,
		txm:    txm,
		svc:    sales.NewService(repo, stock, fixedRates{card}, &counter{}, txm),
		seller: seller,
	}
}

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func TestRegister_PricesAndAllocates(t *testing.T) {
	f := newFixture(t)
	acme := f.store.SeedProduct("Cookies", "Acme", 10)
	other := f.store.SeedProduct("Soda", "Fizz", 5)
	cookieLot := f.store.SeedLot(acme.ID, inventory.Tracked(10), types.MustExpiry("2030-01-01"), time.Now())
	f.store.SeedLot(other.ID, inventory.Tracked(5), types.NoExpiry(), time.Now())

	sale, err := f.svc.Register(context.Background(), sales.RegisterInput{
		SellerID: f.seller.ID,
		Date:     time.Date(2026, 2, 3, 15, 0, 0, 0, time.UTC),
		Lines: []sales.LineInput{
			{ProductID: acme.ID, Quantity: 4, Price: money("100")},
			{ProductID: other.ID, Quantity: 0, Price: money("1")},
			{ProductID: other.ID, Quantity: 2, Price: money("50"), Percent: money("0")},
		},
	})
	require.NoError(t, err)

	require.Len(t, sale.Lines, 2, "zero-quantity lines are dropped")
	assert.Equal(t, "V-2026-00001", sale.Number)
	assert.Equal(t, "Ana", sale.ClientName)
	assert.True(t, sale.Gross.Equal(types.MustMoney("500")), sale.Gross.String())
	assert.True(t, sale.Commission.Equal(types.MustMoney("80")), sale.Commission.String())
	assert.True(t, sale.Total.Equal(types.MustMoney("420")), sale.Total.String())
	assert.True(t, sale.Lines[0].Percent.Equal(types.MustMoney("20")), "brand rule")
	assert.True(t, sale.Lines[0].UnitNet().Equal(types.MustMoney("80")))
	assert.True(t, sale.Lines[1].Percent.IsZero(), "manual percent")

	require.Len(t, sale.Lines[0].Allocations, 1)
	assert.Equal(t, cookieLot, sale.Lines[0].Allocations[0].LotID)
	assert.Equal(t, types.Quantity(6), f.store.Product(acme.ID).Quantity)
	assert.Equal(t, types.Quantity(3), f.store.Product(other.ID).Quantity)
	assert.Equal(t, 1, f.txm.Commits)
}

func TestRegister_DefaultsPriceToProduct(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("Chips", "Crunch", 1)
	f.store.SeedLot(p.ID, inventory.Tracked(1), types.NoExpiry(), time.Now())

	sale, err := f.svc.Register(context.Background(), sales.RegisterInput{
		SellerID: f.seller.ID,
		Lines:    []sales.LineInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, sale.Lines[0].Price.Equal(p.SalePrice))
	assert.True(t, sale.Lines[0].Percent.Equal(types.MustMoney("10")), "seller base rate")
}

func TestRegister_AllOrNothingAcrossLines(t *testing.T) {
	f := newFixture(t)
	first := f.store.SeedProduct("Cookies", "Acme", 5)
	second := f.store.SeedProduct("Soda", "Fizz", 1)
	lot := f.store.SeedLot(first.ID, inventory.Tracked(5), types.MustExpiry("2030-01-01"), time.Now())
	f.store.SeedLot(second.ID, inventory.Tracked(1), types.NoExpiry(), time.Now())

	_, err := f.svc.Register(context.Background(), sales.RegisterInput{
		SellerID: f.seller.ID,
		Lines: []sales.LineInput{
			{ProductID: first.ID, Quantity: 3},
			{ProductID: second.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Contains(t, err.Error(), "line 2")

	assert.Equal(t, 1, f.txm.Rollbacks)
	assert.Equal(t, types.Quantity(5), f.store.Product(first.ID).Quantity)
	assert.Equal(t, inventory.Tracked(5), f.store.Remaining(lot))
	assert.Empty(t, f.store.AllDepletions())
	assert.Empty(t, f.repo.sales)
}

func TestRegister_LedgerInconsistencyRollsBack(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("Cookies", "Acme", 9)
	f.store.SeedLot(p.ID, inventory.Tracked(2), types.NoExpiry(), time.Now())

	_, err := f.svc.Register(context.Background(), sales.RegisterInput{
		SellerID: f.seller.ID,
		Lines:    []sales.LineInput{{ProductID: p.ID, Quantity: 5}},
	})
	assert.True(t, apperror.IsLedgerInconsistency(err))
	assert.Equal(t, types.Quantity(9), f.store.Product(p.ID).Quantity)
	assert.Empty(t, f.repo.sales)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("Cookies", "Acme", 9)

	tests := []struct {
		name string
		in   sales.RegisterInput
		code string
	}{
		{"no seller", sales.RegisterInput{Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1}}}, apperror.CodeValidation},
		{"no lines", sales.RegisterInput{SellerID: f.seller.ID}, apperror.CodeValidation},
		{"only empty lines", sales.RegisterInput{SellerID: f.seller.ID, Lines: []sales.LineInput{{ProductID: p.ID, Quantity: -2}}}, apperror.CodeValidation},
		{"negative price", sales.RegisterInput{SellerID: f.seller.ID, Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1, Price: money("-1")}}}, apperror.CodeValidation},
		{"percent over 100", sales.RegisterInput{SellerID: f.seller.ID, Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1, Percent: money("120")}}}, apperror.CodeValidation},
		{"unknown seller", sales.RegisterInput{SellerID: id.New(), Lines: []sales.LineInput{{ProductID: p.ID, Quantity: 1}}}, apperror.CodeNotFound},
		{"unknown product", sales.RegisterInput{SellerID: f.seller.ID, Lines: []sales.LineInput{{ProductID: id.New(), Quantity: 1}}}, apperror.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.in)
			assert.True(t, apperror.HasCode(err, tt.code), fmt.Sprint(err))
		})
	}
	assert.Equal(t, types.Quantity(9), f.store.Product(p.ID).Quantity)
}

func TestDelete_RestocksAggregateOnly(t *testing.T) {
	f := newFixture(t)
	p := f.store.SeedProduct("Cookies", "Acme", 4)
	lot := f.store.SeedLot(p.ID, inventory.Tracked(4), types.NoExpiry(), time.Now())
	ctx := context.Background()

	sale, err := f.svc.Register(ctx, sales.RegisterInput{
		SellerID: f.seller.ID,
		Lines:    []sales.LineInput{{ProductID: p.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines[0].Allocations, 1)

	require.NoError(t, f.svc.Delete(ctx, sale.ID))
	assert.Equal(t, types.Quantity(4), f.store.Product(p.ID).Quantity)
	assert.Equal(t, inventory.Tracked(1), f.store.Remaining(lot), "lot history is not replayed")
	for _, d := range f.store.AllDepletions() {
		assert.NotNil(t, d.ReversedAt)
	}

	_, err = f.svc.Get(ctx, sale.ID)
	assert.True(t, apperror.IsNotFound(err))
}
