package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/inventory/inventorytest"
)

var t0 = time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC)

func request(productID id.ID, qty types.Quantity) inventory.Request {
	return inventory.Request{
		ProductID:    productID,
		Quantity:     qty,
		RecorderID:   id.New(),
		RecorderType: entity.RecorderSale,
		RecorderLine: 1,
		Period:       t0,
	}
}

func taken(allocs []inventory.Allocation) map[id.ID]types.Quantity {
	out := make(map[id.ID]types.Quantity, len(allocs))
	for _, a := range allocs {
		out[a.LotID] += a.Quantity
	}
	return out
}

func TestAllocate_OrdersByExpiry(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Yogurt", "ACME", 15)
	a := store.SeedLot(p.ID, inventory.Tracked(5), types.MustExpiry("2024-03-01"), t0)
	b := store.SeedLot(p.ID, inventory.Tracked(5), types.MustExpiry("2024-01-01"), t0.Add(time.Hour))
	c := store.SeedLot(p.ID, inventory.Tracked(5), types.NoExpiry(), t0.Add(2*time.Hour))

	allocs, err := inventory.NewAllocator(store, 0).Allocate(context.Background(), request(p.ID, 7))
	require.NoError(t, err)

	require.Len(t, allocs, 2)
	assert.Equal(t, b, allocs[0].LotID)
	assert.Equal(t, types.Quantity(5), allocs[0].Quantity)
	assert.Equal(t, "2024-01-01", allocs[0].Expiry.String())
	assert.Equal(t, a, allocs[1].LotID)
	assert.Equal(t, types.Quantity(2), allocs[1].Quantity)

	assert.Equal(t, inventory.Tracked(0), store.Remaining(b))
	assert.Equal(t, inventory.Tracked(3), store.Remaining(a))
	assert.Equal(t, inventory.Tracked(5), store.Remaining(c), "undated lot untouched")
	assert.Equal(t, types.Quantity(8), store.Product(p.ID).Quantity)
}

func TestAllocate_UndatedLast(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Crackers", "", 6)
	x := store.SeedLot(p.ID, inventory.Tracked(3), types.NoExpiry(), t0)
	y := store.SeedLot(p.ID, inventory.Tracked(3), types.MustExpiry("2024-06-01"), t0.Add(time.Hour))

	allocs, err := inventory.NewAllocator(store, 0).Allocate(context.Background(), request(p.ID, 4))
	require.NoError(t, err)

	require.Len(t, allocs, 2)
	assert.Equal(t, y, allocs[0].LotID)
	assert.Equal(t, types.Quantity(3), allocs[0].Quantity)
	assert.Equal(t, x, allocs[1].LotID)
	assert.Equal(t, types.Quantity(1), allocs[1].Quantity)
	assert.False(t, allocs[1].Expiry.IsSet())
}

func TestAllocate_TieBreakByCreationOrder(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Milk", "", 8)
	exp := types.MustExpiry("2024-02-01")
	newer := store.SeedLot(p.ID, inventory.Tracked(4), exp, t0.Add(time.Minute))
	older := store.SeedLot(p.ID, inventory.Tracked(4), exp, t0)

	allocs, err := inventory.NewAllocator(store, 0).Allocate(context.Background(), request(p.ID, 5))
	require.NoError(t, err)

	require.Len(t, allocs, 2)
	assert.Equal(t, older, allocs[0].LotID)
	assert.Equal(t, types.Quantity(4), allocs[0].Quantity)
	assert.Equal(t, newer, allocs[1].LotID)
	assert.Equal(t, types.Quantity(1), allocs[1].Quantity)
}

func TestAllocate_Conservation(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Juice", "", 30)
	for i := 0; i < 6; i++ {
		exp := types.ExpiresOn(t0.AddDate(0, 0, 10-i))
		store.SeedLot(p.ID, inventory.Tracked(5), exp, t0.Add(time.Duration(i)*time.Minute))
	}

	for _, qty := range []types.Quantity{1, 4, 5, 9, 11} {
		before := store.Product(p.ID).Quantity
		req := request(p.ID, qty)
		allocs, err := inventory.NewAllocator(store, 2).Allocate(context.Background(), req)
		require.NoError(t, err, "qty %d", qty)

		var sum types.Quantity
		for _, a := range allocs {
			sum += a.Quantity
			assert.Positive(t, int64(a.Quantity))
		}
		assert.Equal(t, qty, sum)
		assert.Equal(t, before-qty, store.Product(p.ID).Quantity)

		deps, err := store.Depletions(context.Background(), req.RecorderID)
		require.NoError(t, err)
		assert.Len(t, deps, len(allocs), "one depletion per lot touched")
		for i, d := range deps {
			assert.Equal(t, allocs[i].LotID, d.LotID)
			assert.Equal(t, entity.RecordTypeExpense, d.RecordType)
		}
	}
	assert.Equal(t, types.Quantity(0), store.Product(p.ID).Quantity)
}

func TestAllocate_InsufficientStockIsAllOrNothing(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Cheese", "", 6)
	lot := store.SeedLot(p.ID, inventory.Tracked(6), types.MustExpiry("2024-01-10"), t0)
	alloc := inventory.NewAllocator(store, 0)

	for i := 0; i < 2; i++ {
		allocs, err := alloc.Allocate(context.Background(), request(p.ID, 7))
		require.Error(t, err)
		assert.Nil(t, allocs)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
		assert.Equal(t, int64(7), appErr.Details["requested"])
		assert.Equal(t, int64(6), appErr.Details["available"])

		assert.Equal(t, inventory.Tracked(6), store.Remaining(lot))
		assert.Equal(t, types.Quantity(6), store.Product(p.ID).Quantity)
		assert.Empty(t, store.AllDepletions())
	}
	assert.Zero(t, store.Calls["CandidateLots"], "fails before reading lots")
	assert.Zero(t, store.Calls["DecrementLots"])
}

func TestAllocate_ZeroIsNoop(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Water", "", 3)

	allocs, err := inventory.NewAllocator(store, 0).Allocate(context.Background(), request(p.ID, 0))
	require.NoError(t, err)
	assert.NotNil(t, allocs)
	assert.Empty(t, allocs)
	assert.Zero(t, store.Calls["LockProduct"])
	assert.Equal(t, types.Quantity(3), store.Product(p.ID).Quantity)
}

func TestAllocate_NegativeIsInvalid(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Water", "", 3)

	_, err := inventory.NewAllocator(store, 0).Allocate(context.Background(), request(p.ID, -1))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))
	assert.Zero(t, store.Calls["LockProduct"], "rejected before any I/O")
}

func TestAllocate_LedgerInconsistency(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Bread", "", 10)
	lot := store.SeedLot(p.ID, inventory.Tracked(4), types.MustExpiry("2024-01-01"), t0)
	store.SeedLot(p.ID, inventory.Untracked(), types.NoExpiry(), t0)

	_, err := inventory.NewAllocator(store, 0).Allocate(context.Background(), request(p.ID, 6))
	require.Error(t, err)
	assert.True(t, apperror.IsLedgerInconsistency(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(4), appErr.Details["covered"])
	assert.Equal(t, inventory.Tracked(4), store.Remaining(lot), "nothing written before the shortfall is known")
	assert.Equal(t, types.Quantity(10), store.Product(p.ID).Quantity)
	assert.Empty(t, store.AllDepletions())
}

func TestAllocate_SkipsUntrackedAndEmpty(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Rice", "", 5)
	store.SeedLot(p.ID, inventory.Untracked(), types.MustExpiry("2023-01-01"), t0)
	store.SeedLot(p.ID, inventory.Tracked(0), types.MustExpiry("2023-02-01"), t0)
	live := store.SeedLot(p.ID, inventory.Tracked(5), types.MustExpiry("2024-01-01"), t0)

	allocs, err := inventory.NewAllocator(store, 0).Allocate(context.Background(), request(p.ID, 2))
	require.NoError(t, err)
	assert.Equal(t, map[id.ID]types.Quantity{live: 2}, taken(allocs))
}

func TestAllocate_PagesUntilCovered(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Tea", "", 10)
	for i := 0; i < 10; i++ {
		store.SeedLot(p.ID, inventory.Tracked(1), types.ExpiresOn(t0.AddDate(0, 0, i)), t0)
	}

	allocs, err := inventory.NewAllocator(store, 3).Allocate(context.Background(), request(p.ID, 7))
	require.NoError(t, err)
	assert.Len(t, allocs, 7)
	assert.Equal(t, 3, store.Calls["CandidateLots"], "pages of 3 until 7 units are covered")
}

func TestAllocate_PropagatesLedgerErrors(t *testing.T) {
	store := inventorytest.NewStore()
	p := store.SeedProduct("Oil", "", 2)
	store.SeedLot(p.ID, inventory.Tracked(2), types.NoExpiry(), t0)
	boom := errors.New("connection lost")
	store.FailOn["InsertDepletions"] = boom

	_, err := inventory.NewAllocator(store, 0).Allocate(context.Background(), request(p.ID, 1))
	assert.ErrorIs(t, err, boom)
}

func TestPlanFEFO_DoesNotMutateInput(t *testing.T) {
	lots := []inventory.Lot{
		{Remaining: inventory.Tracked(2), Expiry: types.NoExpiry()},
		{Remaining: inventory.Tracked(2), Expiry: types.MustExpiry("2024-01-01")},
	}
	lots[0].ID, lots[1].ID = id.New(), id.New()

	plan, short := inventory.PlanFEFO(lots, 5)
	assert.Equal(t, types.Quantity(1), short)
	require.Len(t, plan, 2)
	assert.Equal(t, lots[1].ID, plan[0].LotID)
	assert.False(t, lots[0].Expiry.IsSet(), "input order kept")
	assert.Equal(t, inventory.Tracked(2), lots[0].Remaining)
}
