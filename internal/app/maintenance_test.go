package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"backoffice/internal/config"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/pkg/logger"
)

type fakeStock struct {
	audit    []inventory.AuditRow
	auditErr error
	expiring []inventory.ExpiringLot
	expired  []inventory.ExpiringLot
}

func (f *fakeStock) Audit(context.Context, *id.ID) ([]inventory.AuditRow, error) {
	return f.audit, f.auditErr
}

func (f *fakeStock) Expiring(context.Context, int) ([]inventory.ExpiringLot, error) {
	return f.expiring, nil
}

func (f *fakeStock) Expired(context.Context) ([]inventory.ExpiringLot, types.Money, error) {
	loss := types.Zero()
	for _, l := range f.expired {
		loss = loss.Add(l.Loss())
	}
	return f.expired, loss, nil
}

type fakeJanitor struct{ removed int64 }

func (f fakeJanitor) CleanupExpired(context.Context) (int64, error) { return f.removed, nil }

func TestMaintenance_RunOnce(t *testing.T) {
	stock := &fakeStock{
		audit: []inventory.AuditRow{
			{ProductID: id.New(), CachedQuantity: 10, LotQuantity: 10},
			{ProductID: id.New(), CachedQuantity: 12, LotQuantity: 9},
		},
		expiring: []inventory.ExpiringLot{{LotID: id.New(), Remaining: 4}},
		expired: []inventory.ExpiringLot{
			{LotID: id.New(), Remaining: 3, PurchasePrice: types.MustMoney("2.50")},
		},
	}
	m := NewMaintenance(stock, fakeJanitor{removed: 7}, logger.NewNop())

	rep := m.RunOnce(context.Background())

	assert.Equal(t, 2, rep.Products)
	assert.Equal(t, 1, rep.Drifting)
	assert.Equal(t, 1, rep.Expiring)
	assert.Equal(t, 1, rep.Expired)
	assert.True(t, rep.ExpiredLoss.Equal(types.MustMoney("7.50")))
	assert.Equal(t, int64(7), rep.KeysRemoved)
}

func TestMaintenance_FailingJobDoesNotStopOthers(t *testing.T) {
	stock := &fakeStock{auditErr: errors.New("db down"), expiring: []inventory.ExpiringLot{{}, {}}}
	m := NewMaintenance(stock, nil, logger.NewNop())

	rep := m.RunOnce(context.Background())

	assert.Zero(t, rep.Products)
	assert.Equal(t, 2, rep.Expiring)
	assert.Zero(t, rep.KeysRemoved)
}

func TestInventoryConfig(t *testing.T) {
	ic := InventoryConfig(&config.Config{AllocatorPageSize: 25, ExpiryWarningDays: 0, NearStockMargin: 3})

	assert.Equal(t, 25, ic.AllocatorPageSize)
	assert.Equal(t, inventory.DefaultConfig().ExpiryWarningDays, ic.ExpiryWarningDays)
	assert.Equal(t, types.Quantity(3), ic.NearMargin)
}
