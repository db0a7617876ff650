package app

import (
	"context"
	"sync"
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/pkg/logger"
)

// Stock is the part of inventory.Service the maintenance jobs use.
type Stock interface {
	Audit(ctx context.Context, productID *id.ID) ([]inventory.AuditRow, error)
	Expiring(ctx context.Context, days int) ([]inventory.ExpiringLot, error)
	Expired(ctx context.Context) ([]inventory.ExpiringLot, types.Money, error)
}

// KeyJanitor removes expired idempotency keys.
type KeyJanitor interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Report summarizes one maintenance pass.
type Report struct {
	Products    int
	Drifting    int
	Expiring    int
	Expired     int
	ExpiredLoss types.Money
	KeysRemoved int64
}

// Maintenance runs the periodic ledger audit, expiry warnings and key cleanup.
type Maintenance struct {
	stock Stock
	keys  KeyJanitor
	log   *logger.Logger
	// mu keeps passes from overlapping.
	mu sync.Mutex
}

// NewMaintenance creates the job runner. keys may be nil.
func NewMaintenance(stock Stock, keys KeyJanitor, log *logger.Logger) *Maintenance {
	return &Maintenance{stock: stock, keys: keys, log: log.WithComponent("maintenance")}
}

// RunOnce performs one pass. A failing job is logged and the others still run.
func (m *Maintenance) RunOnce(ctx context.Context) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	rep := Report{ExpiredLoss: types.Zero()}

	if rows, err := m.stock.Audit(ctx, nil); err != nil {
		m.log.Errorw("ledger audit failed", "error", err)
	} else {
		rep.Products = len(rows)
		for _, r := range rows {
			if !r.Consistent() {
				rep.Drifting++
			}
		}
	}

	if lots, err := m.stock.Expiring(ctx, 0); err != nil {
		m.log.Errorw("expiring lots query failed", "error", err)
	} else {
		rep.Expiring = len(lots)
		for _, l := range lots {
			m.log.Infow("lot expiring soon",
				"product", l.ProductName,
				"lot_id", l.LotID,
				"expiry", l.Expiry.String(),
				"remaining", l.Remaining,
			)
		}
	}

	if lots, loss, err := m.stock.Expired(ctx); err != nil {
		m.log.Errorw("expired lots query failed", "error", err)
	} else {
		rep.Expired, rep.ExpiredLoss = len(lots), loss
	}

	if m.keys != nil {
		n, err := m.keys.CleanupExpired(ctx)
		if err != nil {
			m.log.Errorw("idempotency cleanup failed", "error", err)
		}
		rep.KeysRemoved = n
	}

	m.log.Infow("maintenance pass done",
		"products", rep.Products,
		"drifting", rep.Drifting,
		"expiring", rep.Expiring,
		"expired", rep.Expired,
		"expired_loss", rep.ExpiredLoss.StringFixed(2),
		"keys_removed", rep.KeysRemoved,
	)
	return rep
}

// Run calls RunOnce immediately and then every interval until ctx is done.
func (m *Maintenance) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}
