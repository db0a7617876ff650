package inventory

import (
	"context"
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// ProductRepository stores the product catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	Brands(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, productID id.ID) error

	// References names the first kind of record still pointing at the
	// product ("sale lines", "return lines", "stock lots"), or "" when none do.
	References(ctx context.Context, productID id.ID) (string, error)
}

// LotRepository is the lot ledger: the allocator's Ledger plus receipts,
// read models and maintenance.
type LotRepository interface {
	Ledger

	CreateLot(ctx context.Context, lot *Lot) error
	ListLots(ctx context.Context, productID id.ID) ([]Lot, error)

	// Depletions returns the expense movements recorded by a document.
	Depletions(ctx context.Context, recorderID id.ID) ([]Depletion, error)
	MarkDepletionsReversed(ctx context.Context, recorderID id.ID, at time.Time) (int64, error)

	// ExpiringBetween lists lots with stock left expiring in (from, to].
	ExpiringBetween(ctx context.Context, from, to time.Time) ([]ExpiringLot, error)
	// ExpiredOn lists lots with stock left expiring on or before day.
	ExpiredOn(ctx context.Context, day time.Time) ([]ExpiringLot, error)

	Audit(ctx context.Context, productID *id.ID) ([]AuditRow, error)

	// BackfillUntracked sets remaining = quantity on untracked or negative lots.
	BackfillUntracked(ctx context.Context) (int64, error)
}

// StockFilter selects products for stock alerts.
type StockFilter struct {
	NearMargin types.Quantity
}
