package inventory

import (
	"time"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// Lot is a receipt movement: a batch of inbound stock with its own
// remaining quantity and expiry. Lots are never deleted.
type Lot struct {
	entity.MovementBase

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Remaining Remaining      `db:"remaining" json:"remaining"`
	Expiry    types.Expiry   `db:"expiry" json:"expiry"`
	Code      string         `db:"lot_code" json:"code,omitempty"`

	// Seq is the insertion sequence, used as the creation-order tie-break.
	Seq int64 `db:"seq" json:"seq"`
}

// NewLot creates a tracked lot whose remaining quantity equals qty.
func NewLot(productID id.ID, qty types.Quantity, expiry types.Expiry, code string, period time.Time) *Lot {
	base := entity.NewMovementBase(id.New(), entity.RecorderReceipt, 0, period, entity.RecordTypeReceipt)
	return &Lot{
		MovementBase: base,
		ProductID:    productID,
		Quantity:     qty,
		Remaining:    Tracked(qty),
		Expiry:       expiry,
		Code:         code,
	}
}

// Depletion is an expense movement taking stock out of one lot.
type Depletion struct {
	entity.MovementBase

	ProductID id.ID          `db:"product_id" json:"productId"`
	LotID     id.ID          `db:"lot_id" json:"lotId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Expiry    types.Expiry   `db:"expiry" json:"expiry"`

	// ReversedAt is set when the recorder document was deleted.
	ReversedAt *time.Time `db:"reversed_at" json:"reversedAt,omitempty"`
}

// Allocation is one (lot, quantity, expiry) decision returned by the allocator.
type Allocation struct {
	LotID    id.ID          `json:"lotId"`
	Quantity types.Quantity `json:"quantity"`
	Expiry   types.Expiry   `json:"expiry"`
}

// LotDecrement lowers a lot's remaining quantity.
type LotDecrement struct {
	LotID    id.ID
	Quantity types.Quantity
}

// ExpiringLot is a lot with stock left, joined with its product for alerts.
type ExpiringLot struct {
	LotID         id.ID          `db:"lot_id" json:"lotId"`
	ProductID     id.ID          `db:"product_id" json:"productId"`
	ProductName   string         `db:"product_name" json:"productName"`
	Brand         string         `db:"brand" json:"brand"`
	Code          string         `db:"lot_code" json:"code,omitempty"`
	Remaining     types.Quantity `db:"remaining" json:"remaining"`
	Expiry        types.Expiry   `db:"expiry" json:"expiry"`
	PurchasePrice types.Money    `db:"purchase_price" json:"purchasePrice"`
}

// Loss is the purchase value of the lot's remaining stock.
func (l ExpiringLot) Loss() types.Money {
	return types.LineTotal(l.Remaining, l.PurchasePrice)
}

// AuditRow compares a product's cached total with the sum of its lots.
type AuditRow struct {
	ProductID      id.ID          `db:"product_id" json:"productId"`
	ProductName    string         `db:"product_name" json:"productName"`
	CachedQuantity types.Quantity `db:"cached_quantity" json:"cachedQuantity"`
	LotQuantity    types.Quantity `db:"lot_quantity" json:"lotQuantity"`
	UntrackedLots  int            `db:"untracked_lots" json:"untrackedLots"`
}

// Drift is cached minus the lot sum. Zero means consistent.
func (a AuditRow) Drift() types.Quantity {
	return a.CachedQuantity - a.LotQuantity
}

func (a AuditRow) Consistent() bool { return a.Drift() == 0 }
