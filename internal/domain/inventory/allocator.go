package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/pkg/logger"
)

// DefaultPageSize bounds how many candidate lots are read per query.
const DefaultPageSize = 200

// Ledger is the storage the allocator reads and mutates. Every call runs in
// the transaction carried by ctx; the allocator never begins or commits one.
type Ledger interface {
	// LockProduct reads the product row and locks it until the transaction ends.
	LockProduct(ctx context.Context, productID id.ID) (*Product, error)

	// CandidateLots returns lots whose remaining quantity is null or positive,
	// in FEFO order, locked for update.
	CandidateLots(ctx context.Context, productID id.ID, offset, limit int) ([]Lot, error)

	DecrementLots(ctx context.Context, decrements []LotDecrement) error
	InsertDepletions(ctx context.Context, depletions []Depletion) error

	// AdjustProductQuantity adds delta to the cached total.
	AdjustProductQuantity(ctx context.Context, productID id.ID, delta types.Quantity) error
}

// Request asks for quantity units of a product on behalf of a document line.
type Request struct {
	ProductID    id.ID
	Quantity     types.Quantity
	RecorderID   id.ID
	RecorderType entity.RecorderType
	RecorderLine int
	Period       time.Time
}

// Allocator depletes lots first-expired-first-out.
type Allocator struct {
	ledger   Ledger
	pageSize int
}

// NewAllocator creates an allocator. pageSize <= 0 selects DefaultPageSize.
func NewAllocator(ledger Ledger, pageSize int) *Allocator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Allocator{ledger: ledger, pageSize: pageSize}
}

// Allocate takes req.Quantity units from the product's lots and returns one
// Allocation per lot touched, in depletion order.
//
// A zero quantity is a no-op. Nothing is written unless the whole quantity
// can be covered; on LedgerInconsistency the caller must roll back.
func (a *Allocator) Allocate(ctx context.Context, req Request) ([]Allocation, error) {
	if req.Quantity.IsNegative() {
		return nil, apperror.NewInvalidQuantity(req.ProductID.String(), req.Quantity.Int64())
	}
	if req.Quantity.IsZero() {
		return []Allocation{}, nil
	}

	product, err := a.ledger.LockProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}
	if product.Quantity < req.Quantity {
		return nil, apperror.NewInsufficientStock(
			req.ProductID.String(),
			req.Quantity.Int64(),
			product.Quantity.Int64(),
		).WithDetail("product", product.Name)
	}

	candidates, err := a.collect(ctx, req.ProductID, req.Quantity)
	if err != nil {
		return nil, err
	}

	plan, shortfall := PlanFEFO(candidates, req.Quantity)
	if shortfall > 0 {
		covered := req.Quantity - shortfall
		logger.Error(ctx, "stock ledger inconsistency",
			"product_id", req.ProductID,
			"requested", req.Quantity,
			"cached_total", product.Quantity,
			"lots_cover", covered,
		)
		return nil, apperror.NewLedgerInconsistency(req.ProductID.String(), req.Quantity.Int64(), covered.Int64())
	}

	decrements := make([]LotDecrement, 0, len(plan))
	depletions := make([]Depletion, 0, len(plan))
	for _, alloc := range plan {
		decrements = append(decrements, LotDecrement{LotID: alloc.LotID, Quantity: alloc.Quantity})
		depletions = append(depletions, Depletion{
			MovementBase: entity.NewMovementBase(req.RecorderID, req.RecorderType, req.RecorderLine, req.Period, entity.RecordTypeExpense),
			ProductID:    req.ProductID,
			LotID:        alloc.LotID,
			Quantity:     alloc.Quantity,
			Expiry:       alloc.Expiry,
		})
	}

	if err := a.ledger.DecrementLots(ctx, decrements); err != nil {
		return nil, fmt.Errorf("decrement lots: %w", err)
	}
	if err := a.ledger.InsertDepletions(ctx, depletions); err != nil {
		return nil, fmt.Errorf("insert depletions: %w", err)
	}
	if err := a.ledger.AdjustProductQuantity(ctx, req.ProductID, -req.Quantity); err != nil {
		return nil, fmt.Errorf("decrement product total: %w", err)
	}

	logger.Debug(ctx, "allocated stock",
		"product_id", req.ProductID,
		"quantity", req.Quantity,
		"lots", len(plan),
	)

	return plan, nil
}

// collect reads candidate pages until they cover need or run out.
func (a *Allocator) collect(ctx context.Context, productID id.ID, need types.Quantity) ([]Lot, error) {
	var (
		lots    []Lot
		covered types.Quantity
	)
	for offset := 0; ; offset += a.pageSize {
		page, err := a.ledger.CandidateLots(ctx, productID, offset, a.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list candidate lots: %w", err)
		}
		for _, lot := range page {
			covered += lot.Remaining.Available()
		}
		lots = append(lots, page...)
		if covered >= need || len(page) < a.pageSize {
			return lots, nil
		}
	}
}

// SortFEFO orders lots in place: dated before undated, then by expiry,
// then by creation order.
func SortFEFO(lots []Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		return lessFEFO(&lots[i], &lots[j])
	})
}

func lessFEFO(a, b *Lot) bool {
	if c := a.Expiry.Compare(b.Expiry); c != 0 {
		return c < 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Seq < b.Seq
}

// PlanFEFO greedily takes qty from lots in FEFO order without mutating them.
// Untracked and empty lots are skipped. shortfall is what the lots could not cover.
func PlanFEFO(lots []Lot, qty types.Quantity) (plan []Allocation, shortfall types.Quantity) {
	ordered := make([]Lot, len(lots))
	copy(ordered, lots)
	SortFEFO(ordered)

	need := qty
	plan = []Allocation{}
	for i := range ordered {
		if need == 0 {
			break
		}
		avail := ordered[i].Remaining.Available()
		if avail == 0 {
			continue
		}
		take := types.MinQuantity(avail, need)
		plan = append(plan, Allocation{
			LotID:    ordered[i].ID,
			Quantity: take,
			Expiry:   ordered[i].Expiry,
		})
		need -= take
	}
	return plan, need
}
