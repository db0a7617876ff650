package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/internal/core/types"
	"backoffice/pkg/logger"
)

// Config holds stock alert settings.
type Config struct {
	// NearMargin widens the low-stock threshold for the "near" alert.
	NearMargin types.Quantity
	// ExpiryWarningDays is the look-ahead for expiring lots.
	ExpiryWarningDays int
	// AllocatorPageSize bounds candidate lot reads.
	AllocatorPageSize int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		NearMargin:        5,
		ExpiryWarningDays: 30,
		AllocatorPageSize: DefaultPageSize,
	}
}

// Service provides product and stock operations.
type Service struct {
	products  ProductRepository
	lots      LotRepository
	allocator *Allocator
	txm       tx.Manager
	cfg       Config
	now       func() time.Time
}

// NewService creates the inventory service.
func NewService(products ProductRepository, lots LotRepository, txm tx.Manager, cfg Config) *Service {
	return &Service{
		products:  products,
		lots:      lots,
		allocator: NewAllocator(lots, cfg.AllocatorPageSize),
		txm:       txm,
		cfg:       cfg,
		now:       time.Now,
	}
}

// --- Catalog ---

func (s *Service) CreateProduct(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	p.Quantity = 0
	if err := s.products.Create(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	logger.Info(ctx, "product created", "product_id", p.ID, "name", p.Name)
	return nil
}

// UpdateProduct changes catalog fields. The cached quantity is owned by the
// ledger and is never taken from the input.
func (s *Service) UpdateProduct(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.lots.LockProduct(ctx, p.ID)
		if err != nil {
			return err
		}
		p.Quantity = current.Quantity
		p.CreatedAt = current.CreatedAt
		p.Touch()
		return s.products.Update(ctx, p)
	})
}

func (s *Service) GetProduct(ctx context.Context, productID id.ID) (*Product, error) {
	return s.products.GetByID(ctx, productID)
}

func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	filter.Brand = strings.TrimSpace(filter.Brand)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.products.List(ctx, filter)
}

func (s *Service) Brands(ctx context.Context) ([]string, error) {
	return s.products.Brands(ctx)
}

// DeleteProduct removes a product no sale or return line references.
func (s *Service) DeleteProduct(ctx context.Context, productID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.lots.LockProduct(ctx, productID); err != nil {
			return err
		}
		ref, err := s.products.References(ctx, productID)
		if err != nil {
			return fmt.Errorf("check references: %w", err)
		}
		if ref != "" {
			return apperror.NewInUse("product", productID, ref)
		}
		if err := s.products.Delete(ctx, productID); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		logger.Info(ctx, "product deleted", "product_id", productID)
		return nil
	})
}

// --- Ledger ---

// ReceiveInput describes inbound stock.
type ReceiveInput struct {
	Quantity types.Quantity
	Expiry   types.Expiry
	Code     string
	Date     time.Time
}

// Receive opens a lot and raises the product total in one transaction.
func (s *Service) Receive(ctx context.Context, productID id.ID, in ReceiveInput) (*Lot, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.NewValidation("received quantity must be positive").WithDetail("field", "quantity")
	}
	if in.Date.IsZero() {
		in.Date = entity.DayOf(s.now())
	}

	var lot *Lot
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.lots.LockProduct(ctx, productID); err != nil {
			return err
		}
		lot = NewLot(productID, in.Quantity, in.Expiry, strings.TrimSpace(in.Code), in.Date)
		if err := s.lots.CreateLot(ctx, lot); err != nil {
			return fmt.Errorf("create lot: %w", err)
		}
		return s.lots.AdjustProductQuantity(ctx, productID, in.Quantity)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock received",
		"product_id", productID,
		"lot_id", lot.ID,
		"quantity", in.Quantity,
		"expiry", lot.Expiry.String(),
	)
	return lot, nil
}

// Allocate depletes stock inside the caller's transaction.
func (s *Service) Allocate(ctx context.Context, req Request) ([]Allocation, error) {
	return s.allocator.Allocate(ctx, req)
}

// Restock adds qty back to the product total inside the caller's
// transaction. Lot remaining quantities are not restored.
func (s *Service) Restock(ctx context.Context, productID id.ID, qty types.Quantity) error {
	if qty.IsNegative() {
		return apperror.NewInvalidQuantity(productID.String(), qty.Int64())
	}
	if qty.IsZero() {
		return nil
	}
	if _, err := s.lots.LockProduct(ctx, productID); err != nil {
		return err
	}
	return s.lots.AdjustProductQuantity(ctx, productID, qty)
}

// Unstock removes a previous restock from the product total inside the
// caller's transaction.
func (s *Service) Unstock(ctx context.Context, productID id.ID, qty types.Quantity) error {
	if qty.IsNegative() {
		return apperror.NewInvalidQuantity(productID.String(), qty.Int64())
	}
	if qty.IsZero() {
		return nil
	}
	p, err := s.lots.LockProduct(ctx, productID)
	if err != nil {
		return err
	}
	if p.Quantity < qty {
		return apperror.NewInsufficientStock(productID.String(), qty.Int64(), p.Quantity.Int64()).
			WithDetail("product", p.Name)
	}
	return s.lots.AdjustProductQuantity(ctx, productID, -qty)
}

// ReverseDepletions marks a document's depletions as undone.
func (s *Service) ReverseDepletions(ctx context.Context, recorderID id.ID) (int64, error) {
	return s.lots.MarkDepletionsReversed(ctx, recorderID, s.now().UTC())
}

func (s *Service) Depletions(ctx context.Context, recorderID id.ID) ([]Depletion, error) {
	return s.lots.Depletions(ctx, recorderID)
}

func (s *Service) Lots(ctx context.Context, productID id.ID) ([]Lot, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.lots.ListLots(ctx, productID)
}

// --- Alerts ---

// Alerts groups the stock warnings shown on the dashboard.
type Alerts struct {
	Low      []Product     `json:"low"`
	Near     []Product     `json:"near"`
	Expiring []ExpiringLot `json:"expiring"`
	Expired  []ExpiringLot `json:"expired"`
	// ExpiredLoss is the purchase value of expired stock still on hand.
	ExpiredLoss types.Money `json:"expiredLoss"`
}

// StockLevels returns products at or near their reorder threshold.
func (s *Service) StockLevels(ctx context.Context) (low, near []Product, err error) {
	all, err := s.products.List(ctx, ProductFilter{})
	if err != nil {
		return nil, nil, err
	}
	low, near = []Product{}, []Product{}
	for _, p := range all {
		switch {
		case p.IsLow():
			low = append(low, p)
		case p.IsNearLow(s.cfg.NearMargin):
			near = append(near, p)
		}
	}
	return low, near, nil
}

// Expiring lists lots expiring after today within days (configured default when days <= 0).
func (s *Service) Expiring(ctx context.Context, days int) ([]ExpiringLot, error) {
	if days <= 0 {
		days = s.cfg.ExpiryWarningDays
	}
	today := entity.DayOf(s.now())
	return s.lots.ExpiringBetween(ctx, today, today.AddDate(0, 0, days))
}

// Expired lists lots past expiry with stock left, and the value lost.
func (s *Service) Expired(ctx context.Context) ([]ExpiringLot, types.Money, error) {
	lots, err := s.lots.ExpiredOn(ctx, entity.DayOf(s.now()))
	if err != nil {
		return nil, types.Zero(), err
	}
	loss := types.Zero()
	for _, l := range lots {
		loss = loss.Add(l.Loss())
	}
	return lots, loss, nil
}

// Alerts collects every stock warning.
func (s *Service) Alerts(ctx context.Context) (*Alerts, error) {
	low, near, err := s.StockLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock levels: %w", err)
	}
	expiring, err := s.Expiring(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("expiring lots: %w", err)
	}
	expired, loss, err := s.Expired(ctx)
	if err != nil {
		return nil, fmt.Errorf("expired lots: %w", err)
	}
	return &Alerts{Low: low, Near: near, Expiring: expiring, Expired: expired, ExpiredLoss: loss}, nil
}

// --- Maintenance ---

// Audit compares cached totals with lot sums. Drifting products are logged.
func (s *Service) Audit(ctx context.Context, productID *id.ID) ([]AuditRow, error) {
	rows, err := s.lots.Audit(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if !r.Consistent() {
			logger.Warn(ctx, "product total drifts from lots",
				"product_id", r.ProductID,
				"cached", r.CachedQuantity,
				"lots", r.LotQuantity,
				"untracked_lots", r.UntrackedLots,
			)
		}
	}
	return rows, nil
}

// BackfillUntracked turns legacy untracked lots into tracked ones.
func (s *Service) BackfillUntracked(ctx context.Context) (int64, error) {
	var n int64
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.lots.BackfillUntracked(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("backfill untracked lots: %w", err)
	}
	if n > 0 {
		logger.Info(ctx, "backfilled untracked lots", "count", n)
	}
	return n, nil
}
