package sales

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
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/sellers"
	"backoffice/pkg/logger"
	"backoffice/pkg/numerator"
)

// Stock is what a sale needs from inventory.
type Stock interface {
	GetProduct(ctx context.Context, productID id.ID) (*inventory.Product, error)
	Allocate(ctx context.Context, req inventory.Request) ([]inventory.Allocation, error)
	Restock(ctx context.Context, productID id.ID, qty types.Quantity) error
	ReverseDepletions(ctx context.Context, recorderID id.ID) (int64, error)
	Depletions(ctx context.Context, recorderID id.ID) ([]inventory.Depletion, error)
}

// RateCards resolves seller commission rates.
type RateCards interface {
	RateCard(ctx context.Context, sellerID id.ID) (*sellers.RateCard, error)
}

// Numberer issues sale numbers.
type Numberer interface {
	Next(ctx context.Context, cfg numerator.Config, period time.Time) (string, error)
}

// NumberSeries is the numbering series of sales.
var NumberSeries = numerator.DefaultConfig("V")

// LineInput is one requested line. Price defaults to the product sale price
// and Percent to the seller's resolved rate.
type LineInput struct {
	ProductID id.ID
	Quantity  types.Quantity
	Price     *types.Money
	Percent   *types.Percent
}

// RegisterInput is a sale as entered.
type RegisterInput struct {
	SellerID   id.ID
	ClientName string
	Date       time.Time
	Lines      []LineInput
}

// Service registers and reverses sales.
type Service struct {
	repo    Repository
	stock   Stock
	rates   RateCards
	numbers Numberer
	txm     tx.Manager
}

func NewService(repo Repository, stock Stock, rates RateCards, numbers Numberer, txm tx.Manager) *Service {
	return &Service{repo: repo, stock: stock, rates: rates, numbers: numbers, txm: txm}
}

// Register prices the lines, consumes stock for each line in order and saves
// the sale. Any failure rolls back every line.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Sale, error) {
	if id.IsNil(in.SellerID) {
		return nil, apperror.NewValidation("seller is required").WithDetail("field", "sellerId")
	}
	lines := make([]LineInput, 0, len(in.Lines))
	for _, li := range in.Lines {
		if li.Quantity.IsPositive() {
			lines = append(lines, li)
		}
	}
	if len(lines) == 0 {
		return nil, apperror.NewValidation("sale must have at least one line with quantity").WithDetail("field", "lines")
	}
	if in.Date.IsZero() {
		in.Date = entity.Today()
	}

	card, err := s.rates.RateCard(ctx, in.SellerID)
	if err != nil {
		return nil, err
	}
	client := strings.TrimSpace(in.ClientName)
	if client == "" {
		client = card.Seller.Name
	}

	sale := NewSale(in.SellerID, client, in.Date)
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, li := range lines {
			product, err := s.stock.GetProduct(ctx, li.ProductID)
			if err != nil {
				return err
			}
			price := product.SalePrice
			if li.Price != nil {
				price = *li.Price
			}
			line := sale.AddLine(product, li.Quantity, price, card.Resolve(product.Brand, li.Percent))
			if err := sale.Validate(ctx); err != nil {
				return err
			}

			allocs, err := s.stock.Allocate(ctx, inventory.Request{
				ProductID:    product.ID,
				Quantity:     line.Quantity,
				RecorderID:   sale.ID,
				RecorderType: entity.RecorderSale,
				RecorderLine: line.LineNo,
				Period:       sale.Date,
			})
			if err != nil {
				return fmt.Errorf("line %d (%s): %w", line.LineNo, product.Name, err)
			}
			line.Allocations = allocs
		}

		number, err := s.numbers.Next(ctx, NumberSeries, sale.Date)
		if err != nil {
			return fmt.Errorf("sale number: %w", err)
		}
		sale.Number = number

		return s.repo.Create(ctx, sale)
	})
	if err != nil {
		if apperror.IsLedgerInconsistency(err) {
			logger.Error(ctx, "sale aborted by ledger inconsistency", "seller_id", in.SellerID, "error", err)
		}
		return nil, err
	}

	logger.Info(ctx, "sale registered",
		"sale_id", sale.ID,
		"number", sale.Number,
		"seller_id", sale.SellerID,
		"lines", len(sale.Lines),
		"total", sale.Total.String(),
	)
	return sale, nil
}

// Get loads a sale with the lot allocations of each line.
func (s *Service) Get(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	deps, err := s.stock.Depletions(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("load depletions: %w", err)
	}
	byLine := make(map[int][]inventory.Allocation, len(sale.Lines))
	for _, d := range deps {
		byLine[d.RecorderLine] = append(byLine[d.RecorderLine], inventory.Allocation{
			LotID:    d.LotID,
			Quantity: d.Quantity,
			Expiry:   d.Expiry,
		})
	}
	for i := range sale.Lines {
		sale.Lines[i].Allocations = byLine[sale.Lines[i].LineNo]
	}
	return sale, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Sale, error) {
	return s.repo.List(ctx, filter)
}

// Delete removes a sale, returning its quantities to the product totals and
// marking its depletions reversed. Lot remaining quantities stay as they are.
func (s *Service) Delete(ctx context.Context, saleID id.ID) error {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.repo.GetByID(ctx, saleID)
		if err != nil {
			return err
		}
		for _, line := range sale.Lines {
			if err := s.stock.Restock(ctx, line.ProductID, line.Quantity); err != nil {
				return fmt.Errorf("restock line %d: %w", line.LineNo, err)
			}
		}
		if _, err := s.stock.ReverseDepletions(ctx, saleID); err != nil {
			return fmt.Errorf("reverse depletions: %w", err)
		}
		return s.repo.Delete(ctx, saleID)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "sale deleted", "sale_id", saleID)
	return nil
}
