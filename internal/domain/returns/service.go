package returns

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

// Stock is what a return needs from inventory.
type Stock interface {
	GetProduct(ctx context.Context, productID id.ID) (*inventory.Product, error)
	Restock(ctx context.Context, productID id.ID, qty types.Quantity) error
	Unstock(ctx context.Context, productID id.ID, qty types.Quantity) error
}

type RateCards interface {
	RateCard(ctx context.Context, sellerID id.ID) (*sellers.RateCard, error)
}

type Numberer interface {
	Next(ctx context.Context, cfg numerator.Config, period time.Time) (string, error)
}

// NumberSeries is the numbering series of returns.
var NumberSeries = numerator.DefaultConfig("D")

type LineInput struct {
	ProductID id.ID
	Quantity  types.Quantity
	Price     *types.Money
	Percent   *types.Percent
}

type RegisterInput struct {
	SellerID   id.ID
	ClientName string
	Reason     string
	Date       time.Time
	Lines      []LineInput
}

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

// Register records a return and adds every line back to its product total.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Return, error) {
	if id.IsNil(in.SellerID) {
		return nil, apperror.NewValidation("seller is required").WithDetail("field", "sellerId")
	}
	var lines []LineInput
	for _, li := range in.Lines {
		if li.Quantity.IsPositive() {
			lines = append(lines, li)
		}
	}
	if len(lines) == 0 {
		return nil, apperror.NewValidation("return must have at least one line with quantity").WithDetail("field", "lines")
	}
	if in.Date.IsZero() {
		in.Date = entity.Today()
	}

	card, err := s.rates.RateCard(ctx, in.SellerID)
	if err != nil {
		return nil, err
	}
	client := in.ClientName
	if strings.TrimSpace(client) == "" {
		client = card.Seller.Name
	}

	ret := NewReturn(in.SellerID, client, in.Reason, in.Date)
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
			ret.AddLine(product, li.Quantity, price, card.Resolve(product.Brand, li.Percent))
		}
		if err := ret.Validate(ctx); err != nil {
			return err
		}
		for _, l := range ret.Lines {
			if err := s.stock.Restock(ctx, l.ProductID, l.Quantity); err != nil {
				return fmt.Errorf("restock line %d: %w", l.LineNo, err)
			}
		}
		number, err := s.numbers.Next(ctx, NumberSeries, ret.Date)
		if err != nil {
			return fmt.Errorf("return number: %w", err)
		}
		ret.Number = number
		return s.repo.Create(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return registered",
		"return_id", ret.ID,
		"number", ret.Number,
		"seller_id", ret.SellerID,
		"total", ret.Total.String(),
	)
	return ret, nil
}

func (s *Service) Get(ctx context.Context, returnID id.ID) (*Return, error) {
	return s.repo.GetByID(ctx, returnID)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Return, error) {
	return s.repo.List(ctx, filter)
}

// UpdateHeader edits client, reason or date. Lines are immutable.
func (s *Service) UpdateHeader(ctx context.Context, returnID id.ID, upd HeaderUpdate) (*Return, error) {
	var ret *Return
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.repo.GetByID(ctx, returnID)
		if err != nil {
			return err
		}
		if upd.ClientName != nil {
			ret.ClientName = strings.TrimSpace(*upd.ClientName)
		}
		if upd.Reason != nil {
			ret.Reason = strings.TrimSpace(*upd.Reason)
		}
		if upd.Date != nil {
			ret.Date = entity.DayOf(*upd.Date)
		}
		ret.Touch()
		return s.repo.UpdateHeader(ctx, ret)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Delete removes a return and takes its quantities out of the product totals again.
func (s *Service) Delete(ctx context.Context, returnID id.ID) error {
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		ret, err := s.repo.GetByID(ctx, returnID)
		if err != nil {
			return err
		}
		for _, l := range ret.Lines {
			if err := s.stock.Unstock(ctx, l.ProductID, l.Quantity); err != nil {
				return fmt.Errorf("unstock line %d: %w", l.LineNo, err)
			}
		}
		return s.repo.Delete(ctx, returnID)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "return deleted", "return_id", returnID)
	return nil
}
