package sellers

import (
	"context"
	"fmt"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/internal/core/types"
	"backoffice/pkg/logger"
)

// Service provides seller operations.
type Service struct {
	repo Repository
	txm  tx.Manager
}

func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{repo: repo, txm: txm}
}

func (s *Service) Create(ctx context.Context, seller *Seller) error {
	if err := seller.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, seller); err != nil {
		return fmt.Errorf("create seller: %w", err)
	}
	logger.Info(ctx, "seller created", "seller_id", seller.ID, "name", seller.Name)
	return nil
}

func (s *Service) Update(ctx context.Context, seller *Seller) error {
	if err := seller.Validate(ctx); err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, seller.ID)
	if err != nil {
		return err
	}
	seller.CreatedAt = current.CreatedAt
	seller.Touch()
	return s.repo.Update(ctx, seller)
}

func (s *Service) Get(ctx context.Context, sellerID id.ID) (*Seller, error) {
	return s.repo.GetByID(ctx, sellerID)
}

func (s *Service) List(ctx context.Context) ([]Seller, error) {
	return s.repo.List(ctx)
}

// Delete removes a seller that no sale or return references.
func (s *Service) Delete(ctx context.Context, sellerID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, sellerID); err != nil {
			return err
		}
		used, err := s.repo.HasDocuments(ctx, sellerID)
		if err != nil {
			return fmt.Errorf("check seller documents: %w", err)
		}
		if used {
			return apperror.NewInUse("seller", sellerID, "sales or returns")
		}
		if err := s.repo.Delete(ctx, sellerID); err != nil {
			return fmt.Errorf("delete seller: %w", err)
		}
		logger.Info(ctx, "seller deleted", "seller_id", sellerID)
		return nil
	})
}

// SetBrandCommission creates or replaces the rule for (seller, brand).
func (s *Service) SetBrandCommission(ctx context.Context, sellerID id.ID, brand string, pct types.Percent) (*BrandCommission, error) {
	rule := NewBrandCommission(sellerID, brand, pct)
	if err := rule.Validate(ctx); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, sellerID); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertCommission(ctx, rule); err != nil {
		return nil, fmt.Errorf("upsert commission: %w", err)
	}
	return rule, nil
}

func (s *Service) BrandCommissions(ctx context.Context, sellerID id.ID) ([]BrandCommission, error) {
	return s.repo.ListCommissions(ctx, sellerID)
}

func (s *Service) DeleteBrandCommission(ctx context.Context, sellerID, commissionID id.ID) error {
	return s.repo.DeleteCommission(ctx, sellerID, commissionID)
}

// RateCard loads everything needed to resolve a seller's commission rates.
func (s *Service) RateCard(ctx context.Context, sellerID id.ID) (*RateCard, error) {
	seller, err := s.repo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	rules, err := s.repo.ListCommissions(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	card := &RateCard{Seller: *seller, ByBrand: make(map[string]types.Percent, len(rules))}
	for _, r := range rules {
		card.ByBrand[r.Brand] = r.Percent
	}
	return card, nil
}

// Statement returns the account of one seller.
func (s *Service) Statement(ctx context.Context, sellerID id.ID) (*Statement, error) {
	seller, err := s.repo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, &sellerID)
	if err != nil {
		return nil, fmt.Errorf("seller totals: %w", err)
	}
	t := Totals{
		SellerID: sellerID, SellerName: seller.Name,
		Withdrawn: types.Zero(), Returned: types.Zero(), Paid: types.Zero(), Bonuses: types.Zero(),
	}
	if len(totals) > 0 {
		t = totals[0]
	}
	st := NewStatement(t)
	return &st, nil
}

// Statements returns the accounts of every seller.
func (s *Service) Statements(ctx context.Context) ([]Statement, error) {
	totals, err := s.repo.Totals(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("seller totals: %w", err)
	}
	out := make([]Statement, 0, len(totals))
	for _, t := range totals {
		out = append(out, NewStatement(t))
	}
	return out, nil
}
