package sellers

import (
	"context"

	"backoffice/internal/core/id"
)

// Repository stores sellers and their commission rules.
type Repository interface {
	Create(ctx context.Context, s *Seller) error
	Update(ctx context.Context, s *Seller) error
	GetByID(ctx context.Context, sellerID id.ID) (*Seller, error)
	List(ctx context.Context) ([]Seller, error)

	// Delete removes the seller with its commission rules, payments and bonuses.
	Delete(ctx context.Context, sellerID id.ID) error
	HasDocuments(ctx context.Context, sellerID id.ID) (bool, error)

	UpsertCommission(ctx context.Context, c *BrandCommission) error
	ListCommissions(ctx context.Context, sellerID id.ID) ([]BrandCommission, error)
	DeleteCommission(ctx context.Context, sellerID, commissionID id.ID) error

	// Totals returns statement sums for one seller, or all when sellerID is nil.
	Totals(ctx context.Context, sellerID *id.ID) ([]Totals, error)
}
