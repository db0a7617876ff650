package sales

import (
	"context"

	"backoffice/internal/core/id"
)

// Repository stores sales with their lines.
type Repository interface {
	// Create inserts the header and all lines.
	Create(ctx context.Context, sale *Sale) error
	// GetByID loads the header and lines (without allocations).
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	List(ctx context.Context, filter Filter) ([]Sale, error)
	Delete(ctx context.Context, saleID id.ID) error
}
