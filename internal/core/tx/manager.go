// Package tx defines the transaction boundary used by domain services.
// Implementations live in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs work inside one database transaction.
//
// If fn returns an error the transaction is rolled back, otherwise committed.
// Nested calls reuse the transaction already carried by ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transactions for reporting.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
