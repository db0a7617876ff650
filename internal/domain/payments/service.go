package payments

import (
	"context"

	"backoffice/internal/core/id"
)

// Service groups the books of every entry kind.
type Service struct {
	SellerPayments   *Book[*SellerPayment]
	Bonuses          *Book[*Bonus]
	SupplierPayments *Book[*SupplierPayment]
	Expenses         *Book[*Expense]
}

// Repositories bundles the storage of every entry kind.
type Repositories struct {
	SellerPayments   Repository[*SellerPayment]
	Bonuses          Repository[*Bonus]
	SupplierPayments Repository[*SupplierPayment]
	Expenses         Repository[*Expense]
}

// NewService wires the books. sellerExists guards seller-owned entries.
func NewService(repos Repositories, sellerExists SellerExists) *Service {
	return &Service{
		SellerPayments: NewBook("seller payment", repos.SellerPayments, func(ctx context.Context, p *SellerPayment) error {
			return sellerExists(ctx, p.SellerID)
		}),
		Bonuses: NewBook("bonus", repos.Bonuses, func(ctx context.Context, b *Bonus) error {
			return sellerExists(ctx, b.SellerID)
		}),
		SupplierPayments: NewBook[*SupplierPayment]("supplier payment", repos.SupplierPayments, nil),
		Expenses:         NewBook[*Expense]("expense", repos.Expenses, nil),
	}
}

// SellerLookup adapts anything that can load a seller into SellerExists.
func SellerLookup[T any](get func(ctx context.Context, sellerID id.ID) (T, error)) SellerExists {
	return func(ctx context.Context, sellerID id.ID) error {
		_, err := get(ctx, sellerID)
		return err
	}
}
