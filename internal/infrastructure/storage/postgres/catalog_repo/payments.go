package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"backoffice/internal/domain/payments"
	"backoffice/internal/infrastructure/storage/postgres"
)

// EntryRepo implements payments.Repository for one entry table.
type EntryRepo[T payments.Entry] struct {
	*BaseCatalogRepo[T]
	dateCol   string
	sellerCol string
}

// NewEntryRepo creates a repository. sellerCol is empty for tables without a seller.
func NewEntryRepo[T payments.Entry](txm *postgres.TxManager, table, entity, dateCol, sellerCol string, cols []string, newFn func() T) *EntryRepo[T] {
	return &EntryRepo[T]{
		BaseCatalogRepo: NewBaseCatalogRepo(txm, table, entity, cols, newFn),
		dateCol:         dateCol,
		sellerCol:       sellerCol,
	}
}

// ListQuery builds the listing for filter; newest first.
func (r *EntryRepo[T]) ListQuery(filter payments.Filter) squirrel.SelectBuilder {
	q := DateRange(r.BaseSelect(), r.dateCol, filter.From, filter.To)
	if r.sellerCol != "" && filter.SellerID != nil {
		q = q.Where(squirrel.Eq{r.sellerCol: *filter.SellerID})
	}
	return Page(q.OrderBy(r.dateCol+" DESC", "created_at DESC"), filter.Limit, filter.Offset)
}

func (r *EntryRepo[T]) List(ctx context.Context, filter payments.Filter) ([]T, error) {
	items := []T{}
	if err := r.Select(ctx, &items, r.ListQuery(filter)); err != nil {
		return nil, err
	}
	return items, nil
}

// NewPaymentRepositories wires the four payment books.
func NewPaymentRepositories(txm *postgres.TxManager) payments.Repositories {
	return payments.Repositories{
		SellerPayments: NewEntryRepo(txm, "seller_payments", "seller payment", "payment_date", "seller_id",
			postgres.ExtractDBColumns[payments.SellerPayment](),
			func() *payments.SellerPayment { return &payments.SellerPayment{} }),
		Bonuses: NewEntryRepo(txm, "bonuses", "bonus", "bonus_date", "seller_id",
			postgres.ExtractDBColumns[payments.Bonus](),
			func() *payments.Bonus { return &payments.Bonus{} }),
		SupplierPayments: NewEntryRepo(txm, "supplier_payments", "supplier payment", "payment_date", "",
			postgres.ExtractDBColumns[payments.SupplierPayment](),
			func() *payments.SupplierPayment { return &payments.SupplierPayment{} }),
		Expenses: NewEntryRepo(txm, "expenses", "expense", "expense_date", "",
			postgres.ExtractDBColumns[payments.Expense](),
			func() *payments.Expense { return &payments.Expense{} }),
	}
}
