package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// ProductRepo implements inventory.ProductRepository.
type ProductRepo struct {
	*BaseCatalogRepo[*inventory.Product]
}

var _ inventory.ProductRepository = (*ProductRepo)(nil)

func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	base := NewBaseCatalogRepo(txm, productsTable, "product",
		postgres.ExtractDBColumns[inventory.Product](),
		func() *inventory.Product { return &inventory.Product{} },
	).WithImmutable("quantity") // owned by the lot ledger
	return &ProductRepo{BaseCatalogRepo: base}
}

// ListQuery builds the product listing for filter.
func (r *ProductRepo) ListQuery(filter inventory.ProductFilter) squirrel.SelectBuilder {
	q := r.BaseSelect()
	if filter.Brand != "" {
		q = q.Where(squirrel.Eq{"brand": inventory.NormalizeBrand(filter.Brand)})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"brand": pattern},
		})
	}
	return Page(q.OrderBy("brand", "name"), filter.Limit, filter.Offset)
}

func (r *ProductRepo) List(ctx context.Context, filter inventory.ProductFilter) ([]inventory.Product, error) {
	items := []inventory.Product{}
	if err := r.Select(ctx, &items, r.ListQuery(filter)); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductRepo) Brands(ctx context.Context) ([]string, error) {
	brands := []string{}
	q := r.Builder().
		Select("DISTINCT brand").
		From(productsTable).
		Where(squirrel.NotEq{"brand": ""}).
		OrderBy("brand")
	if err := r.Select(ctx, &brands, q); err != nil {
		return nil, err
	}
	return brands, nil
}

// productReferences are checked in order; the first hit is reported.
var productReferences = []struct{ table, label string }{
	{"sale_lines", "sale lines"},
	{"return_lines", "return lines"},
	{"stock_movements", "stock lots"},
}

func (r *ProductRepo) References(ctx context.Context, productID id.ID) (string, error) {
	for _, ref := range productReferences {
		var found bool
		err := r.Querier(ctx).QueryRow(ctx,
			fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE product_id = $1)", ref.table),
			productID,
		).Scan(&found)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", ref.table, err)
		}
		if found {
			return ref.label, nil
		}
	}
	return "", nil
}
