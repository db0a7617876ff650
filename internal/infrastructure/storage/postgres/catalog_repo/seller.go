package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/sellers"
	"backoffice/internal/infrastructure/storage/postgres"
)

const (
	sellersTable      = "sellers"
	sellerBrandsTable = "seller_brand_commissions"
)

// SellerRepo implements sellers.Repository.
type SellerRepo struct {
	*BaseCatalogRepo[*sellers.Seller]
	commissionCols []string
}

var _ sellers.Repository = (*SellerRepo)(nil)

func NewSellerRepo(txm *postgres.TxManager) *SellerRepo {
	return &SellerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txm, sellersTable, "seller",
			postgres.ExtractDBColumns[sellers.Seller](),
			func() *sellers.Seller { return &sellers.Seller{} },
		),
		commissionCols: postgres.ExtractDBColumns[sellers.BrandCommission](),
	}
}

func (r *SellerRepo) List(ctx context.Context) ([]sellers.Seller, error) {
	items := []sellers.Seller{}
	if err := r.Select(ctx, &items, r.BaseSelect().OrderBy("name")); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SellerRepo) HasDocuments(ctx context.Context, sellerID id.ID) (bool, error) {
	var found bool
	err := r.Querier(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM sales WHERE seller_id = $1)
		    OR EXISTS (SELECT 1 FROM returns WHERE seller_id = $1)
	`, sellerID).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check seller documents: %w", err)
	}
	return found, nil
}

// UpsertCommission inserts or replaces the rule for (seller, brand). On
// conflict c takes the identity of the existing rule.
func (r *SellerRepo) UpsertCommission(ctx context.Context, c *sellers.BrandCommission) error {
	sql, args, err := r.Builder().
		Insert(sellerBrandsTable).
		Columns(r.commissionCols...).
		Values(postgres.Values(c, r.commissionCols)...).
		Suffix("ON CONFLICT (seller_id, brand) DO UPDATE SET percent = EXCLUDED.percent, updated_at = EXCLUDED.updated_at").
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return postgres.MapError(err, "upsert", "brand commission", c.SellerID)
	}
	return nil
}

func (r *SellerRepo) ListCommissions(ctx context.Context, sellerID id.ID) ([]sellers.BrandCommission, error) {
	items := []sellers.BrandCommission{}
	q := r.Builder().
		Select(r.commissionCols...).
		From(sellerBrandsTable).
		Where(squirrel.Eq{"seller_id": sellerID}).
		OrderBy("brand")
	if err := r.Select(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SellerRepo) DeleteCommission(ctx context.Context, sellerID, commissionID id.ID) error {
	sql, args, err := r.Builder().
		Delete(sellerBrandsTable).
		Where(squirrel.Eq{"id": commissionID, "seller_id": sellerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete brand commission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("brand commission", commissionID)
	}
	return nil
}

// TotalsQuery sums every statement component per seller.
func (r *SellerRepo) TotalsQuery(sellerID *id.ID) squirrel.SelectBuilder {
	q := r.Builder().
		Select(
			"s.id AS seller_id",
			"s.name AS seller_name",
			"COALESCE((SELECT SUM(total) FROM sales WHERE seller_id = s.id), 0) AS withdrawn",
			"COALESCE((SELECT SUM(total) FROM returns WHERE seller_id = s.id), 0) AS returned",
			"COALESCE((SELECT SUM(amount) FROM seller_payments WHERE seller_id = s.id), 0) AS paid",
			"COALESCE((SELECT SUM(amount) FROM bonuses WHERE seller_id = s.id), 0) AS bonuses",
		).
		From(sellersTable + " s").
		OrderBy("s.name")
	if sellerID != nil {
		q = q.Where(squirrel.Eq{"s.id": *sellerID})
	}
	return q
}

func (r *SellerRepo) Totals(ctx context.Context, sellerID *id.ID) ([]sellers.Totals, error) {
	items := []sellers.Totals{}
	if err := r.Select(ctx, &items, r.TotalsQuery(sellerID)); err != nil {
		return nil, err
	}
	return items, nil
}
