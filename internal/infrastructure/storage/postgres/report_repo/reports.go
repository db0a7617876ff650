// Package report_repo provides the PostgreSQL queries behind the dashboard.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/types"
	"backoffice/internal/domain/reports"
	"backoffice/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func inPeriod(col string, p reports.Period) squirrel.And {
	return squirrel.And{squirrel.GtOrEq{col: p.From}, squirrel.Lt{col: p.To}}
}

func (r *ReportRepo) SalesOn(ctx context.Context, day time.Time) (types.Money, int64, error) {
	var total types.Money
	var count int64
	err := r.querier(ctx).QueryRow(ctx,
		"SELECT COALESCE(SUM(total), 0), COUNT(*) FROM sales WHERE sale_date = $1", day,
	).Scan(&total, &count)
	if err != nil {
		return types.Zero(), 0, fmt.Errorf("sales on day: %w", err)
	}
	return total, count, nil
}

func (r *ReportRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.querier(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// SeriesQuery sums sales per bucket; format is a to_char pattern.
func (r *ReportRepo) SeriesQuery(format string, p reports.Period) squirrel.SelectBuilder {
	bucket := fmt.Sprintf("to_char(sale_date, '%s')", format)
	return r.builder.
		Select(bucket+" AS bucket", "SUM(total) AS total").
		From("sales").
		Where(inPeriod("sale_date", p)).
		GroupBy("bucket").
		OrderBy("bucket")
}

func (r *ReportRepo) series(ctx context.Context, q squirrel.SelectBuilder) ([]reports.Point, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	points := []reports.Point{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &points, sql, args...); err != nil {
		return nil, fmt.Errorf("sales series: %w", err)
	}
	return points, nil
}

func (r *ReportRepo) DailySales(ctx context.Context, p reports.Period) ([]reports.Point, error) {
	return r.series(ctx, r.SeriesQuery("YYYY-MM-DD", p))
}

func (r *ReportRepo) MonthlySales(ctx context.Context, p reports.Period) ([]reports.Point, error) {
	return r.series(ctx, r.SeriesQuery("YYYY-MM", p))
}

// TotalsQuery sums every money flow of the period in one statement. COGS is
// valued at the current purchase price of each product.
func (r *ReportRepo) TotalsQuery(p reports.Period) (string, []any) {
	return `
		SELECT
			COALESCE((SELECT SUM(total)  FROM sales             WHERE sale_date    >= $1 AND sale_date    < $2), 0) AS sales,
			COALESCE((SELECT SUM(amount) FROM expenses          WHERE expense_date >= $1 AND expense_date < $2), 0) AS expenses,
			COALESCE((SELECT SUM(total)  FROM returns           WHERE return_date  >= $1 AND return_date  < $2), 0) AS returns,
			COALESCE((SELECT SUM(amount) FROM bonuses           WHERE bonus_date   >= $1 AND bonus_date   < $2), 0) AS bonuses,
			COALESCE((SELECT SUM(amount) FROM seller_payments   WHERE payment_date >= $1 AND payment_date < $2), 0) AS payments,
			COALESCE((
				SELECT SUM(l.quantity * p.purchase_price)
				  FROM sales s
				  JOIN sale_lines l ON l.sale_id = s.id
				  JOIN products p ON p.id = l.product_id
				 WHERE s.sale_date >= $1 AND s.sale_date < $2
			), 0) AS cogs
	`, []any{p.From, p.To}
}

func (r *ReportRepo) Totals(ctx context.Context, p reports.Period) (*reports.Totals, error) {
	sql, args := r.TotalsQuery(p)
	var t reports.Totals
	if err := pgxscan.Get(ctx, r.querier(ctx), &t, sql, args...); err != nil {
		return nil, fmt.Errorf("period totals: %w", err)
	}
	return &t, nil
}

func (r *ReportRepo) ranked(ctx context.Context, q squirrel.SelectBuilder, limit int) ([]reports.Ranked, error) {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	items := []reports.Ranked{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	return items, nil
}

// TopSellersQuery ranks sellers by net merchandise withdrawn.
func (r *ReportRepo) TopSellersQuery(p reports.Period) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"v.id",
			"v.name",
			"COALESCE(SUM(l.quantity), 0)::bigint AS units",
			"COALESCE(SUM(l.subtotal - l.commission), 0) AS total",
		).
		From("sales s").
		Join("sellers v ON v.id = s.seller_id").
		Join("sale_lines l ON l.sale_id = s.id").
		Where(inPeriod("s.sale_date", p)).
		GroupBy("v.id", "v.name").
		OrderBy("total DESC", "v.name")
}

func (r *ReportRepo) TopSellers(ctx context.Context, p reports.Period, limit int) ([]reports.Ranked, error) {
	return r.ranked(ctx, r.TopSellersQuery(p), limit)
}

// lineRanking ranks products by units on a document line table.
func (r *ReportRepo) lineRanking(header, lines, fk, dateCol string, p reports.Period) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"l.product_id AS id",
			"MAX(l.product_name) AS name",
			"SUM(l.quantity)::bigint AS units",
			"SUM(l.subtotal - l.commission) AS total",
		).
		From(header+" h").
		Join(fmt.Sprintf("%s l ON l.%s = h.id", lines, fk)).
		Where(inPeriod("h."+dateCol, p)).
		GroupBy("l.product_id").
		OrderBy("units DESC", "name")
}

func (r *ReportRepo) TopProducts(ctx context.Context, p reports.Period, limit int) ([]reports.Ranked, error) {
	return r.ranked(ctx, r.lineRanking("sales", "sale_lines", "sale_id", "sale_date", p), limit)
}

func (r *ReportRepo) TopReturned(ctx context.Context, p reports.Period, limit int) ([]reports.Ranked, error) {
	return r.ranked(ctx, r.lineRanking("returns", "return_lines", "return_id", "return_date", p), limit)
}
