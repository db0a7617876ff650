// Package register_repo provides the PostgreSQL lot ledger: receipt lots and
// their depletions, both stored as rows of stock_movements.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/infrastructure/storage/postgres"
)

const (
	movementsTable = "stock_movements"
	productsTable  = "products"
)

// fefoOrder is the consumption order of lots; seq breaks creation-time ties.
var fefoOrder = []string{"expiry ASC NULLS LAST", "created_at", "seq"}

// LedgerRepo implements inventory.LotRepository.
type LedgerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType

	productCols   []string
	lotCols       []string
	depletionCols []string
}

var _ inventory.LotRepository = (*LedgerRepo)(nil)

func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:           txm,
		builder:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		productCols:   postgres.ExtractDBColumns[inventory.Product](),
		lotCols:       postgres.ExtractDBColumns[inventory.Lot](),
		depletionCols: postgres.ExtractDBColumns[inventory.Depletion](),
	}
}

func (r *LedgerRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *LedgerRepo) lots() squirrel.SelectBuilder {
	return r.builder.Select(r.lotCols...).
		From(movementsTable).
		Where(squirrel.Eq{"record_type": entity.RecordTypeReceipt})
}

// --- Allocator ledger ---

// LockProduct reads the product with SELECT ... FOR UPDATE.
func (r *LedgerRepo) LockProduct(ctx context.Context, productID id.ID) (*inventory.Product, error) {
	t, err := r.txm.MustTx(ctx, "LockProduct")
	if err != nil {
		return nil, err
	}
	sql, args, err := r.builder.Select(r.productCols...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p inventory.Product
	if err := pgxscan.Get(ctx, t, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("lock product: %w", err)
	}
	return &p, nil
}

// CandidateLotsQuery selects one page of lots that may still hold stock.
func (r *LedgerRepo) CandidateLotsQuery(productID id.ID, offset, limit int) squirrel.SelectBuilder {
	q := r.lots().
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Or{squirrel.Eq{"remaining": nil}, squirrel.Gt{"remaining": 0}}).
		OrderBy(fefoOrder...)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q.Suffix("FOR UPDATE")
}

func (r *LedgerRepo) CandidateLots(ctx context.Context, productID id.ID, offset, limit int) ([]inventory.Lot, error) {
	t, err := r.txm.MustTx(ctx, "CandidateLots")
	if err != nil {
		return nil, err
	}
	sql, args, err := r.CandidateLotsQuery(productID, offset, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	lots := []inventory.Lot{}
	if err := pgxscan.Select(ctx, t, &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("candidate lots: %w", err)
	}
	return lots, nil
}

// DecrementQueries builds one guarded UPDATE per lot.
func (r *LedgerRepo) DecrementQueries(decrements []inventory.LotDecrement) ([]postgres.BatchQuery, error) {
	queries := make([]postgres.BatchQuery, 0, len(decrements))
	for _, d := range decrements {
		sql, args, err := r.builder.Update(movementsTable).
			Set("remaining", squirrel.Expr("remaining - ?", d.Quantity)).
			Where(squirrel.Eq{"id": d.LotID}).
			Where(squirrel.GtOrEq{"remaining": d.Quantity}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build decrement: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args, Expect: 1})
	}
	return queries, nil
}

// DecrementLots lowers every lot in one round trip. A lot that no longer
// covers its decrement fails the batch.
func (r *LedgerRepo) DecrementLots(ctx context.Context, decrements []inventory.LotDecrement) error {
	queries, err := r.DecrementQueries(decrements)
	if err != nil {
		return err
	}
	if err := postgres.NewBatchExecutor(r.txm).ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("decrement lots: %w", err)
	}
	return nil
}

// InsertDepletions copies depletion rows with COPY.
func (r *LedgerRepo) InsertDepletions(ctx context.Context, depletions []inventory.Depletion) error {
	rows := make([][]any, 0, len(depletions))
	for i := range depletions {
		rows = append(rows, postgres.Values(&depletions[i], r.depletionCols))
	}
	if _, err := postgres.NewBatchInserter(r.txm).CopyFromSlice(ctx, movementsTable, r.depletionCols, rows); err != nil {
		return fmt.Errorf("insert depletions: %w", err)
	}
	return nil
}

func (r *LedgerRepo) AdjustProductQuantity(ctx context.Context, productID id.ID, delta types.Quantity) error {
	sql, args, err := r.builder.Update(productsTable).
		Set("quantity", squirrel.Expr("quantity + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "adjust quantity of", "product", productID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}
	return nil
}

// --- Receipts and read models ---

// CreateLot inserts a receipt and assigns its sequence.
func (r *LedgerRepo) CreateLot(ctx context.Context, lot *inventory.Lot) error {
	cols := postgres.Omit(r.lotCols, "seq")
	sql, args, err := r.builder.Insert(movementsTable).
		Columns(cols...).
		Values(postgres.Values(lot, cols)...).
		Suffix("RETURNING seq").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&lot.Seq); err != nil {
		return postgres.MapError(err, "insert", "lot", lot.ID)
	}
	return nil
}

// ListLots returns every lot of a product in FEFO order, depleted ones included.
func (r *LedgerRepo) ListLots(ctx context.Context, productID id.ID) ([]inventory.Lot, error) {
	sql, args, err := r.lots().
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy(fefoOrder...).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	lots := []inventory.Lot{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

func (r *LedgerRepo) Depletions(ctx context.Context, recorderID id.ID) ([]inventory.Depletion, error) {
	sql, args, err := r.builder.Select(r.depletionCols...).
		From(movementsTable).
		Where(squirrel.Eq{"record_type": entity.RecordTypeExpense, "recorder_id": recorderID}).
		OrderBy("recorder_line", "seq").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	items := []inventory.Depletion{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("depletions: %w", err)
	}
	return items, nil
}

func (r *LedgerRepo) MarkDepletionsReversed(ctx context.Context, recorderID id.ID, at time.Time) (int64, error) {
	sql, args, err := r.builder.Update(movementsTable).
		Set("reversed_at", at).
		Where(squirrel.Eq{"record_type": entity.RecordTypeExpense, "recorder_id": recorderID, "reversed_at": nil}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("reverse depletions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *LedgerRepo) expiring() squirrel.SelectBuilder {
	return r.builder.Select(
		"m.id AS lot_id",
		"m.product_id",
		"p.name AS product_name",
		"p.brand",
		"m.lot_code",
		"m.remaining",
		"m.expiry",
		"p.purchase_price",
	).
		From(movementsTable+" m").
		Join(productsTable+" p ON p.id = m.product_id").
		Where(squirrel.Eq{"m.record_type": entity.RecordTypeReceipt}).
		Where(squirrel.Gt{"m.remaining": 0}).
		Where(squirrel.NotEq{"m.expiry": nil}).
		OrderBy("m.expiry", "p.name")
}

func (r *LedgerRepo) selectExpiring(ctx context.Context, q squirrel.SelectBuilder) ([]inventory.ExpiringLot, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	items := []inventory.ExpiringLot{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("expiring lots: %w", err)
	}
	return items, nil
}

func (r *LedgerRepo) ExpiringBetween(ctx context.Context, from, to time.Time) ([]inventory.ExpiringLot, error) {
	return r.selectExpiring(ctx, r.expiring().
		Where(squirrel.Gt{"m.expiry": from}).
		Where(squirrel.LtOrEq{"m.expiry": to}))
}

func (r *LedgerRepo) ExpiredOn(ctx context.Context, day time.Time) ([]inventory.ExpiringLot, error) {
	return r.selectExpiring(ctx, r.expiring().Where(squirrel.LtOrEq{"m.expiry": day}))
}

// --- Maintenance ---

// AuditQuery compares cached totals with the sum of tracked lots.
func (r *LedgerRepo) AuditQuery(productID *id.ID) squirrel.SelectBuilder {
	q := r.builder.Select(
		"p.id AS product_id",
		"p.name AS product_name",
		"p.quantity AS cached_quantity",
		"COALESCE(SUM(m.remaining), 0)::bigint AS lot_quantity",
		"COUNT(m.id) FILTER (WHERE m.remaining IS NULL) AS untracked_lots",
	).
		From(productsTable+" p").
		LeftJoin(movementsTable+" m ON m.product_id = p.id AND m.record_type = 'receipt'").
		GroupBy("p.id", "p.name", "p.quantity").
		OrderBy("p.name")
	if productID != nil {
		q = q.Where(squirrel.Eq{"p.id": *productID})
	}
	return q
}

func (r *LedgerRepo) Audit(ctx context.Context, productID *id.ID) ([]inventory.AuditRow, error) {
	sql, args, err := r.AuditQuery(productID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows := []inventory.AuditRow{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	return rows, nil
}

func (r *LedgerRepo) BackfillUntracked(ctx context.Context) (int64, error) {
	tag, err := r.querier(ctx).Exec(ctx, `
		UPDATE stock_movements
		   SET remaining = quantity
		 WHERE record_type = 'receipt'
		   AND (remaining IS NULL OR remaining < 0)
	`)
	if err != nil {
		return 0, fmt.Errorf("backfill untracked lots: %w", err)
	}
	return tag.RowsAffected(), nil
}
