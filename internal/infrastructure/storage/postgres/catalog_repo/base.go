// Package catalog_repo provides PostgreSQL repositories for reference data
// and simple records: products, sellers and the payment books.
package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides CRUD for one table whose rows map onto T through
// "db" tags. T is a pointer type; newFn allocates a fresh value for scans.
type BaseCatalogRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	// immutable columns are never written by Update.
	immutable []string
	newFn     func() T
}

// NewBaseCatalogRepo creates a base repository.
func NewBaseCatalogRepo[T any](
	txm *postgres.TxManager,
	tableName, entityName string,
	selectCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		immutable:  []string{"id", "created_at"},
		newFn:      newFn,
	}
}

// WithImmutable adds columns Update must leave alone.
func (r *BaseCatalogRepo[T]) WithImmutable(cols ...string) *BaseCatalogRepo[T] {
	r.immutable = append(r.immutable, cols...)
	return r
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseCatalogRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *BaseCatalogRepo[T]) TableName() string { return r.tableName }

func (r *BaseCatalogRepo[T]) Columns() []string { return r.selectCols }

// Create inserts entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	row := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if v, ok := data[col]; ok {
			row[col] = v
		}
	}
	if len(row) == 0 {
		return fmt.Errorf("insert %s: no db columns", r.tableName)
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(row).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "insert", r.entityName, data["id"])
	}
	return nil
}

// Update writes every mutable column and stamps updated_at.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("update %s: entity has no id column", r.tableName)
	}

	set := make(map[string]any, len(r.selectCols))
	for _, col := range postgres.Omit(r.selectCols, r.immutable...) {
		if v, ok := data[col]; ok {
			set[col] = v
		}
	}
	set["updated_at"] = time.Now().UTC()

	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(set).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "update", r.entityName, entityID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID)
	}
	return nil
}

// BaseSelect selects all mapped columns of the table.
func (r *BaseCatalogRepo[T]) BaseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

// GetByID retrieves one row.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()

	sql, args, err := r.BaseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1).ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.Querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			var zero T
			return zero, apperror.NewNotFound(r.entityName, entityID)
		}
		return entity, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return entity, nil
}

// Select runs q and scans all rows into dst, a pointer to a slice.
func (r *BaseCatalogRepo[T]) Select(ctx context.Context, dst any, q squirrel.SelectBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.Querier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return nil
}

// Page applies limit and offset when positive.
func Page(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}

// DateRange restricts col to [from, to] when the bounds are set.
func DateRange(q squirrel.SelectBuilder, col string, from, to *time.Time) squirrel.SelectBuilder {
	if from != nil {
		q = q.Where(squirrel.GtOrEq{col: *from})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{col: *to})
	}
	return q
}

// Exists reports whether a row with entityID exists.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").Prefix("SELECT EXISTS (").
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var exists bool
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", r.tableName, err)
	}
	return exists, nil
}

// Delete removes a row. Rows still referenced elsewhere yield InUse.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	sql, args, err := r.Builder().Delete(r.tableName).Where(squirrel.Eq{"id": entityID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "delete", r.entityName, entityID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID)
	}
	return nil
}
