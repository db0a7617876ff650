// Package document_repo provides PostgreSQL repositories for documents with
// lines: sales and returns.
package document_repo

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

// BaseDocumentRepo stores a header table H and its line table L. Lines are
// keyed by (fkCol, line_no) and removed with the header by ON DELETE CASCADE.
type BaseDocumentRepo[H any, L any] struct {
	txm        *postgres.TxManager
	builder    squirrel.StatementBuilderType
	entityName string

	headerTable string
	headerCols  []string
	dateCol     string

	linesTable string
	lineCols   []string
	fkCol      string

	newFn func() H
}

// NewBaseDocumentRepo creates a base document repository.
func NewBaseDocumentRepo[H any, L any](
	txm *postgres.TxManager,
	entityName, headerTable, dateCol, linesTable, fkCol string,
	newFn func() H,
) *BaseDocumentRepo[H, L] {
	return &BaseDocumentRepo[H, L]{
		txm:         txm,
		builder:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		entityName:  entityName,
		headerTable: headerTable,
		headerCols:  postgres.ExtractDBColumns[H](),
		dateCol:     dateCol,
		linesTable:  linesTable,
		lineCols:    postgres.ExtractDBColumns[L](),
		fkCol:       fkCol,
		newFn:       newFn,
	}
}

func (r *BaseDocumentRepo[H, L]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// InsertQueries builds the header insert and one multi-row lines insert.
func (r *BaseDocumentRepo[H, L]) InsertQueries(header H, lines []L) ([]postgres.BatchQuery, error) {
	sql, args, err := r.builder.Insert(r.headerTable).
		Columns(r.headerCols...).
		Values(postgres.Values(header, r.headerCols)...).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build header insert: %w", err)
	}
	queries := []postgres.BatchQuery{{SQL: sql, Args: args, Expect: 1}}

	if len(lines) == 0 {
		return queries, nil
	}
	ins := r.builder.Insert(r.linesTable).Columns(r.lineCols...)
	for i := range lines {
		ins = ins.Values(postgres.Values(&lines[i], r.lineCols)...)
	}
	sql, args, err = ins.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines insert: %w", err)
	}
	return append(queries, postgres.BatchQuery{SQL: sql, Args: args, Expect: int64(len(lines))}), nil
}

// Insert writes the header and its lines in one round trip.
func (r *BaseDocumentRepo[H, L]) Insert(ctx context.Context, header H, lines []L) error {
	queries, err := r.InsertQueries(header, lines)
	if err != nil {
		return err
	}
	if err := postgres.NewBatchExecutor(r.txm).ExecuteBatch(ctx, queries); err != nil {
		return postgres.MapError(err, "insert", r.entityName, postgres.StructToMap(header)["id"])
	}
	return nil
}

// Header loads one header row.
func (r *BaseDocumentRepo[H, L]) Header(ctx context.Context, docID id.ID) (H, error) {
	header := r.newFn()
	sql, args, err := r.builder.Select(r.headerCols...).
		From(r.headerTable).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return header, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), header, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			var zero H
			return zero, apperror.NewNotFound(r.entityName, docID)
		}
		return header, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return header, nil
}

// Lines loads the lines of a document by line number.
func (r *BaseDocumentRepo[H, L]) Lines(ctx context.Context, docID id.ID) ([]L, error) {
	sql, args, err := r.builder.Select(r.lineCols...).
		From(r.linesTable).
		Where(squirrel.Eq{r.fkCol: docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	lines := []L{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get %s lines: %w", r.entityName, err)
	}
	return lines, nil
}

// ListQuery selects headers, newest first.
func (r *BaseDocumentRepo[H, L]) ListQuery(sellerID *id.ID, from, to *time.Time, limit, offset int) squirrel.SelectBuilder {
	q := r.builder.Select(r.headerCols...).From(r.headerTable)
	if sellerID != nil {
		q = q.Where(squirrel.Eq{"seller_id": *sellerID})
	}
	if from != nil {
		q = q.Where(squirrel.GtOrEq{r.dateCol: *from})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{r.dateCol: *to})
	}
	q = q.OrderBy(r.dateCol+" DESC", "number DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}

// Headers runs a ListQuery into plain header values.
func Headers[V any, H any, L any](ctx context.Context, r *BaseDocumentRepo[H, L], q squirrel.SelectBuilder) ([]V, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	items := []V{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.headerTable, err)
	}
	return items, nil
}

// UpdateColumns sets cols on the header and stamps updated_at.
func (r *BaseDocumentRepo[H, L]) UpdateColumns(ctx context.Context, docID id.ID, cols map[string]any) error {
	set := make(map[string]any, len(cols)+1)
	for k, v := range cols {
		set[k] = v
	}
	set["updated_at"] = time.Now().UTC()

	sql, args, err := r.builder.Update(r.headerTable).SetMap(set).Where(squirrel.Eq{"id": docID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "update", r.entityName, docID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, docID)
	}
	return nil
}

// Delete removes the header; lines follow by cascade.
func (r *BaseDocumentRepo[H, L]) Delete(ctx context.Context, docID id.ID) error {
	sql, args, err := r.builder.Delete(r.headerTable).Where(squirrel.Eq{"id": docID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "delete", r.entityName, docID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, docID)
	}
	return nil
}
