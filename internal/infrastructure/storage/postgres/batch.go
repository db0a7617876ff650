package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter bulk-inserts rows with the COPY protocol.
type BatchInserter struct {
	txm *TxManager
}

func NewBatchInserter(txm *TxManager) *BatchInserter {
	return &BatchInserter{txm: txm}
}

// CopyFromSlice copies rows into table. It must run inside a transaction.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	t, err := b.txm.MustTx(ctx, "COPY into "+table)
	if err != nil {
		return 0, err
	}
	return t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// BatchQuery is one statement of a batch.
type BatchQuery struct {
	SQL  string
	Args []any
	// Expect, when positive, is the number of rows the statement must affect.
	Expect int64
}

// BatchExecutor sends many statements in one round trip.
type BatchExecutor struct {
	txm *TxManager
}

func NewBatchExecutor(txm *TxManager) *BatchExecutor {
	return &BatchExecutor{txm: txm}
}

// ExecuteBatch runs queries in order inside the ambient transaction.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, queries []BatchQuery) error {
	if len(queries) == 0 {
		return nil
	}
	t, err := e.txm.MustTx(ctx, "batch")
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := t.SendBatch(ctx, batch)
	defer results.Close()

	for i, q := range queries {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("batch query %d: %w", i, err)
		}
		if q.Expect > 0 && tag.RowsAffected() != q.Expect {
			return fmt.Errorf("batch query %d: affected %d rows, want %d", i, tag.RowsAffected(), q.Expect)
		}
	}
	return nil
}
