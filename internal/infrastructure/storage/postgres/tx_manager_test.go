package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records how a transaction ended. Unused pgx.Tx methods panic.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

func TestRunInTx_Commits(t *testing.T) {
	tx := &fakeTx{}
	var inner *Tx

	err := runInTx(context.Background(), tx, func(ctx context.Context) error {
		inner = (&TxManager{}).GetTx(ctx)
		return nil
	})

	require.NoError(t, err)
	require.NotNil(t, inner)
	assert.Same(t, tx, inner.Tx)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	boom := errors.New("insufficient stock")

	err := runInTx(context.Background(), tx, func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestRunInTx_RollsBackAndRepanics(t *testing.T) {
	tx := &fakeTx{}

	assert.PanicsWithValue(t, "allocator bug", func() {
		_ = runInTx(context.Background(), tx, func(context.Context) error {
			panic("allocator bug")
		})
	})
	assert.True(t, tx.rolledBack, "a panicking transaction must release its locks")
	assert.False(t, tx.committed)
}
