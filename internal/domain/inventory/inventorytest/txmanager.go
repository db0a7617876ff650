package inventorytest

import "context"

type txKey struct{}

// Snapshotter captures state that a rollback restores.
type Snapshotter interface {
	Snapshot() (restore func())
}

// TxManager runs fn directly, restoring every registered store when fn fails.
type TxManager struct {
	Stores    []Snapshotter
	Commits   int
	Rollbacks int
}

// NewTxManager returns a manager that snapshots the given stores per transaction.
func NewTxManager(stores ...Snapshotter) *TxManager {
	return &TxManager{Stores: stores}
}

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	restores := make([]func(), 0, len(m.Stores))
	for _, s := range m.Stores {
		restores = append(restores, s.Snapshot())
	}
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		for _, r := range restores {
			r()
		}
		m.Rollbacks++
		return err
	}
	m.Commits++
	return nil
}

// InTx reports whether ctx was produced by RunInTransaction.
func InTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}
