package register_repo

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/infrastructure/storage/postgres"
)

func TestCandidateLotsQuery(t *testing.T) {
	r := NewLedgerRepo(nil)
	productID := id.New()

	sql, args, err := r.CandidateLotsQuery(productID, 200, 200).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM stock_movements WHERE record_type = $1 AND product_id = $2 AND (remaining IS NULL OR remaining > $3)")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY expiry ASC NULLS LAST, created_at, seq LIMIT 200 OFFSET 200 FOR UPDATE"), sql)
	assert.Equal(t, []any{entity.RecordTypeReceipt, productID.String(), 0}, args)
}

func TestCandidateLotsQuery_FirstPage(t *testing.T) {
	sql, _, err := NewLedgerRepo(nil).CandidateLotsQuery(id.New(), 0, 50).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "OFFSET")
	assert.Contains(t, sql, "LIMIT 50 FOR UPDATE")
}

func TestDecrementQueries(t *testing.T) {
	r := NewLedgerRepo(nil)
	lotID := id.New()

	queries, err := r.DecrementQueries([]inventory.LotDecrement{{LotID: lotID, Quantity: 4}})
	require.NoError(t, err)
	require.Len(t, queries, 1)

	q := queries[0]
	assert.Equal(t, "UPDATE stock_movements SET remaining = remaining - $1 WHERE id = $2 AND remaining >= $3", q.SQL)
	assert.Equal(t, []any{types.Quantity(4), lotID.String(), types.Quantity(4)}, q.Args)
	assert.EqualValues(t, 1, q.Expect)
}

func TestAuditQuery(t *testing.T) {
	productID := id.New()
	sql, args, err := NewLedgerRepo(nil).AuditQuery(&productID).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "LEFT JOIN stock_movements m ON m.product_id = p.id AND m.record_type = 'receipt'")
	assert.Contains(t, sql, "WHERE p.id = $1 GROUP BY p.id, p.name, p.quantity")
	assert.Equal(t, []any{productID.String()}, args)
}

func TestDepletionColumns(t *testing.T) {
	r := NewLedgerRepo(nil)
	d := inventory.Depletion{
		MovementBase: entity.NewMovementBase(id.New(), entity.RecorderSale, 2, entity.Today(), entity.RecordTypeExpense),
		ProductID:    id.New(),
		LotID:        id.New(),
		Quantity:     3,
		Expiry:       types.NoExpiry(),
	}

	row := postgres.Values(&d, r.depletionCols)

	require.Len(t, row, len(r.depletionCols))
	assert.Contains(t, r.depletionCols, "lot_id")
	assert.NotContains(t, r.depletionCols, "seq")
	assert.NotContains(t, r.depletionCols, "remaining")
}

func TestLockProduct_RequiresTransaction(t *testing.T) {
	r := NewLedgerRepo(postgres.NewTxManager(&postgres.Pool{}))

	_, err := r.LockProduct(context.Background(), id.New())
	assert.ErrorContains(t, err, "requires a transaction")
}
