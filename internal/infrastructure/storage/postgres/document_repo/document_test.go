package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/sales"
)

func TestSaleInsertQueries(t *testing.T) {
	r := NewSaleRepo(nil)
	sale := sales.NewSale(id.New(), "Kiosk", time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC))
	sale.Number = "V-2026-00001"
	p := inventory.NewProduct("Soap", "ACME", types.MustMoney("1"), types.MustMoney("2"), 0)
	sale.AddLine(p, 2, types.MustMoney("2"), types.MustMoney("10"))
	sale.AddLine(p, 1, types.MustMoney("2"), types.MustMoney("10"))

	queries, err := r.InsertQueries(sale, sale.Lines)
	require.NoError(t, err)
	require.Len(t, queries, 2)

	assert.Contains(t, queries[0].SQL, "INSERT INTO sales (id,created_at,updated_at,number,seller_id,client_name,sale_date,gross,commission,total)")
	assert.EqualValues(t, 1, queries[0].Expect)
	assert.Contains(t, queries[1].SQL, "INSERT INTO sale_lines")
	assert.Contains(t, queries[1].SQL, "($1,$2,$3,$4,$5,$6,$7,$8,$9,$10),($11,")
	assert.EqualValues(t, 2, queries[1].Expect)
}

func TestSaleInsertQueries_NoLines(t *testing.T) {
	queries, err := NewSaleRepo(nil).InsertQueries(sales.NewSale(id.New(), "", time.Now()), nil)
	require.NoError(t, err)
	assert.Len(t, queries, 1)
}

func TestListQuery(t *testing.T) {
	r := NewReturnRepo(nil)
	sellerID := id.New()
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	sql, args, err := r.ListQuery(&sellerID, nil, &to, 10, 0).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM returns WHERE seller_id = $1 AND return_date <= $2 ORDER BY return_date DESC, number DESC LIMIT 10")
	assert.Equal(t, []any{sellerID.String(), to}, args)
}
