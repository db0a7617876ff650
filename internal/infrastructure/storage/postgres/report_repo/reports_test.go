package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain/reports"
)

var march = reports.MonthOf(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))

func TestSeriesQuery(t *testing.T) {
	sql, args, err := NewReportRepo(nil).SeriesQuery("YYYY-MM", march).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT to_char(sale_date, 'YYYY-MM') AS bucket, SUM(total) AS total FROM sales WHERE (sale_date >= $1 AND sale_date < $2) GROUP BY bucket ORDER BY bucket",
		sql)
	assert.Equal(t, []any{march.From, march.To}, args)
}

func TestTopSellersQuery(t *testing.T) {
	sql, _, err := NewReportRepo(nil).TopSellersQuery(march).Limit(10).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "JOIN sellers v ON v.id = s.seller_id")
	assert.Contains(t, sql, "GROUP BY v.id, v.name ORDER BY total DESC, v.name LIMIT 10")
}

func TestReturnRanking(t *testing.T) {
	r := NewReportRepo(nil)
	sql, _, err := r.lineRanking("returns", "return_lines", "return_id", "return_date", march).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM returns h JOIN return_lines l ON l.return_id = h.id WHERE (h.return_date >= $1 AND h.return_date < $2)")
}

func TestTotalsQuery(t *testing.T) {
	sql, args := NewReportRepo(nil).TotalsQuery(march)

	for _, col := range []string{"AS sales", "AS expenses", "AS returns", "AS bonuses", "AS payments", "AS cogs"} {
		assert.Contains(t, sql, col)
	}
	assert.Len(t, args, 2)
}
