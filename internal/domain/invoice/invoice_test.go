package invoice

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/sales"
	"backoffice/internal/domain/sellers"
)

type saleSource map[id.ID]*sales.Sale

func (s saleSource) Get(_ context.Context, saleID id.ID) (*sales.Sale, error) {
	if sale, ok := s[saleID]; ok {
		return sale, nil
	}
	return nil, apperror.NewNotFound("sale", saleID)
}

type sellerSource struct{ seller *sellers.Seller }

func (s sellerSource) Get(context.Context, id.ID) (*sellers.Seller, error) { return s.seller, nil }
func (s sellerSource) Statement(context.Context, id.ID) (*sellers.Statement, error) {
	st := sellers.NewStatement(sellers.Totals{SellerID: s.seller.ID, Withdrawn: types.MustMoney("180")})
	return &st, nil
}

func fixture(t *testing.T) (*sales.Sale, *sellers.Seller) {
	t.Helper()
	seller := sellers.NewSeller("Ana", "555-0101", "", types.MustMoney("10"))
	product := inventory.NewProduct("Shampoo", "acme", types.MustMoney("5"), types.MustMoney("20"), 0)

	sale := sales.NewSale(seller.ID, "Kiosk", time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC))
	sale.Number = "V-2026-00007"
	line := sale.AddLine(product, 10, types.MustMoney("20"), types.MustMoney("10"))
	line.Allocations = []inventory.Allocation{{LotID: id.New(), Quantity: 10, Expiry: types.NoExpiry()}}
	sale.CalculateTotals()
	return sale, seller
}

func TestNewSummary(t *testing.T) {
	sale, seller := fixture(t)

	sum := NewSummary(sale, seller, nil)

	assert.Equal(t, "V-2026-00007", sum.Number)
	assert.Equal(t, "555-0101", sum.Seller.Phone)
	require.Len(t, sum.Lines, 1)
	l := sum.Lines[0]
	assert.True(t, l.UnitNet.Equal(types.MustMoney("18")), l.UnitNet.String())
	assert.True(t, l.Subtotal.Equal(types.MustMoney("180")), l.Subtotal.String())
	assert.Len(t, l.Allocations, 1)
	assert.True(t, sum.Total.Equal(types.MustMoney("180")))
}

func TestService_Render(t *testing.T) {
	sale, seller := fixture(t)
	svc := NewService(saleSource{sale.ID: sale}, sellerSource{seller}, JSONRenderer{})

	doc, err := svc.Render(context.Background(), sale.ID)
	require.NoError(t, err)

	assert.Equal(t, "invoice_V-2026-00007.json", doc.Filename)
	assert.Equal(t, "application/json", doc.ContentType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(doc.Body, &decoded))
	assert.Contains(t, decoded, "statement")
	assert.Equal(t, "Ana", decoded["seller"].(map[string]any)["name"])
}

func TestService_UnknownSale(t *testing.T) {
	sale, seller := fixture(t)
	svc := NewService(saleSource{}, sellerSource{seller}, JSONRenderer{})

	_, err := svc.Summary(context.Background(), sale.ID)
	assert.True(t, apperror.IsNotFound(err))
}
