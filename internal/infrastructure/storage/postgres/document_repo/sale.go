package document_repo

import (
	"context"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/sales"
	"backoffice/internal/infrastructure/storage/postgres"
)

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[*sales.Sale, sales.Line]
}

var _ sales.Repository = (*SaleRepo)(nil)

func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*sales.Sale, sales.Line](
			txm, "sale", "sales", "sale_date", "sale_lines", "sale_id",
			func() *sales.Sale { return &sales.Sale{} },
		),
	}
}

func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	for i := range sale.Lines {
		sale.Lines[i].SaleID = sale.ID
	}
	return r.Insert(ctx, sale, sale.Lines)
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	sale, err := r.Header(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Lines, err = r.Lines(ctx, saleID); err != nil {
		return nil, err
	}
	return sale, nil
}

// List returns headers only.
func (r *SaleRepo) List(ctx context.Context, f sales.Filter) ([]sales.Sale, error) {
	return Headers[sales.Sale](ctx, r.BaseDocumentRepo, r.ListQuery(f.SellerID, f.From, f.To, f.Limit, f.Offset))
}
