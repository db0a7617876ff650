package document_repo

import (
	"context"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/returns"
	"backoffice/internal/infrastructure/storage/postgres"
)

// ReturnRepo implements returns.Repository.
type ReturnRepo struct {
	*BaseDocumentRepo[*returns.Return, returns.Line]
}

var _ returns.Repository = (*ReturnRepo)(nil)

func NewReturnRepo(txm *postgres.TxManager) *ReturnRepo {
	return &ReturnRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*returns.Return, returns.Line](
			txm, "return", "returns", "return_date", "return_lines", "return_id",
			func() *returns.Return { return &returns.Return{} },
		),
	}
}

func (r *ReturnRepo) Create(ctx context.Context, ret *returns.Return) error {
	for i := range ret.Lines {
		ret.Lines[i].ReturnID = ret.ID
	}
	return r.Insert(ctx, ret, ret.Lines)
}

func (r *ReturnRepo) GetByID(ctx context.Context, returnID id.ID) (*returns.Return, error) {
	ret, err := r.Header(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Lines, err = r.Lines(ctx, returnID); err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *ReturnRepo) List(ctx context.Context, f returns.Filter) ([]returns.Return, error) {
	return Headers[returns.Return](ctx, r.BaseDocumentRepo, r.ListQuery(f.SellerID, f.From, f.To, f.Limit, f.Offset))
}

// UpdateHeader writes the editable header fields.
func (r *ReturnRepo) UpdateHeader(ctx context.Context, ret *returns.Return) error {
	return r.UpdateColumns(ctx, ret.ID, map[string]any{
		"client_name": ret.ClientName,
		"reason":      ret.Reason,
		"return_date": ret.Date,
	})
}
