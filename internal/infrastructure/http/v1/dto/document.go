package dto

import (
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/returns"
	"backoffice/internal/domain/sales"
)

// LineRequest is one requested line of a sale or return. Price defaults to
// the product sale price and Percent to the seller's commission rule.
type LineRequest struct {
	ProductID id.ID          `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity"`
	Price     *types.Money   `json:"price"`
	Percent   *types.Percent `json:"percent"`
}

type CreateSaleRequest struct {
	SellerID   id.ID         `json:"sellerId" binding:"required"`
	ClientName string        `json:"clientName"`
	Date       *Date         `json:"date"`
	Lines      []LineRequest `json:"lines"`
}

func (r CreateSaleRequest) ToDomain() sales.RegisterInput {
	in := sales.RegisterInput{
		SellerID:   r.SellerID,
		ClientName: r.ClientName,
		Date:       TimeOf(r.Date),
		Lines:      make([]sales.LineInput, len(r.Lines)),
	}
	for i, l := range r.Lines {
		in.Lines[i] = sales.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price, Percent: l.Percent}
	}
	return in
}

type CreateReturnRequest struct {
	SellerID   id.ID         `json:"sellerId" binding:"required"`
	ClientName string        `json:"clientName"`
	Reason     string        `json:"reason"`
	Date       *Date         `json:"date"`
	Lines      []LineRequest `json:"lines"`
}

func (r CreateReturnRequest) ToDomain() returns.RegisterInput {
	in := returns.RegisterInput{
		SellerID:   r.SellerID,
		ClientName: r.ClientName,
		Reason:     r.Reason,
		Date:       TimeOf(r.Date),
		Lines:      make([]returns.LineInput, len(r.Lines)),
	}
	for i, l := range r.Lines {
		in.Lines[i] = returns.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price, Percent: l.Percent}
	}
	return in
}

type UpdateReturnRequest struct {
	ClientName *string `json:"clientName"`
	Reason     *string `json:"reason"`
	Date       *Date   `json:"date"`
}

func (r UpdateReturnRequest) ToDomain() returns.HeaderUpdate {
	upd := returns.HeaderUpdate{ClientName: r.ClientName, Reason: r.Reason}
	if r.Date != nil && !r.Date.IsZero() {
		t := r.Date.Time
		upd.Date = &t
	}
	return upd
}
