// Package returns registers merchandise a seller brings back.
//
// A return restores only the product's cached total. The lots the stock was
// originally taken from are not replenished.
package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
)

// Return is the header of a merchandise return.
type Return struct {
	entity.BaseEntity

	Number     string    `db:"number" json:"number"`
	SellerID   id.ID     `db:"seller_id" json:"sellerId"`
	ClientName string    `db:"client_name" json:"clientName"`
	Reason     string    `db:"reason" json:"reason,omitempty"`
	Date       time.Time `db:"return_date" json:"date"`

	Gross      types.Money `db:"gross" json:"gross"`
	Commission types.Money `db:"commission" json:"commission"`
	Total      types.Money `db:"total" json:"total"`

	Lines []Line `db:"-" json:"lines"`
}

type Line struct {
	ReturnID    id.ID          `db:"return_id" json:"-"`
	LineNo      int            `db:"line_no" json:"lineNo"`
	ProductID   id.ID          `db:"product_id" json:"productId"`
	ProductName string         `db:"product_name" json:"productName"`
	Brand       string         `db:"brand" json:"brand"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	Price       types.Money    `db:"price" json:"price"`
	Percent     types.Percent  `db:"percent" json:"percent"`
	Subtotal    types.Money    `db:"subtotal" json:"subtotal"`
	Commission  types.Money    `db:"commission" json:"commission"`
}

func NewReturn(sellerID id.ID, clientName, reason string, date time.Time) *Return {
	return &Return{
		BaseEntity: entity.NewBaseEntity(),
		SellerID:   sellerID,
		ClientName: strings.TrimSpace(clientName),
		Reason:     strings.TrimSpace(reason),
		Date:       entity.DayOf(date),
		Gross:      types.Zero(),
		Commission: types.Zero(),
		Total:      types.Zero(),
	}
}

// AddLine prices a line the same way a sale line is priced.
func (r *Return) AddLine(p *inventory.Product, qty types.Quantity, price types.Money, pct types.Percent) {
	subtotal := types.LineTotal(qty, price)
	r.Lines = append(r.Lines, Line{
		ReturnID:    r.ID,
		LineNo:      len(r.Lines) + 1,
		ProductID:   p.ID,
		ProductName: p.Name,
		Brand:       p.Brand,
		Quantity:    qty,
		Price:       price,
		Percent:     pct,
		Subtotal:    subtotal,
		Commission:  types.PercentOf(subtotal, pct),
	})

	gross, commission := types.Zero(), types.Zero()
	for _, l := range r.Lines {
		gross = gross.Add(l.Subtotal)
		commission = commission.Add(l.Commission)
	}
	r.Gross, r.Commission, r.Total = gross, commission, gross.Sub(commission)
}

func (r *Return) Validate(ctx context.Context) error {
	if id.IsNil(r.SellerID) {
		return apperror.NewValidation("seller is required").WithDetail("field", "sellerId")
	}
	if len(r.Lines) == 0 {
		return apperror.NewValidation("return must have at least one line").WithDetail("field", "lines")
	}
	for i, l := range r.Lines {
		if l.Price.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("line %d: price cannot be negative", i+1))
		}
		if !types.ValidPercent(l.Percent) {
			return apperror.NewValidation(fmt.Sprintf("line %d: commission must be between 0 and 100", i+1))
		}
	}
	return nil
}

// HeaderUpdate changes the editable header fields of a return.
type HeaderUpdate struct {
	ClientName *string
	Reason     *string
	Date       *time.Time
}

type Filter struct {
	SellerID *id.ID
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, r *Return) error
	GetByID(ctx context.Context, returnID id.ID) (*Return, error)
	List(ctx context.Context, filter Filter) ([]Return, error)
	UpdateHeader(ctx context.Context, r *Return) error
	Delete(ctx context.Context, returnID id.ID) error
}
