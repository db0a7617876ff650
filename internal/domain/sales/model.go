// Package sales registers sales: it prices lines with the seller's commission
// and consumes stock FEFO, all inside one transaction.
package sales

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
)

// Sale is merchandise handed to a seller, valued net of commission.
type Sale struct {
	entity.BaseEntity

	Number     string    `db:"number" json:"number"`
	SellerID   id.ID     `db:"seller_id" json:"sellerId"`
	ClientName string    `db:"client_name" json:"clientName"`
	Date       time.Time `db:"sale_date" json:"date"`

	Gross      types.Money `db:"gross" json:"gross"`
	Commission types.Money `db:"commission" json:"commission"`
	Total      types.Money `db:"total" json:"total"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one product on a sale.
type Line struct {
	SaleID      id.ID          `db:"sale_id" json:"-"`
	LineNo      int            `db:"line_no" json:"lineNo"`
	ProductID   id.ID          `db:"product_id" json:"productId"`
	ProductName string         `db:"product_name" json:"productName"`
	Brand       string         `db:"brand" json:"brand"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	Price       types.Money    `db:"price" json:"price"`
	Percent     types.Percent  `db:"percent" json:"percent"`
	Subtotal    types.Money    `db:"subtotal" json:"subtotal"`
	Commission  types.Money    `db:"commission" json:"commission"`

	Allocations []inventory.Allocation `db:"-" json:"allocations,omitempty"`
}

// Net is the line value after commission.
func (l *Line) Net() types.Money {
	return l.Subtotal.Sub(l.Commission)
}

// UnitNet is the unit price after commission.
func (l *Line) UnitNet() types.Money {
	return l.Price.Sub(types.PercentOf(l.Price, l.Percent))
}

// NewSale creates an empty sale.
func NewSale(sellerID id.ID, clientName string, date time.Time) *Sale {
	return &Sale{
		BaseEntity: entity.NewBaseEntity(),
		SellerID:   sellerID,
		ClientName: clientName,
		Date:       entity.DayOf(date),
		Gross:      types.Zero(),
		Commission: types.Zero(),
		Total:      types.Zero(),
	}
}

// AddLine prices a line and appends it.
func (s *Sale) AddLine(p *inventory.Product, qty types.Quantity, price types.Money, pct types.Percent) *Line {
	subtotal := types.LineTotal(qty, price)
	s.Lines = append(s.Lines, Line{
		SaleID:      s.ID,
		LineNo:      len(s.Lines) + 1,
		ProductID:   p.ID,
		ProductName: p.Name,
		Brand:       p.Brand,
		Quantity:    qty,
		Price:       price,
		Percent:     pct,
		Subtotal:    subtotal,
		Commission:  types.PercentOf(subtotal, pct),
	})
	s.CalculateTotals()
	return &s.Lines[len(s.Lines)-1]
}

// CalculateTotals recomputes header amounts from lines.
func (s *Sale) CalculateTotals() {
	gross, commission := types.Zero(), types.Zero()
	for i := range s.Lines {
		gross = gross.Add(s.Lines[i].Subtotal)
		commission = commission.Add(s.Lines[i].Commission)
	}
	s.Gross = gross
	s.Commission = commission
	s.Total = gross.Sub(commission)
}

// Validate checks sale invariants.
func (s *Sale) Validate(ctx context.Context) error {
	if id.IsNil(s.SellerID) {
		return apperror.NewValidation("seller is required").WithDetail("field", "sellerId")
	}
	if len(s.Lines) == 0 {
		return apperror.NewValidation("sale must have at least one line").WithDetail("field", "lines")
	}
	for i, line := range s.Lines {
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be positive", i+1)).
				WithDetail("field", fmt.Sprintf("lines[%d].quantity", i))
		}
		if line.Price.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("line %d: price cannot be negative", i+1)).
				WithDetail("field", fmt.Sprintf("lines[%d].price", i))
		}
		if !types.ValidPercent(line.Percent) {
			return apperror.NewValidation(fmt.Sprintf("line %d: commission must be between 0 and 100", i+1)).
				WithDetail("field", fmt.Sprintf("lines[%d].percent", i))
		}
	}
	return nil
}

// Filter narrows sale listings.
type Filter struct {
	SellerID *id.ID
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}
