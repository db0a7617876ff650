// Package invoice assembles the printable summary of a sale.
package invoice

import (
	"context"
	"fmt"
	"time"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/sales"
	"backoffice/internal/domain/sellers"
)

// Line is one priced product of the invoice.
type Line struct {
	Brand       string                 `json:"brand"`
	Product     string                 `json:"product"`
	Quantity    types.Quantity         `json:"quantity"`
	Percent     types.Percent          `json:"percent"`
	UnitPrice   types.Money            `json:"unitPrice"`
	UnitNet     types.Money            `json:"unitNet"`
	Subtotal    types.Money            `json:"subtotal"`
	Allocations []inventory.Allocation `json:"allocations,omitempty"`
}

// Seller identifies who withdrew the merchandise.
type Seller struct {
	ID    id.ID  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Summary is everything printed on an invoice.
type Summary struct {
	SaleID    id.ID              `json:"saleId"`
	Number    string             `json:"number"`
	Date      time.Time          `json:"date"`
	Client    string             `json:"client"`
	Seller    Seller             `json:"seller"`
	Lines     []Line             `json:"lines"`
	Gross     types.Money        `json:"gross"`
	Total     types.Money        `json:"total"`
	Statement *sellers.Statement `json:"statement,omitempty"`
}

// Document is a rendered invoice.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Renderer turns a summary into a document.
type Renderer interface {
	Render(ctx context.Context, s *Summary) (*Document, error)
}

// SaleSource loads sales with their allocations.
type SaleSource interface {
	Get(ctx context.Context, saleID id.ID) (*sales.Sale, error)
}

// SellerSource loads sellers and their account.
type SellerSource interface {
	Get(ctx context.Context, sellerID id.ID) (*sellers.Seller, error)
	Statement(ctx context.Context, sellerID id.ID) (*sellers.Statement, error)
}

// Service builds invoices.
type Service struct {
	sales    SaleSource
	sellers  SellerSource
	renderer Renderer
}

func NewService(sales SaleSource, sellers SellerSource, renderer Renderer) *Service {
	return &Service{sales: sales, sellers: sellers, renderer: renderer}
}

// Summary builds the invoice summary of a sale.
func (s *Service) Summary(ctx context.Context, saleID id.ID) (*Summary, error) {
	sale, err := s.sales.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}
	seller, err := s.sellers.Get(ctx, sale.SellerID)
	if err != nil {
		return nil, fmt.Errorf("load seller: %w", err)
	}
	st, err := s.sellers.Statement(ctx, sale.SellerID)
	if err != nil {
		return nil, fmt.Errorf("load statement: %w", err)
	}
	return NewSummary(sale, seller, st), nil
}

// Render builds and renders the invoice of a sale.
func (s *Service) Render(ctx context.Context, saleID id.ID) (*Document, error) {
	sum, err := s.Summary(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, sum)
}

// NewSummary maps a sale onto its invoice. st may be nil.
func NewSummary(sale *sales.Sale, seller *sellers.Seller, st *sellers.Statement) *Summary {
	sum := &Summary{
		SaleID:    sale.ID,
		Number:    sale.Number,
		Date:      sale.Date,
		Client:    sale.ClientName,
		Seller:    Seller{ID: seller.ID, Name: seller.Name, Phone: seller.Phone},
		Lines:     make([]Line, 0, len(sale.Lines)),
		Gross:     sale.Gross,
		Total:     sale.Total,
		Statement: st,
	}
	for i := range sale.Lines {
		l := &sale.Lines[i]
		sum.Lines = append(sum.Lines, Line{
			Brand:       l.Brand,
			Product:     l.ProductName,
			Quantity:    l.Quantity,
			Percent:     l.Percent,
			UnitPrice:   l.Price,
			UnitNet:     l.UnitNet(),
			Subtotal:    l.Net(),
			Allocations: l.Allocations,
		})
	}
	return sum
}
