// Package inventory owns products, their stock lots and the FEFO allocator
// that depletes those lots.
package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/types"
)

// Product is a sellable item. Quantity is the cached total of its tracked lots.
type Product struct {
	entity.BaseEntity

	Name          string         `db:"name" json:"name"`
	Brand         string         `db:"brand" json:"brand"`
	PurchasePrice types.Money    `db:"purchase_price" json:"purchasePrice"`
	SalePrice     types.Money    `db:"sale_price" json:"salePrice"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	MinQuantity   types.Quantity `db:"min_quantity" json:"minQuantity"`
}

// NewProduct creates a product with no stock.
func NewProduct(name, brand string, purchase, sale types.Money, minQty types.Quantity) *Product {
	return &Product{
		BaseEntity:    entity.NewBaseEntity(),
		Name:          strings.TrimSpace(name),
		Brand:         strings.TrimSpace(brand),
		PurchasePrice: purchase,
		SalePrice:     sale,
		MinQuantity:   minQty,
	}
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(p.Brand) == "" {
		return apperror.NewValidation("product brand is required").WithDetail("field", "brand")
	}
	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").WithDetail("field", "purchasePrice")
	}
	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").WithDetail("field", "salePrice")
	}
	if p.MinQuantity.IsNegative() {
		return apperror.NewValidation("minimum quantity cannot be negative").WithDetail("field", "minQuantity")
	}
	return nil
}

// MarginPercent returns (sale - purchase) / purchase * 100, rounded to 2 places.
// ok is false when the purchase price is zero.
func (p *Product) MarginPercent() (margin types.Percent, ok bool) {
	if p.PurchasePrice.IsZero() {
		return decimal.Zero, false
	}
	return p.SalePrice.Sub(p.PurchasePrice).
		Div(p.PurchasePrice).
		Mul(decimal.NewFromInt(100)).
		Round(2), true
}

// StockValue returns quantity * purchase price.
func (p *Product) StockValue() types.Money {
	return types.LineTotal(p.Quantity, p.PurchasePrice)
}

// IsLow reports whether the product is at or below its reorder threshold.
func (p *Product) IsLow() bool {
	return p.Quantity <= p.MinQuantity
}

// IsNearLow reports whether the product is above the threshold but within margin of it.
func (p *Product) IsNearLow(margin types.Quantity) bool {
	return p.Quantity > p.MinQuantity && p.Quantity <= p.MinQuantity+margin
}

// NormalizeBrand is the canonical form used to match brands across records.
func NormalizeBrand(brand string) string {
	return strings.ToUpper(strings.TrimSpace(brand))
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	// Brand matches case-insensitively.
	Brand string
	// Search matches name or brand as a substring.
	Search string
	Limit  int
	Offset int
}
