package dto

import (
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
)

type CreateProductRequest struct {
	Name          string         `json:"name" binding:"required"`
	Brand         string         `json:"brand"`
	PurchasePrice types.Money    `json:"purchasePrice"`
	SalePrice     types.Money    `json:"salePrice"`
	MinQuantity   types.Quantity `json:"minQuantity"`
}

func (r CreateProductRequest) ToDomain() *inventory.Product {
	return inventory.NewProduct(r.Name, r.Brand, r.PurchasePrice, r.SalePrice, r.MinQuantity)
}

// UpdateProductRequest changes catalog fields. Omitted fields keep their value.
type UpdateProductRequest struct {
	Name          *string         `json:"name"`
	Brand         *string         `json:"brand"`
	PurchasePrice *types.Money    `json:"purchasePrice"`
	SalePrice     *types.Money    `json:"salePrice"`
	MinQuantity   *types.Quantity `json:"minQuantity"`
}

func (r UpdateProductRequest) ApplyTo(p *inventory.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Brand != nil {
		p.Brand = *r.Brand
	}
	if r.PurchasePrice != nil {
		p.PurchasePrice = *r.PurchasePrice
	}
	if r.SalePrice != nil {
		p.SalePrice = *r.SalePrice
	}
	if r.MinQuantity != nil {
		p.MinQuantity = *r.MinQuantity
	}
}

// ProductResponse is a product with its valuation figures.
type ProductResponse struct {
	inventory.Product
	MarginPercent *types.Percent `json:"marginPercent"`
	StockValue    types.Money    `json:"stockValue"`
	Low           bool           `json:"low"`
}

func FromProduct(p *inventory.Product) ProductResponse {
	resp := ProductResponse{Product: *p, StockValue: p.StockValue(), Low: p.IsLow()}
	if m, ok := p.MarginPercent(); ok {
		resp.MarginPercent = &m
	}
	return resp
}

func FromProducts(ps []inventory.Product) []ProductResponse {
	out := make([]ProductResponse, len(ps))
	for i := range ps {
		out[i] = FromProduct(&ps[i])
	}
	return out
}
