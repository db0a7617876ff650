// Package sellers manages sellers, their brand commission rules and account statements.
package sellers

import (
	"context"
	"strings"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
)

// Seller takes merchandise on account and earns a commission on it.
type Seller struct {
	entity.BaseEntity

	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone,omitempty"`
	Email string `db:"email" json:"email,omitempty"`

	// Commission is the base rate applied when no brand rule matches.
	Commission types.Percent `db:"commission" json:"commission"`
}

// NewSeller creates a seller.
func NewSeller(name, phone, email string, commission types.Percent) *Seller {
	return &Seller{
		BaseEntity: entity.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Phone:      strings.TrimSpace(phone),
		Email:      strings.TrimSpace(email),
		Commission: commission,
	}
}

func (s *Seller) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("seller name is required").WithDetail("field", "name")
	}
	if !types.ValidPercent(s.Commission) {
		return apperror.NewValidation("commission must be between 0 and 100").WithDetail("field", "commission")
	}
	return nil
}

// BrandCommission overrides a seller's base rate for one brand.
type BrandCommission struct {
	ID       id.ID         `db:"id" json:"id"`
	SellerID id.ID         `db:"seller_id" json:"sellerId"`
	Brand    string        `db:"brand" json:"brand"`
	Percent  types.Percent `db:"percent" json:"percent"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBrandCommission creates a rule with the brand in canonical form.
func NewBrandCommission(sellerID id.ID, brand string, pct types.Percent) *BrandCommission {
	now := time.Now().UTC()
	return &BrandCommission{
		ID:        id.New(),
		SellerID:  sellerID,
		Brand:     inventory.NormalizeBrand(brand),
		Percent:   pct,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *BrandCommission) Validate(ctx context.Context) error {
	if c.Brand == "" {
		return apperror.NewValidation("brand is required").WithDetail("field", "brand")
	}
	if !types.ValidPercent(c.Percent) {
		return apperror.NewValidation("commission must be between 0 and 100").WithDetail("field", "percent")
	}
	return nil
}

// RateCard resolves the commission rate of one seller.
type RateCard struct {
	Seller  Seller
	ByBrand map[string]types.Percent
}

// Resolve picks the rate for a line: a manual rate wins, then the seller's
// brand rule, then the seller's base rate.
func (r *RateCard) Resolve(brand string, manual *types.Percent) types.Percent {
	if manual != nil {
		return *manual
	}
	if pct, ok := r.ByBrand[inventory.NormalizeBrand(brand)]; ok {
		return pct
	}
	return r.Seller.Commission
}

// Totals are the raw sums a statement is computed from.
type Totals struct {
	SellerID   id.ID       `db:"seller_id" json:"sellerId"`
	SellerName string      `db:"seller_name" json:"sellerName"`
	Withdrawn  types.Money `db:"withdrawn" json:"withdrawn"`
	Returned   types.Money `db:"returned" json:"returned"`
	Paid       types.Money `db:"paid" json:"paid"`
	Bonuses    types.Money `db:"bonuses" json:"bonuses"`
}

// Statement is a seller's account: merchandise withdrawn net of commission,
// minus returns, payments and bonuses.
type Statement struct {
	Totals
	Balance types.Money `json:"balance"`
}

// NewStatement computes the balance from totals.
func NewStatement(t Totals) Statement {
	return Statement{
		Totals:  t,
		Balance: t.Withdrawn.Sub(t.Returned).Sub(t.Paid).Sub(t.Bonuses),
	}
}
