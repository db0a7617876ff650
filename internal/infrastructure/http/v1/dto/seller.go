package dto

import (
	"backoffice/internal/core/types"
	"backoffice/internal/domain/sellers"
)

type CreateSellerRequest struct {
	Name       string        `json:"name" binding:"required"`
	Phone      string        `json:"phone"`
	Email      string        `json:"email"`
	Commission types.Percent `json:"commission"`
}

func (r CreateSellerRequest) ToDomain() *sellers.Seller {
	return sellers.NewSeller(r.Name, r.Phone, r.Email, r.Commission)
}

type UpdateSellerRequest struct {
	Name       *string        `json:"name"`
	Phone      *string        `json:"phone"`
	Email      *string        `json:"email"`
	Commission *types.Percent `json:"commission"`
}

func (r UpdateSellerRequest) ApplyTo(s *sellers.Seller) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Phone != nil {
		s.Phone = *r.Phone
	}
	if r.Email != nil {
		s.Email = *r.Email
	}
	if r.Commission != nil {
		s.Commission = *r.Commission
	}
}

type BrandCommissionRequest struct {
	Brand   string        `json:"brand" binding:"required"`
	Percent types.Percent `json:"percent"`
}
