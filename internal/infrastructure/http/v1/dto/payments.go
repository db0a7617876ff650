package dto

import (
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/payments"
)

type SellerPaymentRequest struct {
	SellerID id.ID           `json:"sellerId" binding:"required"`
	Date     *Date           `json:"date"`
	Amount   types.Money     `json:"amount"`
	Method   payments.Method `json:"method"`
	Note     string          `json:"note"`
}

func (r SellerPaymentRequest) ToDomain() *payments.SellerPayment {
	return r.ApplyTo(&payments.SellerPayment{BaseEntity: entity.NewBaseEntity()})
}

func (r SellerPaymentRequest) ApplyTo(p *payments.SellerPayment) *payments.SellerPayment {
	p.SellerID, p.Date, p.Amount, p.Method, p.Note = r.SellerID, TimeOf(r.Date), r.Amount, r.Method, r.Note
	return p
}

type BonusRequest struct {
	SellerID id.ID       `json:"sellerId" binding:"required"`
	Date     *Date       `json:"date"`
	Amount   types.Money `json:"amount"`
	Reason   string      `json:"reason"`
}

func (r BonusRequest) ToDomain() *payments.Bonus {
	return r.ApplyTo(&payments.Bonus{BaseEntity: entity.NewBaseEntity()})
}

func (r BonusRequest) ApplyTo(b *payments.Bonus) *payments.Bonus {
	b.SellerID, b.Date, b.Amount, b.Reason = r.SellerID, TimeOf(r.Date), r.Amount, r.Reason
	return b
}

type SupplierPaymentRequest struct {
	Supplier          string          `json:"supplier" binding:"required"`
	Date              *Date           `json:"date"`
	Method            payments.Method `json:"method"`
	Gross             types.Money     `json:"gross"`
	CommissionPercent types.Percent   `json:"commissionPercent"`
	Note              string          `json:"note"`
}

func (r SupplierPaymentRequest) ToDomain() *payments.SupplierPayment {
	return r.ApplyTo(&payments.SupplierPayment{BaseEntity: entity.NewBaseEntity()})
}

func (r SupplierPaymentRequest) ApplyTo(p *payments.SupplierPayment) *payments.SupplierPayment {
	p.Supplier, p.Date, p.Method, p.Note = r.Supplier, TimeOf(r.Date), r.Method, r.Note
	p.Gross, p.CommissionPercent = r.Gross, r.CommissionPercent
	return p
}

type ExpenseRequest struct {
	Kind        string      `json:"kind" binding:"required"`
	Description string      `json:"description"`
	Date        *Date       `json:"date"`
	Amount      types.Money `json:"amount"`
}

func (r ExpenseRequest) ToDomain() *payments.Expense {
	return r.ApplyTo(&payments.Expense{BaseEntity: entity.NewBaseEntity()})
}

func (r ExpenseRequest) ApplyTo(e *payments.Expense) *payments.Expense {
	e.Kind, e.Description, e.Date, e.Amount = r.Kind, r.Description, TimeOf(r.Date), r.Amount
	return e
}
