// Package payments records money movements outside of sales: payments and
// bonuses to sellers, payments to suppliers and business expenses.
package payments

import (
	"context"
	"strings"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// Method is how money changed hands.
type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodCheque   Method = "cheque"
)

// Entry is implemented by every record kind of this package.
type Entry interface {
	entity.Validatable
	EntryID() id.ID
	// Normalize fills defaults before validation.
	Normalize(today time.Time)
	Touch()
}

func requirePositive(amount types.Money, field string) error {
	if !amount.IsPositive() {
		return apperror.NewValidation(field+" must be greater than zero").WithDetail("field", field)
	}
	return nil
}

func defaultDate(d *time.Time, today time.Time) {
	if d.IsZero() {
		*d = today
	} else {
		*d = entity.DayOf(*d)
	}
}

// SellerPayment is money a seller paid in against their account.
type SellerPayment struct {
	entity.BaseEntity

	SellerID id.ID       `db:"seller_id" json:"sellerId"`
	Date     time.Time   `db:"payment_date" json:"date"`
	Amount   types.Money `db:"amount" json:"amount"`
	Method   Method      `db:"method" json:"method"`
	Note     string      `db:"note" json:"note,omitempty"`
}

func (p *SellerPayment) EntryID() id.ID { return p.ID }

func (p *SellerPayment) Normalize(today time.Time) {
	defaultDate(&p.Date, today)
	if p.Method == "" {
		p.Method = MethodCash
	}
	p.Note = strings.TrimSpace(p.Note)
}

func (p *SellerPayment) Validate(ctx context.Context) error {
	if id.IsNil(p.SellerID) {
		return apperror.NewValidation("seller is required").WithDetail("field", "sellerId")
	}
	if p.Method != MethodCash && p.Method != MethodTransfer {
		return apperror.NewValidation("method must be cash or transfer").WithDetail("field", "method")
	}
	return requirePositive(p.Amount, "amount")
}

// Bonus is a credit granted to a seller.
type Bonus struct {
	entity.BaseEntity

	SellerID id.ID       `db:"seller_id" json:"sellerId"`
	Date     time.Time   `db:"bonus_date" json:"date"`
	Amount   types.Money `db:"amount" json:"amount"`
	Reason   string      `db:"reason" json:"reason,omitempty"`
}

func (b *Bonus) EntryID() id.ID { return b.ID }

func (b *Bonus) Normalize(today time.Time) {
	defaultDate(&b.Date, today)
	b.Reason = strings.TrimSpace(b.Reason)
}

func (b *Bonus) Validate(ctx context.Context) error {
	if id.IsNil(b.SellerID) {
		return apperror.NewValidation("seller is required").WithDetail("field", "sellerId")
	}
	return requirePositive(b.Amount, "amount")
}

// SupplierPayment is money paid to a supplier. Cheques may carry a
// discount commission that reduces the net amount.
type SupplierPayment struct {
	entity.BaseEntity

	Supplier          string        `db:"supplier" json:"supplier"`
	Date              time.Time     `db:"payment_date" json:"date"`
	Method            Method        `db:"method" json:"method"`
	Gross             types.Money   `db:"gross" json:"gross"`
	CommissionPercent types.Percent `db:"commission_percent" json:"commissionPercent"`
	Net               types.Money   `db:"net" json:"net"`
	Note              string        `db:"note" json:"note,omitempty"`
}

func (p *SupplierPayment) EntryID() id.ID { return p.ID }

// Normalize computes Net. Only cheques keep a commission.
func (p *SupplierPayment) Normalize(today time.Time) {
	defaultDate(&p.Date, today)
	p.Supplier = strings.TrimSpace(p.Supplier)
	p.Note = strings.TrimSpace(p.Note)
	if p.Method == "" {
		p.Method = MethodCash
	}
	if p.Method != MethodCheque {
		p.CommissionPercent = types.Zero()
	}
	p.Net = p.Gross.Sub(types.PercentOf(p.Gross, p.CommissionPercent))
}

func (p *SupplierPayment) Validate(ctx context.Context) error {
	if p.Supplier == "" {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplier")
	}
	switch p.Method {
	case MethodCash, MethodTransfer, MethodCheque:
	default:
		return apperror.NewValidation("method must be cash, transfer or cheque").WithDetail("field", "method")
	}
	if !types.ValidPercent(p.CommissionPercent) {
		return apperror.NewValidation("commission must be between 0 and 100").WithDetail("field", "commissionPercent")
	}
	return requirePositive(p.Gross, "gross")
}

// Expense is a business cost such as fuel or rent.
type Expense struct {
	entity.BaseEntity

	Kind        string      `db:"kind" json:"kind"`
	Description string      `db:"description" json:"description,omitempty"`
	Date        time.Time   `db:"expense_date" json:"date"`
	Amount      types.Money `db:"amount" json:"amount"`
}

func (e *Expense) EntryID() id.ID { return e.ID }

func (e *Expense) Normalize(today time.Time) {
	defaultDate(&e.Date, today)
	e.Kind = strings.TrimSpace(e.Kind)
	e.Description = strings.TrimSpace(e.Description)
}

func (e *Expense) Validate(ctx context.Context) error {
	if e.Kind == "" {
		return apperror.NewValidation("expense type is required").WithDetail("field", "kind")
	}
	return requirePositive(e.Amount, "amount")
}

// Filter narrows listings. SellerID is ignored by kinds without a seller.
type Filter struct {
	SellerID *id.ID
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}
