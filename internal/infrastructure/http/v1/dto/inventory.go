package dto

import (
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
)

// ReceiveRequest opens a lot. Expiry is "YYYY-MM-DD" or null.
type ReceiveRequest struct {
	Quantity types.Quantity `json:"quantity"`
	Expiry   types.Expiry   `json:"expiry"`
	Code     string         `json:"code"`
	Date     *Date          `json:"date"`
}

func (r ReceiveRequest) ToDomain() inventory.ReceiveInput {
	return inventory.ReceiveInput{
		Quantity: r.Quantity,
		Expiry:   r.Expiry,
		Code:     r.Code,
		Date:     TimeOf(r.Date),
	}
}

type StockLevelsResponse struct {
	Low  []ProductResponse `json:"low"`
	Near []ProductResponse `json:"near"`
}

type ExpiredResponse struct {
	Lots []inventory.ExpiringLot `json:"lots"`
	Loss types.Money             `json:"loss"`
}

// AuditResponse lists ledger audit rows with the drifting subset counted.
type AuditResponse struct {
	Rows     []AuditRow `json:"rows"`
	Drifting int        `json:"drifting"`
}

type AuditRow struct {
	inventory.AuditRow
	Drift      types.Quantity `json:"drift"`
	Consistent bool           `json:"consistent"`
}

func FromAudit(rows []inventory.AuditRow) AuditResponse {
	resp := AuditResponse{Rows: make([]AuditRow, len(rows))}
	for i, r := range rows {
		resp.Rows[i] = AuditRow{AuditRow: r, Drift: r.Drift(), Consistent: r.Consistent()}
		if !r.Consistent() {
			resp.Drifting++
		}
	}
	return resp
}

type BackfillResponse struct {
	Updated int64 `json:"updated"`
}
