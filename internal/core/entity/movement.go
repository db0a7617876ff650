// Package entity provides core domain entities.
package entity

import (
	"time"

	"backoffice/internal/core/id"
)

// RecordType defines the direction of a stock movement.
type RecordType string

const (
	// RecordTypeReceipt brings stock in and opens a lot.
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense takes stock out of a lot.
	RecordTypeExpense RecordType = "expense"
)

// RecorderType names the document that produced a movement.
type RecorderType string

const (
	RecorderReceipt RecorderType = "receipt"
	RecorderSale    RecorderType = "sale"
	RecorderSeed    RecorderType = "seed"
)

// MovementBase contains common fields for all stock movements.
// Movements are append-only.
type MovementBase struct {
	// ID identifies the movement line (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	RecorderType RecorderType `db:"recorder_type" json:"recorderType"`

	// RecorderLine is the line number on the recorder document (1-based, 0 for receipts)
	RecorderLine int `db:"recorder_line" json:"recorderLine"`

	RecordType RecordType `db:"record_type" json:"recordType"`

	// Period is the business date of the movement
	Period time.Time `db:"period" json:"period"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a movement base with generated ID.
func NewMovementBase(recorderID id.ID, recorderType RecorderType, line int, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		ID:           id.New(),
		RecorderID:   recorderID,
		RecorderType: recorderType,
		RecorderLine: line,
		RecordType:   recordType,
		Period:       period,
		CreatedAt:    time.Now().UTC(),
	}
}
