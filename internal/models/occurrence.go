package models

import "time"

// OccurrenceStatus is the lifecycle state of a scheduled occurrence.
// Transitions are PENDING -> EXECUTED or PENDING -> SKIPPED; both terminal.
type OccurrenceStatus string

const (
	OccurrencePending  OccurrenceStatus = "PENDING"
	OccurrenceExecuted OccurrenceStatus = "EXECUTED"
	OccurrenceSkipped  OccurrenceStatus = "SKIPPED"
)

// Occurrence is one concrete scheduled instance of a planned transaction.
type Occurrence struct {
	ID              int64            `json:"id"`
	PlannedID       int64            `json:"planned_id"`
	ScheduledDate   time.Time        `json:"scheduled_date"`
	ScheduledAmount float64          `json:"scheduled_amount"`
	Status          OccurrenceStatus `json:"status"`
	TransactionID   *int64           `json:"transaction_id,omitempty"` // set iff EXECUTED
	ExecutedDate    *time.Time       `json:"executed_date,omitempty"`
	ExecutedAmount  *float64         `json:"executed_amount,omitempty"`
	SkipReason      *string          `json:"skip_reason,omitempty"` // set iff SKIPPED
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
