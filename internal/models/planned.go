package models

import "time"

// Direction of a cash flow.
type Direction string

const (
	DirectionInflow  Direction = "INFLOW"
	DirectionOutflow Direction = "OUTFLOW"
)

// PlannedTransaction represents a planned, possibly repeating, cash flow.
// A nil Rule means a single one-time occurrence at AnchorDate.
type PlannedTransaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	CategoryID  int64           `json:"category_id"`
	Amount      float64         `json:"amount"`
	Direction   Direction       `json:"direction"`
	AnchorDate  time.Time       `json:"anchor_date"`
	Description string          `json:"description"`
	IsActive    bool            `json:"is_active"`
	Rule        *RecurrenceRule `json:"rule,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
