package models

import "time"

// Transaction represents a posted ledger transaction.
// Amount is stored unsigned; Direction carries the sign.
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CategoryID  int64     `json:"category_id"`
	Amount      float64   `json:"amount"`
	Direction   Direction `json:"direction"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
