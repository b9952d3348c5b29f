package models

import "time"

// DeferredPaymentStatus is the state of an ad-hoc deferred payment.
type DeferredPaymentStatus string

const (
	DeferredActive  DeferredPaymentStatus = "ACTIVE"
	DeferredSettled DeferredPaymentStatus = "SETTLED"
)

// DeferredPayment is an ad-hoc obligation without a recurrence: money owed
// that will leave the ledger once, on DueDate if one is set.
type DeferredPayment struct {
	ID          int64                 `json:"id"`
	UserID      int64                 `json:"user_id"`
	Amount      float64               `json:"amount"`
	DueDate     *time.Time            `json:"due_date,omitempty"`
	Description string                `json:"description"`
	Status      DeferredPaymentStatus `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
