package models

import "time"

// Loan represents an installment loan repaid through a payment schedule.
type Loan struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	LenderID     int64     `json:"lender_id"`
	Amount       float64   `json:"amount"`
	InterestRate float64   `json:"interest_rate"` // annual, percent
	TermMonths   int       `json:"term_months"`
	StartDate    time.Time `json:"start_date"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoanPaymentStatus is the settlement state of a scheduled loan payment.
type LoanPaymentStatus string

const (
	LoanPaymentPending LoanPaymentStatus = "PENDING"
	LoanPaymentOverdue LoanPaymentStatus = "OVERDUE"
	LoanPaymentPaid    LoanPaymentStatus = "PAID"
)

// LoanPayment is one scheduled payment of a loan. Penalty accrues once the
// payment turns OVERDUE; TotalAmount returns amount plus penalty.
type LoanPayment struct {
	ID            int64             `json:"id"`
	LoanID        int64             `json:"loan_id"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	Amount        float64           `json:"amount"`
	Penalty       float64           `json:"penalty"`
	Status        LoanPaymentStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TotalAmount is the full amount due for the payment including penalty.
func (p *LoanPayment) TotalAmount() float64 {
	return p.Amount + p.Penalty
}
