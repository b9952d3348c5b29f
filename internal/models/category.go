package models

// Category is a reference-data record for classifying cash flows.
type Category struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"` // "income" or "expense"
}

// Lender is a reference-data record for loan counterparties.
type Lender struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
