package models

import "time"

// ObligationSource tags which store a normalized obligation came from.
type ObligationSource string

const (
	SourceRecurring       ObligationSource = "RECURRING"
	SourceLoanPayment     ObligationSource = "LOAN_PAYMENT"
	SourceDeferredPayment ObligationSource = "DEFERRED_PAYMENT"
)

// Obligation is a normalized, not-yet-settled cash movement. Derived on
// demand from pending occurrences, unpaid loan payments and active deferred
// payments; never persisted. SignedAmount is positive for inflows.
type Obligation struct {
	DueDate      time.Time        `json:"due_date"`
	SignedAmount float64          `json:"signed_amount"`
	Source       ObligationSource `json:"source"`
	SourceID     int64            `json:"source_id"`
}

// Forecast is a projected balance at a future date.
type Forecast struct {
	AsOfDate         time.Time `json:"as_of_date"`
	ProjectedBalance float64   `json:"projected_balance"`
}

// BalanceForecast represents a day-by-day balance forecast over a range.
type BalanceForecast struct {
	InitialBalance float64        `json:"initial_balance"`
	ForecastedDays int            `json:"forecasted_days"`
	DailyForecast  []DailyBalance `json:"daily_forecast"`
}

// DailyBalance represents balance for a specific day
type DailyBalance struct {
	Date    string  `json:"date"` // Format: YYYY-MM-DD
	Balance float64 `json:"balance"`
}

// PlanFactDeviation compares one executed occurrence against its plan.
type PlanFactDeviation struct {
	OccurrenceID      int64   `json:"occurrence_id"`
	AmountDeviation   float64 `json:"amount_deviation"`
	DateDeviationDays int     `json:"date_deviation_days"`
}

// PlanFactReport aggregates plan-vs-fact statistics over a date range.
type PlanFactReport struct {
	Total              int                 `json:"total"`
	ExecutedCount      int                 `json:"executed_count"`
	SkippedCount       int                 `json:"skipped_count"`
	OnTimePercentage   float64             `json:"on_time_percentage"`
	SkippedPercentage  float64             `json:"skipped_percentage"`
	AvgAmountDeviation float64             `json:"avg_amount_deviation"`
	Deviations         []PlanFactDeviation `json:"deviations"`
}
