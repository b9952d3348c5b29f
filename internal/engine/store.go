package engine

import (
	"time"

	"github.com/ekomarov/planfact/internal/models"
)

// PendingOccurrence is an occurrence joined with its parent's direction,
// which the normalizer needs to sign the amount.
type PendingOccurrence struct {
	models.Occurrence
	Direction models.Direction
}

// Store is the persistence collaborator the engine runs against. The
// Postgres implementation lives in internal/repository; tests use an
// in-memory fake. InTx runs fn against a store bound to one database
// transaction and rolls back if fn returns an error.
type Store interface {
	InTx(fn func(Store) error) error

	GetPlanned(id int64) (*models.PlannedTransaction, error)
	ListActivePlanned(userID int64) ([]models.PlannedTransaction, error)

	GetOccurrence(id int64) (*models.Occurrence, error)
	ListOccurrenceDates(plannedID int64) ([]time.Time, error)
	CreateOccurrence(o *models.Occurrence) error
	// ListPendingOccurrences returns every PENDING occurrence of the user,
	// ascending by scheduled date, joined with the parent direction.
	ListPendingOccurrences(userID int64) ([]PendingOccurrence, error)
	// ListOccurrencesInRange returns occurrences of any status scheduled
	// within [from, to], optionally filtered by the parent's category.
	ListOccurrencesInRange(userID int64, from, to time.Time, categoryID *int64) ([]models.Occurrence, error)
	MarkOccurrenceExecuted(id, transactionID int64, executedDate time.Time, executedAmount float64) error
	MarkOccurrenceSkipped(id int64, reason *string) error

	// SumPostedTransactions is the ledger's running total as of now:
	// inflows minus outflows over all posted transactions, no date filter.
	SumPostedTransactions(userID int64) (float64, error)
	PostTransaction(t *models.Transaction) (int64, error)

	// ListUnpaidLoanPayments returns PENDING and OVERDUE loan payments of
	// the user with scheduled date on or before dueBefore.
	ListUnpaidLoanPayments(userID int64, dueBefore time.Time) ([]models.LoanPayment, error)
	// ListDueDeferredPayments returns ACTIVE deferred payments of the user
	// that carry a due date on or before dueBefore.
	ListDueDeferredPayments(userID int64, dueBefore time.Time) ([]models.DeferredPayment, error)
}
