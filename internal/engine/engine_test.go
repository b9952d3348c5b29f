package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/ekomarov/planfact/internal/models"
	"github.com/sirupsen/logrus"
)

// fakeStore is an in-memory Store for engine tests. InTx snapshots the
// mutable state and restores it when fn fails, mirroring a rolled-back
// database transaction.
type fakeStore struct {
	planned      map[int64]*models.PlannedTransaction
	occurrences  map[int64]*models.Occurrence
	transactions []models.Transaction
	loanPayments []models.LoanPayment
	deferred     []models.DeferredPayment

	nextOccurrenceID  int64
	nextTransactionID int64
	postErr           error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		planned:           make(map[int64]*models.PlannedTransaction),
		occurrences:       make(map[int64]*models.Occurrence),
		nextOccurrenceID:  1,
		nextTransactionID: 1,
	}
}

func newTestEngine(s *fakeStore) *Engine {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(s, log, DefaultHorizonMonths)
}

func (f *fakeStore) InTx(fn func(Store) error) error {
	occSnapshot := make(map[int64]*models.Occurrence, len(f.occurrences))
	for id, o := range f.occurrences {
		cp := *o
		occSnapshot[id] = &cp
	}
	txSnapshot := append([]models.Transaction(nil), f.transactions...)
	nextOcc, nextTx := f.nextOccurrenceID, f.nextTransactionID

	if err := fn(f); err != nil {
		f.occurrences = occSnapshot
		f.transactions = txSnapshot
		f.nextOccurrenceID, f.nextTransactionID = nextOcc, nextTx
		return err
	}
	return nil
}

func (f *fakeStore) GetPlanned(id int64) (*models.PlannedTransaction, error) {
	p, ok := f.planned[id]
	if !ok {
		return nil, fmt.Errorf("planned transaction %d: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListActivePlanned(userID int64) ([]models.PlannedTransaction, error) {
	var out []models.PlannedTransaction
	for _, p := range f.planned {
		if p.UserID == userID && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetOccurrence(id int64) (*models.Occurrence, error) {
	o, ok := f.occurrences[id]
	if !ok {
		return nil, fmt.Errorf("occurrence %d: %w", id, ErrNotFound)
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) ListOccurrenceDates(plannedID int64) ([]time.Time, error) {
	var out []time.Time
	for _, o := range f.occurrences {
		if o.PlannedID == plannedID {
			out = append(out, o.ScheduledDate)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateOccurrence(o *models.Occurrence) error {
	o.ID = f.nextOccurrenceID
	f.nextOccurrenceID++
	cp := *o
	f.occurrences[o.ID] = &cp
	return nil
}

func (f *fakeStore) ListPendingOccurrences(userID int64) ([]PendingOccurrence, error) {
	var out []PendingOccurrence
	for _, o := range f.occurrences {
		if o.Status != models.OccurrencePending {
			continue
		}
		p, ok := f.planned[o.PlannedID]
		if !ok || p.UserID != userID {
			continue
		}
		out = append(out, PendingOccurrence{Occurrence: *o, Direction: p.Direction})
	}
	return out, nil
}

func (f *fakeStore) ListOccurrencesInRange(userID int64, from, to time.Time, categoryID *int64) ([]models.Occurrence, error) {
	var out []models.Occurrence
	for _, o := range f.occurrences {
		p, ok := f.planned[o.PlannedID]
		if !ok || p.UserID != userID {
			continue
		}
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		if o.ScheduledDate.Before(from) || o.ScheduledDate.After(to) {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeStore) MarkOccurrenceExecuted(id, transactionID int64, executedDate time.Time, executedAmount float64) error {
	o, ok := f.occurrences[id]
	if !ok {
		return fmt.Errorf("occurrence %d: %w", id, ErrNotFound)
	}
	o.Status = models.OccurrenceExecuted
	o.TransactionID = &transactionID
	o.ExecutedDate = &executedDate
	o.ExecutedAmount = &executedAmount
	return nil
}

func (f *fakeStore) MarkOccurrenceSkipped(id int64, reason *string) error {
	o, ok := f.occurrences[id]
	if !ok {
		return fmt.Errorf("occurrence %d: %w", id, ErrNotFound)
	}
	o.Status = models.OccurrenceSkipped
	o.SkipReason = reason
	return nil
}

func (f *fakeStore) SumPostedTransactions(userID int64) (float64, error) {
	var sum float64
	for _, t := range f.transactions {
		if t.UserID != userID {
			continue
		}
		if t.Direction == models.DirectionOutflow {
			sum -= t.Amount
		} else {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (f *fakeStore) PostTransaction(t *models.Transaction) (int64, error) {
	if f.postErr != nil {
		return 0, f.postErr
	}
	t.ID = f.nextTransactionID
	f.nextTransactionID++
	f.transactions = append(f.transactions, *t)
	return t.ID, nil
}

func (f *fakeStore) ListUnpaidLoanPayments(userID int64, dueBefore time.Time) ([]models.LoanPayment, error) {
	var out []models.LoanPayment
	for _, lp := range f.loanPayments {
		if lp.Status == models.LoanPaymentPaid || lp.ScheduledDate.After(dueBefore) {
			continue
		}
		out = append(out, lp)
	}
	return out, nil
}

func (f *fakeStore) ListDueDeferredPayments(userID int64, dueBefore time.Time) ([]models.DeferredPayment, error) {
	var out []models.DeferredPayment
	for _, d := range f.deferred {
		if d.UserID != userID || d.Status != models.DeferredActive || d.DueDate == nil || d.DueDate.After(dueBefore) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// date is a test shorthand for a UTC date-only value.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
