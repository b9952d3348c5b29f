package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/ekomarov/planfact/internal/models"
)

// Materialize advances the rolling horizon for every active planned
// transaction of the user: it expands each recurrence rule up to asOf plus
// the configured horizon and creates a PENDING occurrence for every date
// not materialized yet. Idempotent — re-running with the same horizon
// creates nothing. Returns the number of occurrences created.
func (e *Engine) Materialize(userID int64, asOf time.Time) (int, error) {
	horizon := dateOnly(asOf).AddDate(0, e.horizonMonths, 0)

	created := 0
	err := e.store.InTx(func(s Store) error {
		planned, err := s.ListActivePlanned(userID)
		if err != nil {
			return fmt.Errorf("failed to list planned transactions: %w", err)
		}
		for i := range planned {
			p := &planned[i]
			existing, err := s.ListOccurrenceDates(p.ID)
			if err != nil {
				return fmt.Errorf("failed to list occurrence dates for planned %d: %w", p.ID, err)
			}
			seen := make(map[time.Time]bool, len(existing))
			for _, d := range existing {
				seen[dateOnly(d)] = true
			}
			for _, d := range Expand(p.Rule, p.AnchorDate, horizon) {
				if seen[d] {
					continue
				}
				occ := &models.Occurrence{
					PlannedID:       p.ID,
					ScheduledDate:   d,
					ScheduledAmount: p.Amount,
					Status:          models.OccurrencePending,
				}
				if err := s.CreateOccurrence(occ); err != nil {
					return fmt.Errorf("failed to create occurrence for planned %d: %w", p.ID, err)
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		e.log.Infof("Materialized %d occurrences for user %d through %s", created, userID, horizon.Format("2006-01-02"))
	}
	return created, nil
}

// Execute settles a PENDING occurrence: posts the ledger transaction and
// marks the occurrence EXECUTED in one unit of work. The executed amount
// and date may differ from the scheduled ones (user-adjusted at settlement).
func (e *Engine) Execute(occurrenceID int64, executedDate time.Time, executedAmount float64) (*models.Transaction, error) {
	if executedAmount <= 0 {
		return nil, validationf("amount", "must be positive, got %.2f", executedAmount)
	}

	var tx *models.Transaction
	err := e.store.InTx(func(s Store) error {
		occ, err := s.GetOccurrence(occurrenceID)
		if err != nil {
			return err
		}
		if occ.Status != models.OccurrencePending {
			return fmt.Errorf("occurrence %d is %s: %w", occurrenceID, occ.Status, ErrLifecycleViolation)
		}
		parent, err := s.GetPlanned(occ.PlannedID)
		if err != nil {
			return err
		}

		tx = &models.Transaction{
			UserID:      parent.UserID,
			CategoryID:  parent.CategoryID,
			Amount:      executedAmount,
			Direction:   parent.Direction,
			Date:        dateOnly(executedDate),
			Description: parent.Description,
		}
		txID, err := s.PostTransaction(tx)
		if err != nil {
			return fmt.Errorf("failed to post transaction: %w", err)
		}
		tx.ID = txID
		return s.MarkOccurrenceExecuted(occurrenceID, txID, dateOnly(executedDate), executedAmount)
	})
	if err != nil {
		return nil, err
	}
	e.log.Infof("Occurrence %d executed: %.2f on %s (transaction %d)",
		occurrenceID, executedAmount, executedDate.Format("2006-01-02"), tx.ID)
	return tx, nil
}

// Skip resolves a PENDING occurrence without moving money.
func (e *Engine) Skip(occurrenceID int64, reason *string) error {
	err := e.store.InTx(func(s Store) error {
		occ, err := s.GetOccurrence(occurrenceID)
		if err != nil {
			return err
		}
		if occ.Status != models.OccurrencePending {
			return fmt.Errorf("occurrence %d is %s: %w", occurrenceID, occ.Status, ErrLifecycleViolation)
		}
		return s.MarkOccurrenceSkipped(occurrenceID, reason)
	})
	if err != nil {
		return err
	}
	e.log.Infof("Occurrence %d skipped", occurrenceID)
	return nil
}

// ListPending returns the user's PENDING occurrences in two strict buckets:
// first everything overdue relative to asOf, most overdue first, then
// everything upcoming, soonest first. Overdue items never interleave with
// upcoming ones. limit <= 0 means no limit.
func (e *Engine) ListPending(userID int64, asOf time.Time, limit int) ([]models.Occurrence, error) {
	pending, err := e.store.ListPendingOccurrences(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending occurrences: %w", err)
	}

	cutoff := dateOnly(asOf)
	var overdue, upcoming []models.Occurrence
	for _, p := range pending {
		if p.ScheduledDate.Before(cutoff) {
			overdue = append(overdue, p.Occurrence)
		} else {
			upcoming = append(upcoming, p.Occurrence)
		}
	}
	byDate := func(items []models.Occurrence) {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ScheduledDate.Before(items[j].ScheduledDate)
		})
	}
	byDate(overdue)
	byDate(upcoming)

	out := append(overdue, upcoming...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
