package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/ekomarov/planfact/internal/models"
)

// CollectObligations folds the three obligation sources into one normalized
// slice, ascending by due date: pending occurrences (signed by the parent's
// direction), unpaid loan payments and active dated deferred payments (both
// always outflows). No lower date bound is applied — overdue obligations
// still represent money that has not moved yet. The sources are disjoint,
// so no cross-source deduplication is needed.
func (e *Engine) CollectObligations(userID int64, through time.Time) ([]models.Obligation, error) {
	through = dateOnly(through)
	var obligations []models.Obligation

	pending, err := e.store.ListPendingOccurrences(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending occurrences: %w", err)
	}
	for _, p := range pending {
		if p.ScheduledDate.After(through) {
			continue
		}
		amount := p.ScheduledAmount
		if p.Direction == models.DirectionOutflow {
			amount = -amount
		}
		obligations = append(obligations, models.Obligation{
			DueDate:      dateOnly(p.ScheduledDate),
			SignedAmount: amount,
			Source:       models.SourceRecurring,
			SourceID:     p.ID,
		})
	}

	loanPayments, err := e.store.ListUnpaidLoanPayments(userID, through)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid loan payments: %w", err)
	}
	for i := range loanPayments {
		lp := &loanPayments[i]
		obligations = append(obligations, models.Obligation{
			DueDate:      dateOnly(lp.ScheduledDate),
			SignedAmount: -lp.TotalAmount(),
			Source:       models.SourceLoanPayment,
			SourceID:     lp.ID,
		})
	}

	deferred, err := e.store.ListDueDeferredPayments(userID, through)
	if err != nil {
		return nil, fmt.Errorf("failed to list deferred payments: %w", err)
	}
	for _, d := range deferred {
		if d.DueDate == nil {
			continue
		}
		obligations = append(obligations, models.Obligation{
			DueDate:      dateOnly(*d.DueDate),
			SignedAmount: -d.Amount,
			Source:       models.SourceDeferredPayment,
			SourceID:     d.ID,
		})
	}

	sort.SliceStable(obligations, func(i, j int) bool {
		return obligations[i].DueDate.Before(obligations[j].DueDate)
	})
	return obligations, nil
}
