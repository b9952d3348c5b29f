package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/ekomarov/planfact/internal/models"
)

// PlanFactReport compares planned and actual settlement of every occurrence
// scheduled within [from, to], optionally filtered by category. Occurrences
// still PENDING count toward the total but toward neither breakdown.
func (e *Engine) PlanFactReport(userID int64, from, to time.Time, categoryID *int64) (*models.PlanFactReport, error) {
	from = dateOnly(from)
	to = dateOnly(to)
	if to.Before(from) {
		return nil, validationf("end_date", "must not precede start_date")
	}

	occurrences, err := e.store.ListOccurrencesInRange(userID, from, to, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences in range: %w", err)
	}

	report := &models.PlanFactReport{Total: len(occurrences)}
	var deviationSum float64
	for _, occ := range occurrences {
		switch occ.Status {
		case models.OccurrenceExecuted:
			report.ExecutedCount++
			if occ.ExecutedAmount == nil || occ.ExecutedDate == nil {
				continue
			}
			dev := models.PlanFactDeviation{
				OccurrenceID:      occ.ID,
				AmountDeviation:   *occ.ExecutedAmount - occ.ScheduledAmount,
				DateDeviationDays: daysBetween(occ.ScheduledDate, *occ.ExecutedDate),
			}
			deviationSum += dev.AmountDeviation
			report.Deviations = append(report.Deviations, dev)
		case models.OccurrenceSkipped:
			report.SkippedCount++
		}
	}

	if report.Total > 0 {
		report.OnTimePercentage = roundCents(float64(report.ExecutedCount) / float64(report.Total) * 100)
		report.SkippedPercentage = roundCents(float64(report.SkippedCount) / float64(report.Total) * 100)
	}
	if n := len(report.Deviations); n > 0 {
		report.AvgAmountDeviation = roundCents(deviationSum / float64(n))
	}
	return report, nil
}

// daysBetween returns b minus a in whole days; both are date-only values.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
