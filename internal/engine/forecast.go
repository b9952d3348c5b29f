package engine

import (
	"fmt"
	"time"

	"github.com/ekomarov/planfact/internal/models"
)

// ForecastBalance projects the balance at targetDate: the ledger's running
// total as of now plus every unresolved obligation due on or before the
// target. Recomputed on every call — the ledger and the obligation sets
// mutate independently, so nothing here may be cached. A target in the past
// simply yields the current balance.
func (e *Engine) ForecastBalance(userID int64, targetDate time.Time) (*models.Forecast, error) {
	targetDate = dateOnly(targetDate)

	balance, err := e.store.SumPostedTransactions(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted transactions: %w", err)
	}
	obligations, err := e.CollectObligations(userID, targetDate)
	if err != nil {
		return nil, err
	}
	for _, ob := range obligations {
		balance += ob.SignedAmount
	}
	return &models.Forecast{AsOfDate: targetDate, ProjectedBalance: balance}, nil
}

// DetectCashGaps returns every date in [start, end] on which the projected
// balance is negative. One sorted sweep over the obligations instead of a
// forecast per day: the projected balance is a step function that only
// changes value on obligation dates, so each flat segment is marked as a
// whole.
func (e *Engine) DetectCashGaps(userID int64, start, end time.Time) ([]time.Time, error) {
	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return nil, validationf("end_date", "must not precede start_date")
	}

	running, err := e.store.SumPostedTransactions(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted transactions: %w", err)
	}
	obligations, err := e.CollectObligations(userID, end)
	if err != nil {
		return nil, err
	}

	// Obligations due before the range already weigh on every day in it.
	var inRange []models.Obligation
	for _, ob := range obligations {
		if ob.DueDate.Before(start) {
			running += ob.SignedAmount
		} else {
			inRange = append(inRange, ob)
		}
	}

	var gaps []time.Time
	markSegment := func(from, to time.Time) {
		if running >= 0 {
			return
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			gaps = append(gaps, d)
		}
	}

	segStart := start
	for i := 0; i < len(inRange); i++ {
		markSegment(segStart, inRange[i].DueDate.AddDate(0, 0, -1))
		// Apply every obligation falling on the same day before marking.
		day := inRange[i].DueDate
		for i < len(inRange) && inRange[i].DueDate.Equal(day) {
			running += inRange[i].SignedAmount
			i++
		}
		i--
		segStart = day
	}
	markSegment(segStart, end)

	return gaps, nil
}

// ForecastRange produces a day-by-day balance projection over the next
// `days` days, for chart-style reporting.
func (e *Engine) ForecastRange(userID int64, from time.Time, days int) (*models.BalanceForecast, error) {
	if days < 1 {
		return nil, validationf("days", "must be >= 1, got %d", days)
	}
	from = dateOnly(from)
	end := from.AddDate(0, 0, days-1)

	balance, err := e.store.SumPostedTransactions(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted transactions: %w", err)
	}
	out := &models.BalanceForecast{
		InitialBalance: balance,
		ForecastedDays: days,
		DailyForecast:  make([]models.DailyBalance, 0, days),
	}

	obligations, err := e.CollectObligations(userID, end)
	if err != nil {
		return nil, err
	}
	i := 0
	for ; i < len(obligations) && obligations[i].DueDate.Before(from); i++ {
		balance += obligations[i].SignedAmount
	}
	for d := from; !d.After(end); d = d.AddDate(0, 0, 1) {
		for ; i < len(obligations) && !obligations[i].DueDate.After(d); i++ {
			balance += obligations[i].SignedAmount
		}
		out.DailyForecast = append(out.DailyForecast, models.DailyBalance{
			Date:    d.Format("2006-01-02"),
			Balance: balance,
		})
	}
	return out, nil
}
