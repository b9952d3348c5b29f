package service

import (
	"fmt"
	"time"

	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/models"
)

// CreatePlanned validates and stores a planned transaction, then
// materializes its occurrences up to the rolling horizon.
func (s *Service) CreatePlanned(p *models.PlannedTransaction) (*models.PlannedTransaction, error) {
	if p.Amount <= 0 {
		return nil, &engine.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	if p.Direction != models.DirectionInflow && p.Direction != models.DirectionOutflow {
		return nil, &engine.ValidationError{Field: "direction", Msg: "must be INFLOW or OUTFLOW"}
	}
	if p.AnchorDate.IsZero() {
		return nil, &engine.ValidationError{Field: "anchor_date", Msg: "is required"}
	}
	if err := engine.ValidateRule(p.Rule); err != nil {
		return nil, err
	}

	p.IsActive = true
	if err := s.repo.CreatePlanned(p); err != nil {
		return nil, err
	}
	if _, err := s.engine.Materialize(p.UserID, time.Now()); err != nil {
		return nil, err
	}
	s.log.Infof("Planned transaction %d created for user %d", p.ID, p.UserID)
	return p, nil
}

// ListPlanned returns every planned transaction of the user.
func (s *Service) ListPlanned(userID int64) ([]models.PlannedTransaction, error) {
	return s.repo.ListPlanned(userID)
}

// DeactivatePlanned stops a planned transaction from producing new
// occurrences. Already-materialized occurrences stay as they are.
func (s *Service) DeactivatePlanned(id, userID int64) error {
	return s.repo.DeactivatePlanned(id, userID)
}

// MaterializeDueOccurrences advances the rolling horizon for the user.
func (s *Service) MaterializeDueOccurrences(userID int64, asOf time.Time) (int, error) {
	return s.engine.Materialize(userID, asOf)
}

// ExecuteOccurrence settles a pending occurrence, posting the matching
// ledger transaction in the same unit of work.
func (s *Service) ExecuteOccurrence(userID, occurrenceID int64, executedDate time.Time, executedAmount float64) (*models.Transaction, error) {
	if err := s.checkOccurrenceOwner(userID, occurrenceID); err != nil {
		return nil, err
	}
	return s.engine.Execute(occurrenceID, executedDate, executedAmount)
}

// SkipOccurrence resolves a pending occurrence without moving money.
func (s *Service) SkipOccurrence(userID, occurrenceID int64, reason *string) error {
	if err := s.checkOccurrenceOwner(userID, occurrenceID); err != nil {
		return err
	}
	return s.engine.Skip(occurrenceID, reason)
}

// checkOccurrenceOwner verifies the occurrence belongs to the user. Foreign
// occurrences read as not found, not as forbidden.
func (s *Service) checkOccurrenceOwner(userID, occurrenceID int64) error {
	occ, err := s.repo.GetOccurrence(occurrenceID)
	if err != nil {
		return err
	}
	parent, err := s.repo.GetPlanned(occ.PlannedID)
	if err != nil {
		return err
	}
	if parent.UserID != userID {
		return fmt.Errorf("occurrence %d: %w", occurrenceID, engine.ErrNotFound)
	}
	return nil
}

// ListPendingOccurrences returns pending occurrences, overdue bucket first.
func (s *Service) ListPendingOccurrences(userID int64, asOf time.Time, limit int) ([]models.Occurrence, error) {
	return s.engine.ListPending(userID, asOf, limit)
}

// ForecastBalance projects the user's balance at the target date.
func (s *Service) ForecastBalance(userID int64, targetDate time.Time) (*models.Forecast, error) {
	return s.engine.ForecastBalance(userID, targetDate)
}

// ForecastRange projects the balance day by day over the given window.
func (s *Service) ForecastRange(userID int64, from time.Time, days int) (*models.BalanceForecast, error) {
	return s.engine.ForecastRange(userID, from, days)
}

// DetectCashGaps returns the dates in [start, end] with a negative
// projected balance.
func (s *Service) DetectCashGaps(userID int64, start, end time.Time) ([]time.Time, error) {
	return s.engine.DetectCashGaps(userID, start, end)
}

// PlanFactReport aggregates plan-vs-fact statistics over a date range.
func (s *Service) PlanFactReport(userID int64, from, to time.Time, categoryID *int64) (*models.PlanFactReport, error) {
	return s.engine.PlanFactReport(userID, from, to, categoryID)
}
