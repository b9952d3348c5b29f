package service

import (
	"time"

	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/models"
)

// CreateDeferredPayment stores an ad-hoc deferred obligation.
func (s *Service) CreateDeferredPayment(d *models.DeferredPayment) (*models.DeferredPayment, error) {
	if d.Amount <= 0 {
		return nil, &engine.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	d.Status = models.DeferredActive
	if err := s.repo.CreateDeferredPayment(d); err != nil {
		return nil, err
	}
	s.log.Infof("Deferred payment %d created for user %d", d.ID, d.UserID)
	return d, nil
}

// ListDeferredPayments returns every deferred payment of the user.
func (s *Service) ListDeferredPayments(userID int64) ([]models.DeferredPayment, error) {
	return s.repo.ListDeferredPayments(userID)
}

// SettleDeferredPayment resolves an active deferred payment, posting the
// ledger outflow in the same unit of work.
func (s *Service) SettleDeferredPayment(id, userID, categoryID int64, date time.Time, amount float64) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, &engine.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	t := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      amount,
		Direction:   models.DirectionOutflow,
		Date:        date,
		Description: "deferred payment",
	}
	if err := s.repo.SettleDeferredPayment(id, t); err != nil {
		return nil, err
	}
	s.log.Infof("Deferred payment %d settled: %.2f", id, amount)
	return t, nil
}
