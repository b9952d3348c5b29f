package service

import (
	"math"
	"time"

	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/models"
	"github.com/ekomarov/planfact/internal/repository"
)

// CreateLoan stores a loan and generates its full annuity payment schedule,
// one PENDING payment per month starting one month after the start date.
func (s *Service) CreateLoan(l *models.Loan) (*models.Loan, []models.LoanPayment, error) {
	if l.Amount <= 0 {
		return nil, nil, &engine.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	if l.TermMonths < 1 {
		return nil, nil, &engine.ValidationError{Field: "term_months", Msg: "must be >= 1"}
	}
	if l.InterestRate < 0 {
		return nil, nil, &engine.ValidationError{Field: "interest_rate", Msg: "must not be negative"}
	}

	monthly := annuityPayment(l.Amount, l.InterestRate, l.TermMonths)

	var schedule []models.LoanPayment
	err := s.repo.InTx(func(store engine.Store) error {
		repo := store.(*repository.Repository)
		if err := repo.CreateLoan(l); err != nil {
			return err
		}
		for i := 1; i <= l.TermMonths; i++ {
			p := models.LoanPayment{
				LoanID:        l.ID,
				ScheduledDate: l.StartDate.AddDate(0, i, 0),
				Amount:        monthly,
				Status:        models.LoanPaymentPending,
			}
			if err := repo.CreateLoanPayment(&p); err != nil {
				return err
			}
			schedule = append(schedule, p)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Infof("Loan %d created: %.2f over %d months, %.2f monthly", l.ID, l.Amount, l.TermMonths, monthly)
	return l, schedule, nil
}

// LoanSchedule returns the payment schedule of a loan owned by the user.
func (s *Service) LoanSchedule(loanID, userID int64) ([]models.LoanPayment, error) {
	loan, err := s.repo.GetLoan(loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, engine.ErrNotFound
	}
	return s.repo.ListLoanPayments(loanID)
}

// PayLoanPayment settles a scheduled payment, posting the ledger outflow
// and the PAID flip in one transaction.
func (s *Service) PayLoanPayment(paymentID, userID, categoryID int64, amount float64, date time.Time) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, &engine.ValidationError{Field: "amount", Msg: "must be positive"}
	}
	t := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      amount,
		Direction:   models.DirectionOutflow,
		Date:        date,
		Description: "loan payment",
	}
	if err := s.repo.PayLoanPayment(paymentID, t); err != nil {
		return nil, err
	}
	s.log.Infof("Loan payment %d settled: %.2f", paymentID, amount)
	return t, nil
}

// annuityPayment computes the fixed monthly payment for a loan, rounded to
// cents. A zero rate degrades to straight-line repayment.
func annuityPayment(principal, annualRatePercent float64, termMonths int) float64 {
	if annualRatePercent == 0 {
		return roundCents(principal / float64(termMonths))
	}
	r := annualRatePercent / 100 / 12
	payment := principal * r / (1 - math.Pow(1+r, -float64(termMonths)))
	return roundCents(payment)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
