package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/models"
)

// CreateLoan inserts a loan record.
func (r *Repository) CreateLoan(l *models.Loan) error {
	query := `
		INSERT INTO planfact.loans
			(user_id, lender_id, amount, interest_rate, term_months, start_date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(query, l.UserID, l.LenderID, l.Amount, l.InterestRate, l.TermMonths, l.StartDate, l.Description).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetLoan retrieves a loan by id.
func (r *Repository) GetLoan(id int64) (*models.Loan, error) {
	l := &models.Loan{}
	query := `
		SELECT id, user_id, lender_id, amount, interest_rate, term_months, start_date, description, created_at, updated_at
		FROM planfact.loans
		WHERE id = $1`
	err := r.q.QueryRow(query, id).
		Scan(&l.ID, &l.UserID, &l.LenderID, &l.Amount, &l.InterestRate, &l.TermMonths, &l.StartDate, &l.Description, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("loan %d: %w", id, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find loan: %w", err)
	}
	return l, nil
}

// CreateLoanPayment inserts one scheduled loan payment.
func (r *Repository) CreateLoanPayment(p *models.LoanPayment) error {
	query := `
		INSERT INTO planfact.loan_payments
			(loan_id, scheduled_date, amount, penalty, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(query, p.LoanID, p.ScheduledDate, p.Amount, p.Penalty, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan payment: %w", err)
	}
	return nil
}

const loanPaymentColumns = `
	id, loan_id, scheduled_date, amount, penalty, status, created_at, updated_at`

// ListLoanPayments returns the full schedule of a loan, ascending by date.
func (r *Repository) ListLoanPayments(loanID int64) ([]models.LoanPayment, error) {
	query := `SELECT` + loanPaymentColumns + `
		FROM planfact.loan_payments
		WHERE loan_id = $1
		ORDER BY scheduled_date`
	rows, err := r.q.Query(query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan payments: %w", err)
	}
	defer rows.Close()
	return collectLoanPayments(rows)
}

// ListUnpaidLoanPayments returns PENDING and OVERDUE payments of the user's
// loans with scheduled date on or before dueBefore.
func (r *Repository) ListUnpaidLoanPayments(userID int64, dueBefore time.Time) ([]models.LoanPayment, error) {
	query := `
		SELECT p.id, p.loan_id, p.scheduled_date, p.amount, p.penalty, p.status, p.created_at, p.updated_at
		FROM planfact.loan_payments p
		JOIN planfact.loans l ON l.id = p.loan_id
		WHERE l.user_id = $1 AND p.status IN ('PENDING', 'OVERDUE') AND p.scheduled_date <= $2
		ORDER BY p.scheduled_date`
	rows, err := r.q.Query(query, userID, dueBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid loan payments: %w", err)
	}
	defer rows.Close()
	return collectLoanPayments(rows)
}

func collectLoanPayments(rows *sql.Rows) ([]models.LoanPayment, error) {
	var out []models.LoanPayment
	for rows.Next() {
		var p models.LoanPayment
		err := rows.Scan(&p.ID, &p.LoanID, &p.ScheduledDate, &p.Amount, &p.Penalty, &p.Status, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkOverdueLoanPayments flips every PENDING payment scheduled before asOf
// to OVERDUE and applies a one-time penalty at penaltyRate percent of the
// payment amount. Returns the number of payments affected.
func (r *Repository) MarkOverdueLoanPayments(asOf time.Time, penaltyRate float64) (int64, error) {
	query := `
		UPDATE planfact.loan_payments
		SET status = 'OVERDUE', penalty = ROUND((amount * $2 / 100)::numeric, 2), updated_at = CURRENT_TIMESTAMP
		WHERE status = 'PENDING' AND scheduled_date < $1`
	res, err := r.q.Exec(query, asOf, penaltyRate)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue loan payments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue loan payments: %w", err)
	}
	return n, nil
}

// PayLoanPayment settles an unpaid loan payment and posts the matching
// ledger outflow in one transaction.
func (r *Repository) PayLoanPayment(paymentID int64, t *models.Transaction) error {
	return r.InTx(func(s engine.Store) error {
		repo := s.(*Repository)
		if _, err := repo.PostTransaction(t); err != nil {
			return err
		}
		query := `
			UPDATE planfact.loan_payments
			SET status = 'PAID', updated_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND status IN ('PENDING', 'OVERDUE')`
		res, err := repo.q.Exec(query, paymentID)
		if err != nil {
			return fmt.Errorf("failed to mark loan payment paid: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("loan payment %d: %w", paymentID, engine.ErrLifecycleViolation)
		}
		return nil
	})
}
