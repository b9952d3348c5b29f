package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/models"
)

// CreateDeferredPayment inserts an ad-hoc deferred payment.
func (r *Repository) CreateDeferredPayment(d *models.DeferredPayment) error {
	var due sql.NullTime
	if d.DueDate != nil {
		due = sql.NullTime{Time: *d.DueDate, Valid: true}
	}
	query := `
		INSERT INTO planfact.deferred_payments
			(user_id, amount, due_date, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(query, d.UserID, d.Amount, due, d.Description, d.Status).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deferred payment: %w", err)
	}
	return nil
}

const deferredColumns = `
	id, user_id, amount, due_date, description, status, created_at, updated_at`

func scanDeferred(row interface{ Scan(...interface{}) error }, d *models.DeferredPayment) error {
	var due sql.NullTime
	err := row.Scan(&d.ID, &d.UserID, &d.Amount, &due, &d.Description, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return err
	}
	if due.Valid {
		t := due.Time
		d.DueDate = &t
	}
	return nil
}

// ListDeferredPayments returns every deferred payment of the user.
func (r *Repository) ListDeferredPayments(userID int64) ([]models.DeferredPayment, error) {
	query := `SELECT` + deferredColumns + `
		FROM planfact.deferred_payments
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.q.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deferred payments: %w", err)
	}
	defer rows.Close()

	var out []models.DeferredPayment
	for rows.Next() {
		var d models.DeferredPayment
		if err := scanDeferred(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan deferred payment: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListDueDeferredPayments returns ACTIVE deferred payments with a due date
// on or before dueBefore. Payments without a due date never become
// obligations.
func (r *Repository) ListDueDeferredPayments(userID int64, dueBefore time.Time) ([]models.DeferredPayment, error) {
	query := `SELECT` + deferredColumns + `
		FROM planfact.deferred_payments
		WHERE user_id = $1 AND status = 'ACTIVE' AND due_date IS NOT NULL AND due_date <= $2
		ORDER BY due_date`
	rows, err := r.q.Query(query, userID, dueBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list due deferred payments: %w", err)
	}
	defer rows.Close()

	var out []models.DeferredPayment
	for rows.Next() {
		var d models.DeferredPayment
		if err := scanDeferred(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan deferred payment: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SettleDeferredPayment marks an ACTIVE deferred payment SETTLED and posts
// the matching ledger outflow in one transaction.
func (r *Repository) SettleDeferredPayment(id int64, t *models.Transaction) error {
	return r.InTx(func(s engine.Store) error {
		repo := s.(*Repository)
		if _, err := repo.PostTransaction(t); err != nil {
			return err
		}
		query := `
			UPDATE planfact.deferred_payments
			SET status = 'SETTLED', updated_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND status = 'ACTIVE'`
		res, err := repo.q.Exec(query, id)
		if err != nil {
			return fmt.Errorf("failed to settle deferred payment: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("deferred payment %d: %w", id, engine.ErrLifecycleViolation)
		}
		return nil
	})
}
