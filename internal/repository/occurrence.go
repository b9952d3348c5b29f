package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/models"
)

const occurrenceColumns = `
	id, planned_id, scheduled_date, scheduled_amount, status,
	transaction_id, executed_date, executed_amount, skip_reason,
	created_at, updated_at`

func scanOccurrence(row interface{ Scan(...interface{}) error }, o *models.Occurrence) error {
	var (
		txID       sql.NullInt64
		execDate   sql.NullTime
		execAmount sql.NullFloat64
		skipReason sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.PlannedID, &o.ScheduledDate, &o.ScheduledAmount, &o.Status,
		&txID, &execDate, &execAmount, &skipReason,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if txID.Valid {
		o.TransactionID = &txID.Int64
	}
	if execDate.Valid {
		d := execDate.Time
		o.ExecutedDate = &d
	}
	if execAmount.Valid {
		o.ExecutedAmount = &execAmount.Float64
	}
	if skipReason.Valid {
		o.SkipReason = &skipReason.String
	}
	return nil
}

// GetOccurrence retrieves an occurrence by id.
func (r *Repository) GetOccurrence(id int64) (*models.Occurrence, error) {
	query := `SELECT` + occurrenceColumns + `
		FROM planfact.occurrences
		WHERE id = $1`
	o := &models.Occurrence{}
	err := scanOccurrence(r.q.QueryRow(query, id), o)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("occurrence %d: %w", id, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find occurrence: %w", err)
	}
	return o, nil
}

// ListOccurrenceDates returns the scheduled dates already materialized for
// a planned transaction.
func (r *Repository) ListOccurrenceDates(plannedID int64) ([]time.Time, error) {
	query := `
		SELECT scheduled_date
		FROM planfact.occurrences
		WHERE planned_id = $1`
	rows, err := r.q.Query(query, plannedID)
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrence dates: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence date: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateOccurrence inserts a new PENDING occurrence.
func (r *Repository) CreateOccurrence(o *models.Occurrence) error {
	query := `
		INSERT INTO planfact.occurrences
			(planned_id, scheduled_date, scheduled_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(query, o.PlannedID, o.ScheduledDate, o.ScheduledAmount, o.Status).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create occurrence: %w", err)
	}
	return nil
}

// ListPendingOccurrences returns every PENDING occurrence of the user,
// joined with the parent's direction, ascending by scheduled date.
func (r *Repository) ListPendingOccurrences(userID int64) ([]engine.PendingOccurrence, error) {
	query := `
		SELECT o.id, o.planned_id, o.scheduled_date, o.scheduled_amount, o.status,
		       o.transaction_id, o.executed_date, o.executed_amount, o.skip_reason,
		       o.created_at, o.updated_at, p.direction
		FROM planfact.occurrences o
		JOIN planfact.planned_transactions p ON p.id = o.planned_id
		WHERE p.user_id = $1 AND o.status = 'PENDING'
		ORDER BY o.scheduled_date, o.id`
	rows, err := r.q.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending occurrences: %w", err)
	}
	defer rows.Close()

	var out []engine.PendingOccurrence
	for rows.Next() {
		var (
			o          models.Occurrence
			direction  models.Direction
			txID       sql.NullInt64
			execDate   sql.NullTime
			execAmount sql.NullFloat64
			skipReason sql.NullString
		)
		err := rows.Scan(
			&o.ID, &o.PlannedID, &o.ScheduledDate, &o.ScheduledAmount, &o.Status,
			&txID, &execDate, &execAmount, &skipReason,
			&o.CreatedAt, &o.UpdatedAt, &direction,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending occurrence: %w", err)
		}
		if txID.Valid {
			o.TransactionID = &txID.Int64
		}
		if skipReason.Valid {
			o.SkipReason = &skipReason.String
		}
		out = append(out, engine.PendingOccurrence{Occurrence: o, Direction: direction})
	}
	return out, rows.Err()
}

// ListOccurrencesInRange returns occurrences of any status scheduled within
// [from, to], optionally filtered by the parent's category.
func (r *Repository) ListOccurrencesInRange(userID int64, from, to time.Time, categoryID *int64) ([]models.Occurrence, error) {
	query := `
		SELECT o.id, o.planned_id, o.scheduled_date, o.scheduled_amount, o.status,
		       o.transaction_id, o.executed_date, o.executed_amount, o.skip_reason,
		       o.created_at, o.updated_at
		FROM planfact.occurrences o
		JOIN planfact.planned_transactions p ON p.id = o.planned_id
		WHERE p.user_id = $1 AND o.scheduled_date BETWEEN $2 AND $3
		  AND ($4::bigint IS NULL OR p.category_id = $4)
		ORDER BY o.scheduled_date, o.id`
	rows, err := r.q.Query(query, userID, from, to, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences in range: %w", err)
	}
	defer rows.Close()

	var out []models.Occurrence
	for rows.Next() {
		var o models.Occurrence
		if err := scanOccurrence(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkOccurrenceExecuted resolves a PENDING occurrence as EXECUTED. The
// status guard in the WHERE clause keeps the transition monotone even if a
// stale read slipped through.
func (r *Repository) MarkOccurrenceExecuted(id, transactionID int64, executedDate time.Time, executedAmount float64) error {
	query := `
		UPDATE planfact.occurrences
		SET status = 'EXECUTED', transaction_id = $2, executed_date = $3, executed_amount = $4,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'PENDING'`
	res, err := r.q.Exec(query, id, transactionID, executedDate, executedAmount)
	if err != nil {
		return fmt.Errorf("failed to mark occurrence executed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("occurrence %d: %w", id, engine.ErrLifecycleViolation)
	}
	return nil
}

// MarkOccurrenceSkipped resolves a PENDING occurrence as SKIPPED.
func (r *Repository) MarkOccurrenceSkipped(id int64, reason *string) error {
	query := `
		UPDATE planfact.occurrences
		SET status = 'SKIPPED', skip_reason = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'PENDING'`
	res, err := r.q.Exec(query, id, reason)
	if err != nil {
		return fmt.Errorf("failed to mark occurrence skipped: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("occurrence %d: %w", id, engine.ErrLifecycleViolation)
	}
	return nil
}
