package repository

import (
	"database/sql"
	"fmt"

	"github.com/ekomarov/planfact/internal/engine"
	"github.com/ekomarov/planfact/internal/models"
)

// CreatePlanned creates a planned transaction, flattening the optional
// recurrence rule into nullable columns.
func (r *Repository) CreatePlanned(p *models.PlannedTransaction) error {
	var (
		kind, unit, endCondition sql.NullString
		endDate                  sql.NullTime
		interval, count          sql.NullInt64
	)
	if rule := p.Rule; rule != nil {
		kind = sql.NullString{String: string(rule.Kind), Valid: true}
		endCondition = sql.NullString{String: string(rule.EndCondition), Valid: true}
		interval = sql.NullInt64{Int64: int64(rule.Interval), Valid: true}
		if rule.IntervalUnit != "" {
			unit = sql.NullString{String: string(rule.IntervalUnit), Valid: true}
		}
		if rule.EndDate != nil {
			endDate = sql.NullTime{Time: *rule.EndDate, Valid: true}
		}
		if rule.OccurrenceCount > 0 {
			count = sql.NullInt64{Int64: int64(rule.OccurrenceCount), Valid: true}
		}
	}

	query := `
		INSERT INTO planfact.planned_transactions
			(user_id, category_id, amount, direction, anchor_date, description, is_active,
			 recurrence_kind, recurrence_interval, interval_unit, end_condition, end_date, occurrence_count,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(query,
		p.UserID, p.CategoryID, p.Amount, p.Direction, p.AnchorDate, p.Description, p.IsActive,
		kind, interval, unit, endCondition, endDate, count,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create planned transaction: %w", err)
	}
	return nil
}

const plannedColumns = `
	id, user_id, category_id, amount, direction, anchor_date, description, is_active,
	recurrence_kind, recurrence_interval, interval_unit, end_condition, end_date, occurrence_count,
	created_at, updated_at`

func scanPlanned(row interface{ Scan(...interface{}) error }) (*models.PlannedTransaction, error) {
	p := &models.PlannedTransaction{}
	var (
		kind, unit, endCondition sql.NullString
		endDate                  sql.NullTime
		interval, count          sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.CategoryID, &p.Amount, &p.Direction, &p.AnchorDate, &p.Description, &p.IsActive,
		&kind, &interval, &unit, &endCondition, &endDate, &count,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if kind.Valid {
		rule := &models.RecurrenceRule{
			Kind:         models.RecurrenceKind(kind.String),
			Interval:     int(interval.Int64),
			EndCondition: models.EndCondition(endCondition.String),
		}
		if unit.Valid {
			rule.IntervalUnit = models.IntervalUnit(unit.String)
		}
		if endDate.Valid {
			d := endDate.Time
			rule.EndDate = &d
		}
		if count.Valid {
			rule.OccurrenceCount = int(count.Int64)
		}
		p.Rule = rule
	}
	return p, nil
}

// GetPlanned retrieves a planned transaction by id.
func (r *Repository) GetPlanned(id int64) (*models.PlannedTransaction, error) {
	query := `SELECT` + plannedColumns + `
		FROM planfact.planned_transactions
		WHERE id = $1`
	p, err := scanPlanned(r.q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("planned transaction %d: %w", id, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find planned transaction: %w", err)
	}
	return p, nil
}

// ListActivePlanned returns every active planned transaction of the user.
func (r *Repository) ListActivePlanned(userID int64) ([]models.PlannedTransaction, error) {
	query := `SELECT` + plannedColumns + `
		FROM planfact.planned_transactions
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY id`
	rows, err := r.q.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list planned transactions: %w", err)
	}
	defer rows.Close()

	var out []models.PlannedTransaction
	for rows.Next() {
		p, err := scanPlanned(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planned transaction: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// ListPlanned returns every planned transaction of the user, active or not.
func (r *Repository) ListPlanned(userID int64) ([]models.PlannedTransaction, error) {
	query := `SELECT` + plannedColumns + `
		FROM planfact.planned_transactions
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.q.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list planned transactions: %w", err)
	}
	defer rows.Close()

	var out []models.PlannedTransaction
	for rows.Next() {
		p, err := scanPlanned(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planned transaction: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// DeactivatePlanned marks a planned transaction inactive; its occurrences
// stay untouched.
func (r *Repository) DeactivatePlanned(id, userID int64) error {
	query := `
		UPDATE planfact.planned_transactions
		SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2`
	res, err := r.q.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate planned transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("planned transaction %d: %w", id, engine.ErrNotFound)
	}
	return nil
}
