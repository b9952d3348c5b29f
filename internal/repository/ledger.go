package repository

import (
	"fmt"

	"github.com/ekomarov/planfact/internal/models"
)

// SumPostedTransactions returns the ledger's running total for the user:
// inflows minus outflows over every posted transaction, no date filter.
func (r *Repository) SumPostedTransactions(userID int64) (float64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'INFLOW' THEN amount ELSE -amount END), 0)
		FROM planfact.transactions
		WHERE user_id = $1`
	var sum float64
	if err := r.q.QueryRow(query, userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum posted transactions: %w", err)
	}
	return sum, nil
}

// PostTransaction inserts a ledger transaction and returns its id.
func (r *Repository) PostTransaction(t *models.Transaction) (int64, error) {
	query := `
		INSERT INTO planfact.transactions
			(user_id, category_id, amount, direction, date, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.q.QueryRow(query, t.UserID, t.CategoryID, t.Amount, t.Direction, t.Date, t.Description).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to post transaction: %w", err)
	}
	return t.ID, nil
}
