package sqlite

import (
	"context"
	"database/sql"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
)

// IncrementApplicationsUsed bumps the per-user applications counter,
// creating the row on first use, and returns the new count.
func (r *Store) IncrementApplicationsUsed(ctx context.Context, userID string) (int, error) {
	_, err := r.conn.Exec(ctx, `INSERT INTO user_applications_count (user_id, free_applications_used) VALUES (?, 1) ON CONFLICT(user_id) DO UPDATE SET free_applications_used = free_applications_used + 1`, userID)
	if err != nil {
		return 0, err
	}

	var used int
	if err := r.conn.QueryRow(ctx, `SELECT free_applications_used FROM user_applications_count WHERE user_id = ?`, userID).Scan(&used); err != nil {
		return 0, err
	}

	return used, nil
}

func (r *Store) GetApplicationUsage(ctx context.Context, userID string) (*models.ApplicationUsage, error) {
	row := r.conn.QueryRow(ctx, `SELECT user_id, free_applications_used FROM user_applications_count WHERE user_id = ?`, userID)
	var u models.ApplicationUsage
	if err := row.Scan(&u.UserID, &u.FreeApplicationsUsed); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &u, nil
}
