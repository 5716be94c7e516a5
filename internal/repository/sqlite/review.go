package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
)

func (r *Store) CreateReview(ctx context.Context, rv *models.Review) error {
	if rv == nil {
		return fmt.Errorf("review is nil")
	}
	if rv.Created == 0 {
		rv.Created = now()
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO reviews (id, reviewer_id, reviewed_id, rating, comment, is_public, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rv.ID, rv.ReviewerID, rv.ReviewedID, rv.Rating, nullString(rv.Comment), rv.IsPublic, rv.Created)
	return err
}

// ListPublicReviews returns the public reviews for a subject, newest first.
func (r *Store) ListPublicReviews(ctx context.Context, reviewedID string) ([]models.Review, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, reviewer_id, reviewed_id, rating, comment, is_public, created FROM reviews WHERE reviewed_id = ? AND is_public = 1 ORDER BY created DESC`, reviewedID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		var rv models.Review
		var comment sql.NullString
		if err := rows.Scan(&rv.ID, &rv.ReviewerID, &rv.ReviewedID, &rv.Rating, &comment, &rv.IsPublic, &rv.Created); err != nil {
			return nil, err
		}
		if comment.Valid {
			rv.Comment = comment.String
		}
		out = append(out, rv)
	}

	return out, rows.Err()
}
