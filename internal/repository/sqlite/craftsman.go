package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
)

func (r *Store) CreateCraftsmanDetails(ctx context.Context, d *models.CraftsmanDetails) error {
	if d == nil {
		return fmt.Errorf("craftsman details is nil")
	}
	skills, gallery, err := encodeLists(d)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, `INSERT INTO craftsman_details (profile_id, specialty, bio, skills, gallery, experience_years, completed_jobs, is_available, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ProfileID, d.Specialty, d.Bio, skills, gallery, d.ExperienceYears, d.CompletedJobs, d.IsAvailable, now())
	return err
}

func (r *Store) GetCraftsmanDetails(ctx context.Context, profileID string) (*models.CraftsmanDetails, error) {
	row := r.conn.QueryRow(ctx, `SELECT profile_id, specialty, bio, skills, gallery, experience_years, completed_jobs, is_available, updated FROM craftsman_details WHERE profile_id = ?`, profileID)
	var d models.CraftsmanDetails
	var skills, gallery string
	if err := row.Scan(&d.ProfileID, &d.Specialty, &d.Bio, &skills, &gallery, &d.ExperienceYears, &d.CompletedJobs, &d.IsAvailable, &d.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	if err := json.Unmarshal([]byte(skills), &d.Skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	if err := json.Unmarshal([]byte(gallery), &d.Gallery); err != nil {
		return nil, fmt.Errorf("decode gallery: %w", err)
	}

	return &d, nil
}

func (r *Store) UpdateCraftsmanDetails(ctx context.Context, d *models.CraftsmanDetails) error {
	if d == nil {
		return fmt.Errorf("craftsman details is nil")
	}
	skills, gallery, err := encodeLists(d)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, `UPDATE craftsman_details SET specialty = ?, bio = ?, skills = ?, gallery = ?, experience_years = ?, is_available = ?, updated = ? WHERE profile_id = ?`,
		d.Specialty, d.Bio, skills, gallery, d.ExperienceYears, d.IsAvailable, now(), d.ProfileID)
	return err
}

func (r *Store) IncrementCompletedJobs(ctx context.Context, profileID string) error {
	_, err := r.conn.Exec(ctx, `UPDATE craftsman_details SET completed_jobs = completed_jobs + 1, updated = ? WHERE profile_id = ?`, now(), profileID)
	return err
}

func (r *Store) ListCraftsmen(ctx context.Context, f repository.CraftsmanFilter) ([]models.JobParty, error) {
	q := `SELECT p.id, p.full_name, p.avatar_url, p.rating, d.specialty FROM profiles p JOIN craftsman_details d ON d.profile_id = p.id WHERE p.role = 'craftsman'`
	args := []any{}
	if f.Specialty != "" {
		q += ` AND d.specialty = ?`
		args = append(args, f.Specialty)
	}
	if f.Governorate != "" {
		q += ` AND p.governorate = ?`
		args = append(args, f.Governorate)
	}
	q += ` ORDER BY p.rating DESC, p.full_name LIMIT ? OFFSET ?`
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.JobParty
	for rows.Next() {
		var c models.JobParty
		var avatar sql.NullString
		if err := rows.Scan(&c.ID, &c.FullName, &avatar, &c.Rating, &c.Specialty); err != nil {
			return nil, err
		}
		if avatar.Valid {
			c.AvatarURL = avatar.String
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func encodeLists(d *models.CraftsmanDetails) (string, string, error) {
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Gallery == nil {
		d.Gallery = []string{}
	}
	skills, err := json.Marshal(d.Skills)
	if err != nil {
		return "", "", fmt.Errorf("encode skills: %w", err)
	}
	gallery, err := json.Marshal(d.Gallery)
	if err != nil {
		return "", "", fmt.Errorf("encode gallery: %w", err)
	}

	return string(skills), string(gallery), nil
}
