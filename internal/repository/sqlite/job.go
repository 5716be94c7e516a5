package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
)

const jobColumns = `id, title, description, category, status, client_id, craftsman_id, governorate, city, address, budget_min, budget_max, created`

func (r *Store) CreateJob(ctx context.Context, j *models.Job) error {
	if j == nil {
		return fmt.Errorf("job is nil")
	}
	if j.Status == "" {
		j.Status = models.JobOpen
	}
	if j.Created == 0 {
		j.Created = now()
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Title, j.Description, j.Category, j.Status, j.ClientID, nullString(j.CraftsmanID),
		j.Governorate, j.City, nullString(j.Address), j.BudgetMin, j.BudgetMax, j.Created)
	return err
}

func (r *Store) GetJob(ctx context.Context, id string) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return j, nil
}

// GetJobDetails returns a job with its client and (when assigned) craftsman
// mapped into one normalized shape.
func (r *Store) GetJobDetails(ctx context.Context, id string) (*models.JobDetails, error) {
	j, err := r.GetJob(ctx, id)
	if err != nil || j == nil {
		return nil, err
	}

	d := &models.JobDetails{Job: *j}

	client, err := r.jobParty(ctx, j.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	if client != nil {
		d.Client = *client
	}

	if j.CraftsmanID != "" {
		craftsman, err := r.jobParty(ctx, j.CraftsmanID)
		if err != nil {
			return nil, fmt.Errorf("load craftsman: %w", err)
		}
		d.Craftsman = craftsman
	}

	return d, nil
}

func (r *Store) jobParty(ctx context.Context, profileID string) (*models.JobParty, error) {
	row := r.conn.QueryRow(ctx, `SELECT p.id, p.full_name, p.avatar_url, p.rating, COALESCE(d.specialty, '') FROM profiles p LEFT JOIN craftsman_details d ON d.profile_id = p.id WHERE p.id = ?`, profileID)
	var party models.JobParty
	var avatar sql.NullString
	if err := row.Scan(&party.ID, &party.FullName, &avatar, &party.Rating, &party.Specialty); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	if avatar.Valid {
		party.AvatarURL = avatar.String
	}

	return &party, nil
}

func (r *Store) ListJobs(ctx context.Context, f repository.JobFilter) ([]models.Job, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Governorate != "" {
		where = append(where, "governorate = ?")
		args = append(args, f.Governorate)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.ClientID != "" {
		where = append(where, "client_id = ?")
		args = append(args, f.ClientID)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM jobs WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	listArgs := append(args, limit, f.Offset)
	rows, err := r.conn.QueryRows(ctx, `SELECT `+jobColumns+` FROM jobs WHERE `+cond+` ORDER BY created DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *j)
	}

	return out, total, rows.Err()
}

// TransitionJob conditionally moves a job to next when its current status is
// one of from. Cancelling clears the assignment so craftsman_id stays
// non-null only for assigned and completed jobs.
func (r *Store) TransitionJob(ctx context.Context, id string, from []models.JobStatus, next models.JobStatus) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("no source states")
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	args := []any{next, id}
	for _, s := range from {
		args = append(args, s)
	}

	q := `UPDATE jobs SET status = ? WHERE id = ? AND status IN (` + placeholders + `)`
	if next == models.JobCancelled {
		q = `UPDATE jobs SET status = ?, craftsman_id = NULL WHERE id = ? AND status IN (` + placeholders + `)`
	}

	res, err := r.conn.Exec(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func scanJob(scan func(dest ...any) error) (*models.Job, error) {
	var j models.Job
	var craftsman, address sql.NullString
	var budgetMin, budgetMax sql.NullInt64
	if err := scan(&j.ID, &j.Title, &j.Description, &j.Category, &j.Status, &j.ClientID, &craftsman,
		&j.Governorate, &j.City, &address, &budgetMin, &budgetMax, &j.Created); err != nil {
		return nil, err
	}
	if craftsman.Valid {
		j.CraftsmanID = craftsman.String
	}
	if address.Valid {
		j.Address = address.String
	}
	if budgetMin.Valid {
		j.BudgetMin = &budgetMin.Int64
	}
	if budgetMax.Valid {
		j.BudgetMax = &budgetMax.Int64
	}

	return &j, nil
}
