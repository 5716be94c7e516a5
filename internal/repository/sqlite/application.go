package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
)

func (r *Store) CreateApplication(ctx context.Context, a *models.JobApplication) error {
	if a == nil {
		return fmt.Errorf("application is nil")
	}
	if a.Status == "" {
		a.Status = models.ApplicationPending
	}
	if a.SubmittedAt == 0 {
		a.SubmittedAt = now()
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO job_applications (id, job_id, craftsman_id, proposal, budget, status, submitted_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.CraftsmanID, a.Proposal, a.Budget, a.Status, a.SubmittedAt)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		// the (job_id, craftsman_id) index closed the pre-check race
		return models.ErrAlreadyApplied
	}

	return err
}

func (r *Store) GetApplication(ctx context.Context, id string) (*models.JobApplication, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, job_id, craftsman_id, proposal, budget, status, submitted_at FROM job_applications WHERE id = ?`, id)
	return scanApplication(row.Scan)
}

func (r *Store) GetApplicationByJobAndCraftsman(ctx context.Context, jobID, craftsmanID string) (*models.JobApplication, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, job_id, craftsman_id, proposal, budget, status, submitted_at FROM job_applications WHERE job_id = ? AND craftsman_id = ?`, jobID, craftsmanID)
	return scanApplication(row.Scan)
}

// ListApplicationsForJob returns every application for a job joined with the
// applicant's profile, mapped into the normalized applicant shape.
func (r *Store) ListApplicationsForJob(ctx context.Context, jobID string) ([]models.ApplicationWithApplicant, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT a.id, a.job_id, a.craftsman_id, a.proposal, a.budget, a.status, a.submitted_at,
		p.full_name, p.avatar_url, p.governorate, p.city, COALESCE(d.specialty, '')
		FROM job_applications a
		JOIN profiles p ON p.id = a.craftsman_id
		LEFT JOIN craftsman_details d ON d.profile_id = a.craftsman_id
		WHERE a.job_id = ? ORDER BY a.submitted_at DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ApplicationWithApplicant
	for rows.Next() {
		var item models.ApplicationWithApplicant
		var budget sql.NullInt64
		var avatar sql.NullString
		if err := rows.Scan(&item.ID, &item.JobID, &item.CraftsmanID, &item.Proposal, &budget, &item.Status, &item.SubmittedAt,
			&item.Applicant.FullName, &avatar, &item.Applicant.Governorate, &item.Applicant.City, &item.Applicant.Specialty); err != nil {
			return nil, err
		}
		if budget.Valid {
			item.Budget = &budget.Int64
		}
		if avatar.Valid {
			item.Applicant.AvatarURL = avatar.String
		}
		item.Applicant.ID = item.CraftsmanID
		out = append(out, item)
	}

	return out, rows.Err()
}

func (r *Store) SetApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	_, err := r.conn.Exec(ctx, `UPDATE job_applications SET status = ? WHERE id = ?`, status, id)
	return err
}

// AcceptApplication performs the acceptance in one transaction: the winning
// application becomes accepted, the job is assigned to its craftsman, and
// every competing application is rejected. A job that is no longer open or
// an application that was already rejected aborts with ErrInvalidState.
// An already-accepted application is allowed through so the reconciler can
// repair a half-applied acceptance with the same operation.
func (r *Store) AcceptApplication(ctx context.Context, jobID, applicationID, craftsmanID string) error {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `UPDATE job_applications SET status = 'accepted' WHERE id = ? AND job_id = ? AND status IN ('pending', 'accepted')`, applicationID, jobID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return models.ErrInvalidState
	}

	res, err = tx.ExecContext(ctx, `UPDATE jobs SET status = 'assigned', craftsman_id = ? WHERE id = ? AND status = 'open'`, craftsmanID, jobID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return models.ErrInvalidState
	}

	if _, err := tx.ExecContext(ctx, `UPDATE job_applications SET status = 'rejected' WHERE job_id = ? AND id <> ?`, jobID, applicationID); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// ListOrphanedAccepted returns accepted applications whose job never left
// the open state, left behind by a partially applied acceptance.
func (r *Store) ListOrphanedAccepted(ctx context.Context) ([]models.JobApplication, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT a.id, a.job_id, a.craftsman_id, a.proposal, a.budget, a.status, a.submitted_at
		FROM job_applications a JOIN jobs j ON j.id = a.job_id
		WHERE a.status = 'accepted' AND j.status = 'open'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.JobApplication
	for rows.Next() {
		a, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}

	return out, rows.Err()
}

func scanApplication(scan func(dest ...any) error) (*models.JobApplication, error) {
	var a models.JobApplication
	var budget sql.NullInt64
	if err := scan(&a.ID, &a.JobID, &a.CraftsmanID, &a.Proposal, &budget, &a.Status, &a.SubmittedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	if budget.Valid {
		a.Budget = &budget.Int64
	}

	return &a, nil
}
