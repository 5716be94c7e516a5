// Package lifecycle owns the job and application state machine: posting,
// bidding, acceptance, rejection, completion and cancellation. Ownership
// and state guards live here and at the store, never in the client.
package lifecycle

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
	"github.com/google/uuid"
)

type Service struct {
	jobs      repository.JobRepo
	apps      repository.ApplicationRepo
	profiles  repository.ProfileRepo
	craftsmen repository.CraftsmanRepo
	usage     repository.UsageRepo
	logger    *slog.Logger
}

func NewService(
	jobs repository.JobRepo,
	apps repository.ApplicationRepo,
	profiles repository.ProfileRepo,
	craftsmen repository.CraftsmanRepo,
	usage repository.UsageRepo,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, apps: apps, profiles: profiles, craftsmen: craftsmen, usage: usage, logger: logger}
}

// JobInput carries the client-supplied fields of a new job.
type JobInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Governorate string `json:"governorate"`
	City        string `json:"city"`
	Address     string `json:"address,omitempty"`
	BudgetMin   *int64 `json:"budget_min,omitempty"`
	BudgetMax   *int64 `json:"budget_max,omitempty"`
}

// PostJob creates a job in the open state, owned by the acting client.
func (s *Service) PostJob(ctx context.Context, clientID string, in JobInput) (*models.Job, error) {
	profile, err := s.profiles.GetProfile(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, models.ErrNotFound
	}
	if profile.Role != models.RoleClient {
		return nil, models.ErrNotAllowed
	}

	j := &models.Job{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      models.JobOpen,
		ClientID:    clientID,
		Governorate: in.Governorate,
		City:        in.City,
		Address:     in.Address,
		BudgetMin:   in.BudgetMin,
		BudgetMax:   in.BudgetMax,
	}
	if err := s.jobs.CreateJob(ctx, j); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	s.logger.Info("job posted", "job_id", j.ID, "client_id", clientID, "category", j.Category)

	return j, nil
}

// SubmitApplication files one bid for the (job, craftsman) pair. A prior
// application in any state fails with ErrAlreadyApplied; the unique index
// on the pair backs the pre-check. The per-user applications counter is
// bumped on success, creating its row on first use.
func (s *Service) SubmitApplication(ctx context.Context, craftsmanID, jobID, proposal string, budget *int64) (*models.JobApplication, error) {
	profile, err := s.profiles.GetProfile(ctx, craftsmanID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, models.ErrNotFound
	}
	if profile.Role != models.RoleCraftsman {
		return nil, models.ErrNotAllowed
	}

	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, models.ErrNotFound
	}
	if job.ClientID == craftsmanID {
		return nil, models.ErrNotAllowed
	}
	if job.Status != models.JobOpen {
		return nil, models.ErrInvalidState
	}

	existing, err := s.apps.GetApplicationByJobAndCraftsman(ctx, jobID, craftsmanID)
	if err != nil {
		return nil, fmt.Errorf("check existing application: %w", err)
	}
	if existing != nil {
		return nil, models.ErrAlreadyApplied
	}

	a := &models.JobApplication{
		ID:          uuid.NewString(),
		JobID:       jobID,
		CraftsmanID: craftsmanID,
		Proposal:    proposal,
		Budget:      budget,
		Status:      models.ApplicationPending,
	}
	if err := s.apps.CreateApplication(ctx, a); err != nil {
		return nil, err
	}

	used, err := s.usage.IncrementApplicationsUsed(ctx, craftsmanID)
	if err != nil {
		// the application row stands; the counter is best effort
		s.logger.Warn("failed to bump applications counter", "craftsman_id", craftsmanID, "err", err)
	} else {
		s.logger.Info("application submitted", "application_id", a.ID, "job_id", jobID, "applications_used", used)
	}

	return a, nil
}

// ListApplications returns a job's applications for its owner.
func (s *Service) ListApplications(ctx context.Context, actorID, jobID string) ([]models.ApplicationWithApplicant, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return nil, models.ErrNotFound
	}
	if job.ClientID != actorID {
		return nil, models.ErrNotAllowed
	}

	return s.apps.ListApplicationsForJob(ctx, jobID)
}

// AcceptApplication assigns a job through its owner accepting exactly one
// bid. After it succeeds one application is accepted, the job is assigned
// to that craftsman, and every competing application is rejected; the
// store applies all three writes in one transaction.
func (s *Service) AcceptApplication(ctx context.Context, actorID, applicationID string) error {
	app, err := s.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return models.ErrNotFound
	}

	job, err := s.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return models.ErrNotFound
	}
	if job.ClientID != actorID {
		return models.ErrNotAllowed
	}

	if err := s.apps.AcceptApplication(ctx, app.JobID, applicationID, app.CraftsmanID); err != nil {
		return err
	}
	s.logger.Info("application accepted", "application_id", applicationID, "job_id", app.JobID, "craftsman_id", app.CraftsmanID)

	return nil
}

// RejectApplication declines a pending bid. Only the job owner may reject.
func (s *Service) RejectApplication(ctx context.Context, actorID, applicationID string) error {
	app, err := s.apps.GetApplication(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return models.ErrNotFound
	}

	job, err := s.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return models.ErrNotFound
	}
	if job.ClientID != actorID {
		return models.ErrNotAllowed
	}
	if app.Status != models.ApplicationPending {
		return models.ErrInvalidState
	}

	return s.apps.SetApplicationStatus(ctx, applicationID, models.ApplicationRejected)
}

// CompleteJob marks an assigned job completed. Allowed for the job owner
// and for the assigned craftsman; any other caller, or a job not in the
// assigned state, leaves the row untouched.
func (s *Service) CompleteJob(ctx context.Context, actorID, jobID string) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return models.ErrNotFound
	}
	if actorID != job.ClientID && actorID != job.CraftsmanID {
		return models.ErrNotAllowed
	}

	ok, err := s.jobs.TransitionJob(ctx, jobID, []models.JobStatus{models.JobAssigned}, models.JobCompleted)
	if err != nil {
		return fmt.Errorf("transition job: %w", err)
	}
	if !ok {
		return models.ErrInvalidState
	}

	if job.CraftsmanID != "" {
		if err := s.craftsmen.IncrementCompletedJobs(ctx, job.CraftsmanID); err != nil {
			s.logger.Warn("failed to bump completed jobs", "craftsman_id", job.CraftsmanID, "err", err)
		}
	}
	s.logger.Info("job completed", "job_id", jobID, "by", actorID)

	return nil
}

// CancelJob moves a job to the terminal cancelled state. Owner only,
// reachable from open and assigned.
func (s *Service) CancelJob(ctx context.Context, actorID, jobID string) error {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job == nil {
		return models.ErrNotFound
	}
	if job.ClientID != actorID {
		return models.ErrNotAllowed
	}

	ok, err := s.jobs.TransitionJob(ctx, jobID, []models.JobStatus{models.JobOpen, models.JobAssigned}, models.JobCancelled)
	if err != nil {
		return fmt.Errorf("transition job: %w", err)
	}
	if !ok {
		return models.ErrInvalidState
	}
	s.logger.Info("job cancelled", "job_id", jobID)

	return nil
}

// Reconcile repairs acceptances that were applied outside the transaction
// path: an accepted application whose job is still open is re-driven
// through the same atomic acceptance so the pair converges.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	orphans, err := s.apps.ListOrphanedAccepted(ctx)
	if err != nil {
		return 0, fmt.Errorf("list orphaned acceptances: %w", err)
	}

	repaired := 0
	for _, app := range orphans {
		if err := s.apps.AcceptApplication(ctx, app.JobID, app.ID, app.CraftsmanID); err != nil {
			s.logger.Error("reconcile acceptance", "application_id", app.ID, "job_id", app.JobID, "err", err)
			continue
		}
		s.logger.Info("acceptance reconciled", "application_id", app.ID, "job_id", app.JobID)
		repaired++
	}

	return repaired, nil
}
