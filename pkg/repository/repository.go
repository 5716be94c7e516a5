package repository

import (
	"context"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	SetProfileRating(ctx context.Context, id string, rating float64) error
}

type CraftsmanRepo interface {
	CreateCraftsmanDetails(ctx context.Context, d *models.CraftsmanDetails) error
	GetCraftsmanDetails(ctx context.Context, profileID string) (*models.CraftsmanDetails, error)
	UpdateCraftsmanDetails(ctx context.Context, d *models.CraftsmanDetails) error
	IncrementCompletedJobs(ctx context.Context, profileID string) error
	ListCraftsmen(ctx context.Context, f CraftsmanFilter) ([]models.JobParty, error)
}

type JobRepo interface {
	CreateJob(ctx context.Context, j *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	GetJobDetails(ctx context.Context, id string) (*models.JobDetails, error)
	ListJobs(ctx context.Context, f JobFilter) ([]models.Job, int64, error)
	// TransitionJob moves a job to next only when its current status is one
	// of from; reports false when no row changed.
	TransitionJob(ctx context.Context, id string, from []models.JobStatus, next models.JobStatus) (bool, error)
}

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, a *models.JobApplication) error
	GetApplication(ctx context.Context, id string) (*models.JobApplication, error)
	GetApplicationByJobAndCraftsman(ctx context.Context, jobID, craftsmanID string) (*models.JobApplication, error)
	ListApplicationsForJob(ctx context.Context, jobID string) ([]models.ApplicationWithApplicant, error)
	SetApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) error
	// AcceptApplication atomically marks the application accepted, assigns
	// the job to its craftsman, and rejects every competing application.
	AcceptApplication(ctx context.Context, jobID, applicationID, craftsmanID string) error
	// ListOrphanedAccepted returns accepted applications whose job is
	// still open, for the reconciler.
	ListOrphanedAccepted(ctx context.Context) ([]models.JobApplication, error)
}

type ReviewRepo interface {
	CreateReview(ctx context.Context, rv *models.Review) error
	ListPublicReviews(ctx context.Context, reviewedID string) ([]models.Review, error)
}

type UsageRepo interface {
	IncrementApplicationsUsed(ctx context.Context, userID string) (int, error)
	GetApplicationUsage(ctx context.Context, userID string) (*models.ApplicationUsage, error)
}

type TaskRepo interface {
	EnqueueTask(ctx context.Context, t *models.Task) (int64, error)
	FetchNextTask(ctx context.Context) (*models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	MoveTaskToDeadLetter(ctx context.Context, t *models.Task) error
}

// JobFilter narrows job listings. Zero values mean no constraint.
type JobFilter struct {
	Category    string
	Governorate string
	Status      models.JobStatus
	ClientID    string
	Limit       int
	Offset      int
}

// CraftsmanFilter narrows craftsman listings.
type CraftsmanFilter struct {
	Specialty   string
	Governorate string
	Limit       int
	Offset      int
}
