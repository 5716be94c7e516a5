// Package mock provides in-memory repository fakes for tests.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
)

// Mocks bundles one fake per repository interface, all sharing the same
// in-memory state.
type Mocks struct {
	Users        *UserStore
	Profiles     *ProfileStore
	Craftsmen    *CraftsmanStore
	Jobs         *JobStore
	Applications *ApplicationStore
	Reviews      *ReviewStore
	Usage        *UsageStore
	Tasks        *TaskStore
}

func NewMocks() *Mocks {
	m := &Mocks{
		Users:     &UserStore{byID: map[string]*models.User{}},
		Profiles:  &ProfileStore{byID: map[string]*models.Profile{}},
		Craftsmen: &CraftsmanStore{byID: map[string]*models.CraftsmanDetails{}},
		Jobs:      &JobStore{byID: map[string]*models.Job{}},
		Reviews:   &ReviewStore{},
		Usage:     &UsageStore{used: map[string]int{}},
		Tasks:     &TaskStore{},
	}
	m.Applications = &ApplicationStore{byID: map[string]*models.JobApplication{}, jobs: m.Jobs}
	return m
}

type UserStore struct {
	byID      map[string]*models.User
	CreateErr error
}

var _ repository.UserRepo = (*UserStore)(nil)

func (s *UserStore) CreateUser(ctx context.Context, u *models.User) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.byID[id], nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type ProfileStore struct {
	byID      map[string]*models.Profile
	CreateErr error
}

var _ repository.ProfileRepo = (*ProfileStore)(nil)

func (s *ProfileStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *ProfileStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return s.byID[id], nil
}

func (s *ProfileStore) UpdateProfile(ctx context.Context, p *models.Profile) error {
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *ProfileStore) SetProfileRating(ctx context.Context, id string, rating float64) error {
	if p, ok := s.byID[id]; ok {
		p.Rating = rating
	}
	return nil
}

type CraftsmanStore struct {
	byID      map[string]*models.CraftsmanDetails
	CreateErr error
}

var _ repository.CraftsmanRepo = (*CraftsmanStore)(nil)

func (s *CraftsmanStore) CreateCraftsmanDetails(ctx context.Context, d *models.CraftsmanDetails) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	cp := *d
	s.byID[d.ProfileID] = &cp
	return nil
}

func (s *CraftsmanStore) GetCraftsmanDetails(ctx context.Context, profileID string) (*models.CraftsmanDetails, error) {
	return s.byID[profileID], nil
}

func (s *CraftsmanStore) UpdateCraftsmanDetails(ctx context.Context, d *models.CraftsmanDetails) error {
	cp := *d
	s.byID[d.ProfileID] = &cp
	return nil
}

func (s *CraftsmanStore) IncrementCompletedJobs(ctx context.Context, profileID string) error {
	if d, ok := s.byID[profileID]; ok {
		d.CompletedJobs++
	}
	return nil
}

func (s *CraftsmanStore) ListCraftsmen(ctx context.Context, f repository.CraftsmanFilter) ([]models.JobParty, error) {
	var out []models.JobParty
	for _, d := range s.byID {
		if f.Specialty != "" && d.Specialty != f.Specialty {
			continue
		}
		out = append(out, models.JobParty{ID: d.ProfileID, Specialty: d.Specialty})
	}
	return out, nil
}

type JobStore struct {
	byID map[string]*models.Job
}

var _ repository.JobRepo = (*JobStore)(nil)

func (s *JobStore) CreateJob(ctx context.Context, j *models.Job) error {
	cp := *j
	s.byID[j.ID] = &cp
	return nil
}

func (s *JobStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	if j, ok := s.byID[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (s *JobStore) GetJobDetails(ctx context.Context, id string) (*models.JobDetails, error) {
	j, _ := s.GetJob(ctx, id)
	if j == nil {
		return nil, nil
	}
	return &models.JobDetails{Job: *j, Client: models.JobParty{ID: j.ClientID}}, nil
}

func (s *JobStore) ListJobs(ctx context.Context, f repository.JobFilter) ([]models.Job, int64, error) {
	var out []models.Job
	for _, j := range s.byID {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.Category != "" && j.Category != f.Category {
			continue
		}
		out = append(out, *j)
	}
	return out, int64(len(out)), nil
}

func (s *JobStore) TransitionJob(ctx context.Context, id string, from []models.JobStatus, next models.JobStatus) (bool, error) {
	j, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if j.Status == f {
			j.Status = next
			if next == models.JobCancelled {
				j.CraftsmanID = ""
			}
			return true, nil
		}
	}
	return false, nil
}

type ApplicationStore struct {
	byID      map[string]*models.JobApplication
	jobs      *JobStore
	CreateErr error
	AcceptErr error
}

var _ repository.ApplicationRepo = (*ApplicationStore)(nil)

func (s *ApplicationStore) CreateApplication(ctx context.Context, a *models.JobApplication) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	for _, existing := range s.byID {
		if existing.JobID == a.JobID && existing.CraftsmanID == a.CraftsmanID {
			return models.ErrAlreadyApplied
		}
	}
	cp := *a
	s.byID[a.ID] = &cp
	return nil
}

func (s *ApplicationStore) GetApplication(ctx context.Context, id string) (*models.JobApplication, error) {
	if a, ok := s.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *ApplicationStore) GetApplicationByJobAndCraftsman(ctx context.Context, jobID, craftsmanID string) (*models.JobApplication, error) {
	for _, a := range s.byID {
		if a.JobID == jobID && a.CraftsmanID == craftsmanID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *ApplicationStore) ListApplicationsForJob(ctx context.Context, jobID string) ([]models.ApplicationWithApplicant, error) {
	var out []models.ApplicationWithApplicant
	for _, a := range s.byID {
		if a.JobID == jobID {
			out = append(out, models.ApplicationWithApplicant{
				JobApplication: *a,
				Applicant:      models.Applicant{ID: a.CraftsmanID},
			})
		}
	}
	return out, nil
}

func (s *ApplicationStore) SetApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	if a, ok := s.byID[id]; ok {
		a.Status = status
	}
	return nil
}

func (s *ApplicationStore) AcceptApplication(ctx context.Context, jobID, applicationID, craftsmanID string) error {
	if s.AcceptErr != nil {
		return s.AcceptErr
	}
	app, ok := s.byID[applicationID]
	if !ok || app.JobID != jobID || app.Status == models.ApplicationRejected {
		return models.ErrInvalidState
	}
	job, ok := s.jobs.byID[jobID]
	if !ok || job.Status != models.JobOpen {
		return models.ErrInvalidState
	}

	app.Status = models.ApplicationAccepted
	job.Status = models.JobAssigned
	job.CraftsmanID = craftsmanID
	for _, other := range s.byID {
		if other.JobID == jobID && other.ID != applicationID {
			other.Status = models.ApplicationRejected
		}
	}
	return nil
}

func (s *ApplicationStore) ListOrphanedAccepted(ctx context.Context) ([]models.JobApplication, error) {
	var out []models.JobApplication
	for _, a := range s.byID {
		if a.Status != models.ApplicationAccepted {
			continue
		}
		if j, ok := s.jobs.byID[a.JobID]; ok && j.Status == models.JobOpen {
			out = append(out, *a)
		}
	}
	return out, nil
}

// Put stores an application directly, bypassing the duplicate guard.
func (s *ApplicationStore) Put(a *models.JobApplication) {
	cp := *a
	s.byID[a.ID] = &cp
}

type ReviewStore struct {
	Stored    []models.Review
	CreateErr error
}

var _ repository.ReviewRepo = (*ReviewStore)(nil)

func (s *ReviewStore) CreateReview(ctx context.Context, rv *models.Review) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.Stored = append(s.Stored, *rv)
	return nil
}

func (s *ReviewStore) ListPublicReviews(ctx context.Context, reviewedID string) ([]models.Review, error) {
	var out []models.Review
	for _, rv := range s.Stored {
		if rv.ReviewedID == reviewedID && rv.IsPublic {
			out = append(out, rv)
		}
	}
	return out, nil
}

type UsageStore struct {
	used map[string]int
}

var _ repository.UsageRepo = (*UsageStore)(nil)

func (s *UsageStore) IncrementApplicationsUsed(ctx context.Context, userID string) (int, error) {
	s.used[userID]++
	return s.used[userID], nil
}

func (s *UsageStore) GetApplicationUsage(ctx context.Context, userID string) (*models.ApplicationUsage, error) {
	n, ok := s.used[userID]
	if !ok {
		return nil, nil
	}
	return &models.ApplicationUsage{UserID: userID, FreeApplicationsUsed: n}, nil
}

type TaskStore struct {
	Enqueued   []models.Task
	EnqueueErr error
	nextID     int64
}

var _ repository.TaskRepo = (*TaskStore)(nil)

func (s *TaskStore) EnqueueTask(ctx context.Context, t *models.Task) (int64, error) {
	if s.EnqueueErr != nil {
		return 0, s.EnqueueErr
	}
	s.nextID++
	t.ID = s.nextID
	if t.ScheduledAt.IsZero() {
		t.ScheduledAt = time.Now()
	}
	s.Enqueued = append(s.Enqueued, *t)
	return t.ID, nil
}

func (s *TaskStore) FetchNextTask(ctx context.Context) (*models.Task, error) {
	for i := range s.Enqueued {
		t := &s.Enqueued[i]
		if t.Status == "" || t.Status == "queued" || t.Status == "retry" {
			t.Status = "running"
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *TaskStore) UpdateTask(ctx context.Context, t *models.Task) error {
	for i := range s.Enqueued {
		if s.Enqueued[i].ID == t.ID {
			s.Enqueued[i] = *t
			return nil
		}
	}
	return fmt.Errorf("task %d not found", t.ID)
}

func (s *TaskStore) MoveTaskToDeadLetter(ctx context.Context, t *models.Task) error {
	for i := range s.Enqueued {
		if s.Enqueued[i].ID == t.ID {
			s.Enqueued = append(s.Enqueued[:i], s.Enqueued[i+1:]...)
			return nil
		}
	}
	return nil
}
