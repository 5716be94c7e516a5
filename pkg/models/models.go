package models

import (
	"encoding/json"
	"time"
)

// UserRole distinguishes job posters from service providers.
type UserRole string

const (
	RoleClient    UserRole = "client"
	RoleCraftsman UserRole = "craftsman"
)

// JobStatus is the lifecycle state of a posted job.
type JobStatus string

const (
	JobOpen      JobStatus = "open"
	JobAssigned  JobStatus = "assigned"
	JobCompleted JobStatus = "completed"
	JobCancelled JobStatus = "cancelled"
)

// CanTransition reports whether a job may move from s to next. Assignment
// happens only through accepting an application; completed and cancelled
// are terminal.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobOpen:
		return next == JobAssigned || next == JobCancelled
	case JobAssigned:
		return next == JobCompleted || next == JobCancelled
	default:
		return false
	}
}

// ApplicationStatus is the state of a craftsman's bid on a job.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

type User struct {
	ID           string `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
}

// Profile is the shared identity record for any user regardless of role.
// Its ID equals the owning user's ID.
type Profile struct {
	ID          string   `json:"id" db:"id"`
	FullName    string   `json:"full_name" db:"full_name"`
	Role        UserRole `json:"role" db:"role"`
	Governorate string   `json:"governorate" db:"governorate"`
	City        string   `json:"city" db:"city"`
	Phone       string   `json:"phone" db:"phone"`
	AvatarURL   string   `json:"avatar_url,omitempty" db:"avatar_url"`
	Rating      float64  `json:"rating" db:"rating"`
	Created     int64    `json:"created" db:"created"`
	Updated     int64    `json:"updated" db:"updated"`
}

// CraftsmanDetails is the 1:1 extension of a craftsman profile.
type CraftsmanDetails struct {
	ProfileID       string   `json:"profile_id" db:"profile_id"`
	Specialty       string   `json:"specialty" db:"specialty"`
	Bio             string   `json:"bio,omitempty" db:"bio"`
	Skills          []string `json:"skills" db:"skills"`
	Gallery         []string `json:"gallery" db:"gallery"`
	ExperienceYears int      `json:"experience_years" db:"experience_years"`
	CompletedJobs   int      `json:"completed_jobs" db:"completed_jobs"`
	IsAvailable     bool     `json:"is_available" db:"is_available"`
	Updated         int64    `json:"updated" db:"updated"`
}

type Job struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Status      JobStatus `json:"status" db:"status"`
	ClientID    string    `json:"client_id" db:"client_id"`
	CraftsmanID string    `json:"craftsman_id,omitempty" db:"craftsman_id"`
	Governorate string    `json:"governorate" db:"governorate"`
	City        string    `json:"city" db:"city"`
	Address     string    `json:"address,omitempty" db:"address"`
	BudgetMin   *int64    `json:"budget_min,omitempty" db:"budget_min"`
	BudgetMax   *int64    `json:"budget_max,omitempty" db:"budget_max"`
	Created     int64     `json:"created" db:"created"`
}

type JobApplication struct {
	ID          string            `json:"id" db:"id"`
	JobID       string            `json:"job_id" db:"job_id"`
	CraftsmanID string            `json:"craftsman_id" db:"craftsman_id"`
	Proposal    string            `json:"proposal" db:"proposal"`
	Budget      *int64            `json:"budget,omitempty" db:"budget"`
	Status      ApplicationStatus `json:"status" db:"status"`
	SubmittedAt int64             `json:"submitted_at" db:"submitted_at"`
}

// Applicant is the normalized applicant shape attached to an application
// when listing bids for a job. Populated by one explicit mapping step
// right after the joined fetch.
type Applicant struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Governorate string `json:"governorate"`
	City        string `json:"city"`
	Specialty   string `json:"specialty,omitempty"`
}

type ApplicationWithApplicant struct {
	JobApplication
	Applicant Applicant `json:"applicant"`
}

// JobParty is the normalized client/craftsman subdocument of a job detail.
type JobParty struct {
	ID        string  `json:"id"`
	FullName  string  `json:"full_name"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Rating    float64 `json:"rating"`
	Specialty string  `json:"specialty,omitempty"`
}

type JobDetails struct {
	Job
	Client    JobParty  `json:"client"`
	Craftsman *JobParty `json:"craftsman,omitempty"`
}

type Review struct {
	ID         string `json:"id" db:"id"`
	ReviewerID string `json:"reviewer_id" db:"reviewer_id"`
	ReviewedID string `json:"reviewed_id" db:"reviewed_id"`
	Rating     int    `json:"rating" db:"rating"`
	Comment    string `json:"comment,omitempty" db:"comment"`
	IsPublic   bool   `json:"is_public" db:"is_public"`
	Created    int64  `json:"created" db:"created"`
}

// ApplicationUsage tracks how many applications a craftsman has spent.
// The row is created lazily on first use.
type ApplicationUsage struct {
	UserID               string `json:"user_id" db:"user_id"`
	FreeApplicationsUsed int    `json:"free_applications_used" db:"free_applications_used"`
}

// Task is a queued background unit of work (acceptance reconciliation,
// rating recompute, signup repair).
type Task struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}
