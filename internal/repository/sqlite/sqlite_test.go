package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	migrations "github.com/ahmed-hamed0/sani3y.com/db"
	dbpkg "github.com/ahmed-hamed0/sani3y.com/internal/db"
	sqlite "github.com/ahmed-hamed0/sani3y.com/internal/repository/sqlite"
	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, migrations.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return sqlite.New(d, nil)
}

func seedProfile(t *testing.T, store *sqlite.Store, id string, role models.UserRole) {
	t.Helper()
	ctx := context.Background()
	if err := store.CreateUser(ctx, &models.User{ID: id, Email: id + "@example.com", PasswordHash: "hash"}); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	if err := store.CreateProfile(ctx, &models.Profile{ID: id, FullName: "user " + id, Role: role, Governorate: "Cairo", City: "Maadi"}); err != nil {
		t.Fatalf("create profile %s: %v", id, err)
	}
	if role == models.RoleCraftsman {
		if err := store.CreateCraftsmanDetails(ctx, &models.CraftsmanDetails{ProfileID: id, Specialty: "plumbing"}); err != nil {
			t.Fatalf("create details %s: %v", id, err)
		}
	}
}

func seedJob(t *testing.T, store *sqlite.Store, id, clientID string) *models.Job {
	t.Helper()
	j := &models.Job{
		ID:          id,
		Title:       "Fix sink",
		Description: "leaking",
		Category:    "plumbing",
		ClientID:    clientID,
		Governorate: "Cairo",
		City:        "Maadi",
	}
	if err := store.CreateJob(context.Background(), j); err != nil {
		t.Fatalf("create job %s: %v", id, err)
	}
	return j
}

func TestUserCRUD(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.CreateUser(ctx, nil); err == nil {
		t.Fatal("expected error when creating nil user")
	}

	got, err := store.GetUserByID(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("missing user: got %#v, err %v", got, err)
	}
	got, err = store.GetUserByEmail(ctx, "a@a.com")
	if err != nil || got != nil {
		t.Fatalf("missing email: got %#v, err %v", got, err)
	}

	u := &models.User{ID: "u1", Email: "alice@example.com", PasswordHash: "hash"}
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if u.Created == 0 {
		t.Fatal("expected created timestamp")
	}

	got, err = store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if got == nil || got.ID != "u1" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %#v", got)
	}

	// email column is unique
	if err := store.CreateUser(ctx, &models.User{ID: "u2", Email: "alice@example.com", PasswordHash: "x"}); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
}

func TestProfileCRUD(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "p1", models.RoleClient)

	got, err := store.GetProfile(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if got == nil || got.Role != models.RoleClient || got.FullName != "user p1" {
		t.Fatalf("unexpected profile: %#v", got)
	}

	got.FullName = "renamed"
	got.City = "Giza"
	if err := store.UpdateProfile(ctx, got); err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if err := store.SetProfileRating(ctx, "p1", 4.5); err != nil {
		t.Fatalf("SetProfileRating error: %v", err)
	}

	got, err = store.GetProfile(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if got.FullName != "renamed" || got.City != "Giza" || got.Rating != 4.5 {
		t.Fatalf("unexpected profile after update: %#v", got)
	}

	if got, err := store.GetProfile(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("missing profile: got %#v, err %v", got, err)
	}
}

func TestCraftsmanDetails(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "c1", models.RoleCraftsman)

	d, err := store.GetCraftsmanDetails(ctx, "c1")
	if err != nil {
		t.Fatalf("GetCraftsmanDetails error: %v", err)
	}
	if d == nil || d.Specialty != "plumbing" {
		t.Fatalf("unexpected details: %#v", d)
	}
	if d.Skills == nil || d.Gallery == nil {
		t.Fatalf("lists must decode to empty slices, got %#v", d)
	}

	d.Specialty = "electrical"
	d.Skills = []string{"wiring", "panels"}
	if err := store.UpdateCraftsmanDetails(ctx, d); err != nil {
		t.Fatalf("UpdateCraftsmanDetails error: %v", err)
	}
	if err := store.IncrementCompletedJobs(ctx, "c1"); err != nil {
		t.Fatalf("IncrementCompletedJobs error: %v", err)
	}

	d, err = store.GetCraftsmanDetails(ctx, "c1")
	if err != nil {
		t.Fatalf("GetCraftsmanDetails error: %v", err)
	}
	if d.Specialty != "electrical" || len(d.Skills) != 2 || d.CompletedJobs != 1 {
		t.Fatalf("unexpected details after update: %#v", d)
	}
}

func TestListCraftsmen(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "c1", models.RoleCraftsman)
	seedProfile(t, store, "c2", models.RoleCraftsman)
	seedProfile(t, store, "client", models.RoleClient)

	d, _ := store.GetCraftsmanDetails(ctx, "c2")
	d.Specialty = "carpentry"
	if err := store.UpdateCraftsmanDetails(ctx, d); err != nil {
		t.Fatalf("update details: %v", err)
	}

	all, err := store.ListCraftsmen(ctx, repository.CraftsmanFilter{})
	if err != nil {
		t.Fatalf("ListCraftsmen error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d craftsmen, want 2", len(all))
	}

	plumbers, err := store.ListCraftsmen(ctx, repository.CraftsmanFilter{Specialty: "plumbing"})
	if err != nil {
		t.Fatalf("ListCraftsmen error: %v", err)
	}
	if len(plumbers) != 1 || plumbers[0].ID != "c1" {
		t.Fatalf("unexpected filter result: %#v", plumbers)
	}
}

func TestJobCRUDAndTransitions(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "client", models.RoleClient)
	job := seedJob(t, store, "j1", "client")

	if job.Status != models.JobOpen {
		t.Fatalf("new job status = %q, want open", job.Status)
	}

	got, err := store.GetJob(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJob error: %v", err)
	}
	if got == nil || got.Title != "Fix sink" || got.CraftsmanID != "" {
		t.Fatalf("unexpected job: %#v", got)
	}
	if got, err := store.GetJob(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("missing job: got %#v, err %v", got, err)
	}

	// open -> completed is not a valid source set here
	ok, err := store.TransitionJob(ctx, "j1", []models.JobStatus{models.JobAssigned}, models.JobCompleted)
	if err != nil {
		t.Fatalf("TransitionJob error: %v", err)
	}
	if ok {
		t.Fatal("transition from wrong state must not apply")
	}

	ok, err = store.TransitionJob(ctx, "j1", []models.JobStatus{models.JobOpen, models.JobAssigned}, models.JobCancelled)
	if err != nil {
		t.Fatalf("TransitionJob error: %v", err)
	}
	if !ok {
		t.Fatal("cancel from open must apply")
	}
	got, _ = store.GetJob(ctx, "j1")
	if got.Status != models.JobCancelled {
		t.Fatalf("status = %q, want cancelled", got.Status)
	}
}

func TestCancelClearsAssignment(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "client", models.RoleClient)
	seedProfile(t, store, "c1", models.RoleCraftsman)
	seedJob(t, store, "j1", "client")

	app := &models.JobApplication{ID: "a1", JobID: "j1", CraftsmanID: "c1", Proposal: "bid"}
	if err := store.CreateApplication(ctx, app); err != nil {
		t.Fatalf("create application: %v", err)
	}
	if err := store.AcceptApplication(ctx, "j1", "a1", "c1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	ok, err := store.TransitionJob(ctx, "j1", []models.JobStatus{models.JobOpen, models.JobAssigned}, models.JobCancelled)
	if err != nil || !ok {
		t.Fatalf("cancel assigned: ok=%v err=%v", ok, err)
	}
	got, _ := store.GetJob(ctx, "j1")
	if got.CraftsmanID != "" {
		t.Fatalf("cancelled job still assigned to %q", got.CraftsmanID)
	}
}

func TestListJobs(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "client", models.RoleClient)
	seedJob(t, store, "j1", "client")
	seedJob(t, store, "j2", "client")

	jobs, total, err := store.ListJobs(ctx, repository.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs error: %v", err)
	}
	if total != 2 || len(jobs) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", total, len(jobs))
	}

	jobs, total, err = store.ListJobs(ctx, repository.JobFilter{Status: models.JobOpen, Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs error: %v", err)
	}
	if total != 2 || len(jobs) != 1 {
		t.Fatalf("paged: total=%d len=%d, want total 2 and one row", total, len(jobs))
	}

	jobs, total, err = store.ListJobs(ctx, repository.JobFilter{Governorate: "Alexandria"})
	if err != nil {
		t.Fatalf("ListJobs error: %v", err)
	}
	if total != 0 || len(jobs) != 0 {
		t.Fatalf("filtered out: total=%d len=%d, want 0/0", total, len(jobs))
	}
}

func TestDuplicateApplicationRejected(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "client", models.RoleClient)
	seedProfile(t, store, "c1", models.RoleCraftsman)
	seedJob(t, store, "j1", "client")

	if err := store.CreateApplication(ctx, &models.JobApplication{ID: "a1", JobID: "j1", CraftsmanID: "c1", Proposal: "first"}); err != nil {
		t.Fatalf("create application: %v", err)
	}
	err := store.CreateApplication(ctx, &models.JobApplication{ID: "a2", JobID: "j1", CraftsmanID: "c1", Proposal: "second"})
	if !errors.Is(err, models.ErrAlreadyApplied) {
		t.Fatalf("duplicate pair: err = %v, want ErrAlreadyApplied", err)
	}
}

func TestAcceptApplicationTx(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "client", models.RoleClient)
	seedProfile(t, store, "c1", models.RoleCraftsman)
	seedProfile(t, store, "c2", models.RoleCraftsman)
	seedJob(t, store, "j1", "client")

	for _, a := range []*models.JobApplication{
		{ID: "a1", JobID: "j1", CraftsmanID: "c1", Proposal: "bid one"},
		{ID: "a2", JobID: "j1", CraftsmanID: "c2", Proposal: "bid two"},
	} {
		if err := store.CreateApplication(ctx, a); err != nil {
			t.Fatalf("create application %s: %v", a.ID, err)
		}
	}

	if err := store.AcceptApplication(ctx, "j1", "a1", "c1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	job, _ := store.GetJob(ctx, "j1")
	if job.Status != models.JobAssigned || job.CraftsmanID != "c1" {
		t.Fatalf("job after accept: %#v", job)
	}
	winner, _ := store.GetApplication(ctx, "a1")
	if winner.Status != models.ApplicationAccepted {
		t.Fatalf("winner status = %q", winner.Status)
	}
	loser, _ := store.GetApplication(ctx, "a2")
	if loser.Status != models.ApplicationRejected {
		t.Fatalf("loser status = %q", loser.Status)
	}

	// the job already left open, nothing else can be accepted
	if err := store.AcceptApplication(ctx, "j1", "a2", "c2"); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("second accept: err = %v, want ErrInvalidState", err)
	}
	loser, _ = store.GetApplication(ctx, "a2")
	if loser.Status != models.ApplicationRejected {
		t.Fatalf("failed accept must not change status, got %q", loser.Status)
	}
}

func TestOrphanedAccepted(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "client", models.RoleClient)
	seedProfile(t, store, "c1", models.RoleCraftsman)
	seedJob(t, store, "j1", "client")

	if err := store.CreateApplication(ctx, &models.JobApplication{ID: "a1", JobID: "j1", CraftsmanID: "c1", Proposal: "bid"}); err != nil {
		t.Fatalf("create application: %v", err)
	}

	orphans, err := store.ListOrphanedAccepted(ctx)
	if err != nil {
		t.Fatalf("ListOrphanedAccepted error: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("pending bid is not an orphan, got %#v", orphans)
	}

	// accepted application with the job still open
	if err := store.SetApplicationStatus(ctx, "a1", models.ApplicationAccepted); err != nil {
		t.Fatalf("set status: %v", err)
	}
	orphans, err = store.ListOrphanedAccepted(ctx)
	if err != nil {
		t.Fatalf("ListOrphanedAccepted error: %v", err)
	}
	if len(orphans) != 1 || orphans[0].ID != "a1" {
		t.Fatalf("unexpected orphans: %#v", orphans)
	}

	// the same atomic acceptance repairs it
	if err := store.AcceptApplication(ctx, "j1", "a1", "c1"); err != nil {
		t.Fatalf("repair accept: %v", err)
	}
	orphans, err = store.ListOrphanedAccepted(ctx)
	if err != nil {
		t.Fatalf("ListOrphanedAccepted error: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected no orphans after repair, got %#v", orphans)
	}
}

func TestApplicationsWithApplicant(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "client", models.RoleClient)
	seedProfile(t, store, "c1", models.RoleCraftsman)
	seedJob(t, store, "j1", "client")

	budget := int64(500)
	if err := store.CreateApplication(ctx, &models.JobApplication{ID: "a1", JobID: "j1", CraftsmanID: "c1", Proposal: "bid", Budget: &budget}); err != nil {
		t.Fatalf("create application: %v", err)
	}

	apps, err := store.ListApplicationsForJob(ctx, "j1")
	if err != nil {
		t.Fatalf("ListApplicationsForJob error: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("got %d applications, want 1", len(apps))
	}
	got := apps[0]
	if got.Applicant.ID != "c1" || got.Applicant.FullName != "user c1" || got.Applicant.Specialty != "plumbing" {
		t.Fatalf("unexpected applicant: %#v", got.Applicant)
	}
	if got.Budget == nil || *got.Budget != 500 {
		t.Fatalf("unexpected budget: %#v", got.Budget)
	}
}

func TestJobDetails(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "client", models.RoleClient)
	seedProfile(t, store, "c1", models.RoleCraftsman)
	seedJob(t, store, "j1", "client")

	d, err := store.GetJobDetails(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJobDetails error: %v", err)
	}
	if d.Client.ID != "client" || d.Craftsman != nil {
		t.Fatalf("unexpected details for open job: %#v", d)
	}

	if err := store.CreateApplication(ctx, &models.JobApplication{ID: "a1", JobID: "j1", CraftsmanID: "c1", Proposal: "bid"}); err != nil {
		t.Fatalf("create application: %v", err)
	}
	if err := store.AcceptApplication(ctx, "j1", "a1", "c1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	d, err = store.GetJobDetails(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJobDetails error: %v", err)
	}
	if d.Craftsman == nil || d.Craftsman.ID != "c1" || d.Craftsman.Specialty != "plumbing" {
		t.Fatalf("unexpected craftsman: %#v", d.Craftsman)
	}
}

func TestUsageCounter(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "c1", models.RoleCraftsman)

	if got, err := store.GetApplicationUsage(ctx, "c1"); err != nil || got != nil {
		t.Fatalf("unused counter: got %#v, err %v", got, err)
	}

	n, err := store.IncrementApplicationsUsed(ctx, "c1")
	if err != nil || n != 1 {
		t.Fatalf("first increment: n=%d err=%v", n, err)
	}
	n, err = store.IncrementApplicationsUsed(ctx, "c1")
	if err != nil || n != 2 {
		t.Fatalf("second increment: n=%d err=%v", n, err)
	}

	got, err := store.GetApplicationUsage(ctx, "c1")
	if err != nil {
		t.Fatalf("GetApplicationUsage error: %v", err)
	}
	if got == nil || got.FreeApplicationsUsed != 2 {
		t.Fatalf("unexpected usage: %#v", got)
	}
}

func TestReviews(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	seedProfile(t, store, "client", models.RoleClient)
	seedProfile(t, store, "c1", models.RoleCraftsman)

	reviews := []*models.Review{
		{ID: "r1", ReviewerID: "client", ReviewedID: "c1", Rating: 5, Comment: "great", IsPublic: true, Created: 100},
		{ID: "r2", ReviewerID: "client", ReviewedID: "c1", Rating: 2, IsPublic: false, Created: 200},
		{ID: "r3", ReviewerID: "client", ReviewedID: "c1", Rating: 4, IsPublic: true, Created: 300},
	}
	for _, rv := range reviews {
		if err := store.CreateReview(ctx, rv); err != nil {
			t.Fatalf("create review %s: %v", rv.ID, err)
		}
	}

	got, err := store.ListPublicReviews(ctx, "c1")
	if err != nil {
		t.Fatalf("ListPublicReviews error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d reviews, want 2 public", len(got))
	}
	if got[0].ID != "r3" || got[1].ID != "r1" {
		t.Fatalf("expected newest first, got %s then %s", got[0].ID, got[1].ID)
	}

	// ratings outside 1..5 never reach the table
	if err := store.CreateReview(ctx, &models.Review{ID: "r4", ReviewerID: "client", ReviewedID: "c1", Rating: 6, IsPublic: true}); err == nil {
		t.Fatal("expected rating check to fail")
	}
}

func TestTaskQueue(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	urgentID, err := store.EnqueueTask(ctx, &models.Task{Type: "ratings.recompute", Payload: []byte(`{"profile_id":"c1"}`), Priority: 1})
	if err != nil {
		t.Fatalf("enqueue error: %v", err)
	}
	if _, err := store.EnqueueTask(ctx, &models.Task{Type: "lifecycle.reconcile", Priority: 100}); err != nil {
		t.Fatalf("enqueue error: %v", err)
	}

	// lowest priority number first
	task, err := store.FetchNextTask(ctx)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if task == nil || task.ID != urgentID || task.Type != "ratings.recompute" {
		t.Fatalf("unexpected task: %#v", task)
	}
	if string(task.Payload) != `{"profile_id":"c1"}` {
		t.Fatalf("unexpected payload: %s", task.Payload)
	}

	task.Status = "done"
	if err := store.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update error: %v", err)
	}

	task, err = store.FetchNextTask(ctx)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if task == nil || task.Type != "lifecycle.reconcile" {
		t.Fatalf("unexpected task: %#v", task)
	}

	// retry scheduled in the future is not fetchable
	next := time.Now().Add(time.Hour)
	task.Status = "retry"
	task.Attempts = 1
	task.NextTryAt = &next
	task.LastError = "boom"
	if err := store.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if got, err := store.FetchNextTask(ctx); err != nil || got != nil {
		t.Fatalf("future retry fetched: %#v err %v", got, err)
	}

	if err := store.MoveTaskToDeadLetter(ctx, task); err != nil {
		t.Fatalf("dead letter error: %v", err)
	}
	if got, err := store.FetchNextTask(ctx); err != nil || got != nil {
		t.Fatalf("dead-lettered task still fetchable: %#v err %v", got, err)
	}
}
