package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ahmed-hamed0/sani3y.com/internal/lifecycle"
	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
	"github.com/gorilla/mux"
)

type JobsHandler struct {
	jobRepo   repository.JobRepo
	lifecycle *lifecycle.Service
}

func NewJobsHandler(jr repository.JobRepo, lc *lifecycle.Service) *JobsHandler {
	return &JobsHandler{jobRepo: jr, lifecycle: lc}
}

func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.JobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" || in.Category == "" || in.Governorate == "" || in.City == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}
	if in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMin > *in.BudgetMax {
		http.Error(w, "budget_min exceeds budget_max", http.StatusBadRequest)
		return
	}

	job, err := h.lifecycle.PostJob(r.Context(), userID(r), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, job, http.StatusCreated)
}

func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := repository.JobFilter{
		Category:    q.Get("category"),
		Governorate: q.Get("governorate"),
		Status:      models.JobStatus(q.Get("status")),
		Limit:       50,
	}
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			f.Limit = v
		}
	}
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			f.Offset = v
		}
	}

	jobs, total, err := h.jobRepo.ListJobs(r.Context(), f)
	if err != nil {
		http.Error(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	resp := map[string]any{
		"total":  total,
		"limit":  f.Limit,
		"offset": f.Offset,
		"items":  jobs,
	}

	writeJSON(w, resp, http.StatusOK)
}

func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "job id required", http.StatusBadRequest)
		return
	}

	details, err := h.jobRepo.GetJobDetails(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if details == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, details, http.StatusOK)
}

// CompleteJob marks an assigned job completed. The owner and the assigned
// craftsman may call it; everyone else gets a 403.
func (h *JobsHandler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.lifecycle.CompleteJob(r.Context(), userID(r), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, map[string]any{"id": id, "status": models.JobCompleted}, http.StatusOK)
}

func (h *JobsHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.lifecycle.CancelJob(r.Context(), userID(r), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, map[string]any{"id": id, "status": models.JobCancelled}, http.StatusOK)
}
