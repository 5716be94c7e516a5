package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ahmed-hamed0/sani3y.com/internal/lifecycle"
	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/gorilla/mux"
)

type ApplicationsHandler struct {
	lifecycle *lifecycle.Service
}

func NewApplicationsHandler(lc *lifecycle.Service) *ApplicationsHandler {
	return &ApplicationsHandler{lifecycle: lc}
}

type submitApplicationRequest struct {
	Proposal string `json:"proposal"`
	Budget   *int64 `json:"budget,omitempty"`
}

// SubmitApplication files the authenticated craftsman's bid on a job.
func (h *ApplicationsHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	var req submitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	req.Proposal = strings.TrimSpace(req.Proposal)
	if req.Proposal == "" {
		http.Error(w, "proposal is required", http.StatusBadRequest)
		return
	}
	if len(req.Proposal) > 2000 {
		http.Error(w, "proposal too long", http.StatusBadRequest)
		return
	}
	if req.Budget != nil && *req.Budget < 0 {
		http.Error(w, "budget must not be negative", http.StatusBadRequest)
		return
	}

	app, err := h.lifecycle.SubmitApplication(r.Context(), userID(r), jobID, req.Proposal, req.Budget)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, app, http.StatusCreated)
}

// ListApplications returns a job's applications, joined with applicant
// profiles, for the job owner.
func (h *ApplicationsHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	apps, err := h.lifecycle.ListApplications(r.Context(), userID(r), jobID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if apps == nil {
		apps = []models.ApplicationWithApplicant{}
	}

	writeJSON(w, map[string]any{"items": apps}, http.StatusOK)
}

func (h *ApplicationsHandler) AcceptApplication(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.lifecycle.AcceptApplication(r.Context(), userID(r), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, map[string]any{"id": id, "status": models.ApplicationAccepted}, http.StatusOK)
}

func (h *ApplicationsHandler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.lifecycle.RejectApplication(r.Context(), userID(r), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, map[string]any{"id": id, "status": models.ApplicationRejected}, http.StatusOK)
}
