package api

import (
	"net/http"
	"strconv"

	"github.com/ahmed-hamed0/sani3y.com/internal/ratings"
	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
	"github.com/gorilla/mux"
)

type CraftsmenHandler struct {
	profileRepo   repository.ProfileRepo
	craftsmanRepo repository.CraftsmanRepo
	ratings       *ratings.Service
}

func NewCraftsmenHandler(pr repository.ProfileRepo, cr repository.CraftsmanRepo, rt *ratings.Service) *CraftsmenHandler {
	return &CraftsmenHandler{profileRepo: pr, craftsmanRepo: cr, ratings: rt}
}

func (h *CraftsmenHandler) ListCraftsmen(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := repository.CraftsmanFilter{
		Specialty:   q.Get("specialty"),
		Governorate: q.Get("governorate"),
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

	craftsmen, err := h.craftsmanRepo.ListCraftsmen(r.Context(), f)
	if err != nil {
		http.Error(w, "failed to list craftsmen", http.StatusInternalServerError)
		return
	}
	if craftsmen == nil {
		craftsmen = []models.JobParty{}
	}

	writeJSON(w, map[string]any{"items": craftsmen, "limit": f.Limit, "offset": f.Offset}, http.StatusOK)
}

// GetCraftsman returns a craftsman's profile, details, and rating summary.
func (h *CraftsmenHandler) GetCraftsman(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ctx := r.Context()
	profile, err := h.profileRepo.GetProfile(ctx, id)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if profile == nil || profile.Role != models.RoleCraftsman {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	details, err := h.craftsmanRepo.GetCraftsmanDetails(ctx, id)
	if err != nil {
		http.Error(w, "failed to load craftsman details", http.StatusInternalServerError)
		return
	}

	_, summary, err := h.ratings.Summarize(ctx, id)
	if err != nil {
		http.Error(w, "failed to load rating", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"profile": profile,
		"details": details,
		"rating":  summary,
	}

	writeJSON(w, resp, http.StatusOK)
}
