package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
)

type ProfileHandler struct {
	profileRepo   repository.ProfileRepo
	craftsmanRepo repository.CraftsmanRepo
}

func NewProfileHandler(pr repository.ProfileRepo, cr repository.CraftsmanRepo) *ProfileHandler {
	return &ProfileHandler{profileRepo: pr, craftsmanRepo: cr}
}

type updateProfileRequest struct {
	FullName    string `json:"full_name"`
	Governorate string `json:"governorate"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// UpdateProfile updates the caller's own profile. The role is immutable
// after registration.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		http.Error(w, "full_name is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	profile, err := h.profileRepo.GetProfile(ctx, uid)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	profile.FullName = req.FullName
	profile.Governorate = req.Governorate
	profile.City = req.City
	profile.Phone = req.Phone
	profile.AvatarURL = req.AvatarURL
	if err := h.profileRepo.UpdateProfile(ctx, profile); err != nil {
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, profile, http.StatusOK)
}

type updateCraftsmanRequest struct {
	Specialty       string   `json:"specialty"`
	Bio             string   `json:"bio,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Gallery         []string `json:"gallery,omitempty"`
	ExperienceYears int      `json:"experience_years"`
	IsAvailable     bool     `json:"is_available"`
}

// UpdateCraftsmanDetails updates the caller's craftsman extension. The
// gallery is a list of image URLs; upload mechanics live elsewhere.
func (h *ProfileHandler) UpdateCraftsmanDetails(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req updateCraftsmanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Specialty = strings.TrimSpace(req.Specialty)
	if req.Specialty == "" {
		http.Error(w, "specialty is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	profile, err := h.profileRepo.GetProfile(ctx, uid)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if profile == nil || profile.Role != models.RoleCraftsman {
		http.Error(w, "not allowed", http.StatusForbidden)
		return
	}

	details, err := h.craftsmanRepo.GetCraftsmanDetails(ctx, uid)
	if err != nil {
		http.Error(w, "failed to load craftsman details", http.StatusInternalServerError)
		return
	}
	if details == nil {
		details = &models.CraftsmanDetails{ProfileID: uid, IsAvailable: true}
		details.Specialty = req.Specialty
		details.Bio = req.Bio
		details.Skills = req.Skills
		details.Gallery = req.Gallery
		details.ExperienceYears = req.ExperienceYears
		details.IsAvailable = req.IsAvailable
		if err := h.craftsmanRepo.CreateCraftsmanDetails(ctx, details); err != nil {
			http.Error(w, "failed to create craftsman details", http.StatusInternalServerError)
			return
		}
		writeJSON(w, details, http.StatusOK)
		return
	}

	details.Specialty = req.Specialty
	details.Bio = req.Bio
	details.Skills = req.Skills
	details.Gallery = req.Gallery
	details.ExperienceYears = req.ExperienceYears
	details.IsAvailable = req.IsAvailable
	if err := h.craftsmanRepo.UpdateCraftsmanDetails(ctx, details); err != nil {
		http.Error(w, "failed to update craftsman details", http.StatusInternalServerError)
		return
	}

	writeJSON(w, details, http.StatusOK)
}
