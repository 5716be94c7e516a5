package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ahmed-hamed0/sani3y.com/internal/ratings"
	"github.com/ahmed-hamed0/sani3y.com/internal/tasks"
	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ReviewsHandler struct {
	reviewRepo  repository.ReviewRepo
	profileRepo repository.ProfileRepo
	taskRepo    repository.TaskRepo
	ratings     *ratings.Service
}

func NewReviewsHandler(rr repository.ReviewRepo, pr repository.ProfileRepo, tr repository.TaskRepo, rt *ratings.Service) *ReviewsHandler {
	return &ReviewsHandler{reviewRepo: rr, profileRepo: pr, taskRepo: tr, ratings: rt}
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
	Public  *bool  `json:"is_public,omitempty"`
}

// CreateReview stores a review for a subject and queues a rating
// recompute. A reviewer may review the same subject more than once; that
// matches the store's lack of a uniqueness rule for the pair.
func (h *ReviewsHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["id"]
	reviewerID := userID(r)

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		http.Error(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}
	if reviewerID == subjectID {
		writeDomainError(w, models.ErrSelfReview)
		return
	}

	ctx := r.Context()
	subject, err := h.profileRepo.GetProfile(ctx, subjectID)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if subject == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	isPublic := true
	if req.Public != nil {
		isPublic = *req.Public
	}
	review := models.Review{
		ID:         uuid.NewString(),
		ReviewerID: reviewerID,
		ReviewedID: subjectID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		IsPublic:   isPublic,
	}
	if err := h.reviewRepo.CreateReview(ctx, &review); err != nil {
		http.Error(w, "failed to store review", http.StatusInternalServerError)
		return
	}

	// refresh the stored profile rating off the request path
	payload, _ := json.Marshal(tasks.RecomputeRatingPayload{ProfileID: subjectID})
	t := models.Task{Type: tasks.TypeRecomputeRating, Payload: payload, Priority: 100, MaxAttempts: 3}
	if _, err := h.taskRepo.EnqueueTask(ctx, &t); err != nil {
		logger.Error("enqueue rating recompute", "profile_id", subjectID, "err", err)
	}

	writeJSON(w, review, http.StatusCreated)
}

// ListReviews returns a subject's public reviews, newest first, with the
// aggregate recomputed fully on every call.
func (h *ReviewsHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["id"]

	reviews, summary, err := h.ratings.Summarize(r.Context(), subjectID)
	if err != nil {
		http.Error(w, "failed to list reviews", http.StatusInternalServerError)
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	resp := map[string]any{
		"items":   reviews,
		"summary": summary,
	}

	writeJSON(w, resp, http.StatusOK)
}
