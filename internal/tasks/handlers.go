package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	"github.com/ahmed-hamed0/sani3y.com/internal/lifecycle"
	"github.com/ahmed-hamed0/sani3y.com/internal/ratings"
	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
)

// RecomputeRatingPayload names the subject of a ratings.recompute task.
type RecomputeRatingPayload struct {
	ProfileID string `json:"profile_id"`
}

// EnsureProfilePayload is the snapshot a failed registration leaves
// behind so the reconciler can finish creating the missing rows.
type EnsureProfilePayload struct {
	UserID      string          `json:"user_id"`
	FullName    string          `json:"full_name"`
	Role        models.UserRole `json:"role"`
	Phone       string          `json:"phone"`
	Governorate string          `json:"governorate"`
	City        string          `json:"city"`
	Specialty   string          `json:"specialty,omitempty"`
	Bio         string          `json:"bio,omitempty"`
}

// NewHandlers wires the task handlers the worker pool dispatches on.
func NewHandlers(
	lc *lifecycle.Service,
	rt *ratings.Service,
	profiles repository.ProfileRepo,
	craftsmen repository.CraftsmanRepo,
	logger *slog.Logger,
) map[string]Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return map[string]Handler{
		TypeReconcileAcceptance: func(ctx context.Context, t *models.Task) error {
			repaired, err := lc.Reconcile(ctx)
			if err != nil {
				return err
			}
			if repaired > 0 {
				logger.Info("reconciler repaired acceptances", "count", repaired)
			}
			return nil
		},

		TypeRecomputeRating: func(ctx context.Context, t *models.Task) error {
			var p RecomputeRatingPayload
			if err := json.Unmarshal(t.Payload, &p); err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}
			if p.ProfileID == "" {
				return fmt.Errorf("missing profile_id")
			}
			return rt.Recompute(ctx, p.ProfileID)
		},

		TypeEnsureProfile: func(ctx context.Context, t *models.Task) error {
			var p EnsureProfilePayload
			if err := json.Unmarshal(t.Payload, &p); err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}
			return ensureProfile(ctx, profiles, craftsmen, &p)
		},
	}
}

// ensureProfile recreates the profile and craftsman rows a partially
// failed registration never wrote. Idempotent: existing rows are kept.
func ensureProfile(ctx context.Context, profiles repository.ProfileRepo, craftsmen repository.CraftsmanRepo, p *EnsureProfilePayload) error {
	existing, err := profiles.GetProfile(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if existing == nil {
		profile := &models.Profile{
			ID:          p.UserID,
			FullName:    p.FullName,
			Role:        p.Role,
			Phone:       p.Phone,
			Governorate: p.Governorate,
			City:        p.City,
		}
		if err := profiles.CreateProfile(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
	}

	if p.Role != models.RoleCraftsman {
		return nil
	}

	details, err := craftsmen.GetCraftsmanDetails(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load craftsman details: %w", err)
	}
	if details != nil {
		return nil
	}

	d := &models.CraftsmanDetails{
		ProfileID:   p.UserID,
		Specialty:   p.Specialty,
		Bio:         p.Bio,
		IsAvailable: true,
	}
	if err := craftsmen.CreateCraftsmanDetails(ctx, d); err != nil {
		return fmt.Errorf("create craftsman details: %w", err)
	}

	return nil
}
