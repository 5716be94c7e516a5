package ratings

import (
	"context"
	"fmt"
	"math"

	"log/slog"

	"github.com/ahmed-hamed0/sani3y.com/pkg/models"
	"github.com/ahmed-hamed0/sani3y.com/pkg/repository"
)

// Summary is the aggregate over a subject's public reviews.
type Summary struct {
	Count     int         `json:"count"`
	Average   float64     `json:"average"`
	Histogram map[int]int `json:"histogram"`
}

// Aggregate computes the review summary: count, mean rounded to one
// decimal (0 for an empty list), and a per-star histogram with every
// bucket 1..5 present.
func Aggregate(reviews []models.Review) Summary {
	s := Summary{Histogram: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}

	var total int
	for _, rv := range reviews {
		total += rv.Rating
		s.Histogram[rv.Rating]++
	}

	s.Count = len(reviews)
	if s.Count > 0 {
		s.Average = math.Round(float64(total)/float64(s.Count)*10) / 10
	}

	return s
}

// Service fetches reviews and maintains the denormalized profile rating.
type Service struct {
	reviews  repository.ReviewRepo
	profiles repository.ProfileRepo
	logger   *slog.Logger
}

func NewService(rr repository.ReviewRepo, pr repository.ProfileRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reviews: rr, profiles: pr, logger: logger}
}

// Summarize returns a subject's public reviews (newest first) and their
// aggregate. The aggregate is recomputed fully on every call.
func (s *Service) Summarize(ctx context.Context, subjectID string) ([]models.Review, Summary, error) {
	reviews, err := s.reviews.ListPublicReviews(ctx, subjectID)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, Aggregate(reviews), nil
}

// Recompute refreshes the stored profile rating from the subject's public
// reviews. Invoked by the background worker after a review is created.
func (s *Service) Recompute(ctx context.Context, subjectID string) error {
	_, summary, err := s.Summarize(ctx, subjectID)
	if err != nil {
		return err
	}

	if err := s.profiles.SetProfileRating(ctx, subjectID, summary.Average); err != nil {
		return fmt.Errorf("set profile rating: %w", err)
	}
	s.logger.Info("profile rating recomputed", "profile_id", subjectID, "average", summary.Average, "count", summary.Count)

	return nil
}
