package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hiking-backend/models"
	"hiking-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewService stores tour ratings, one per user and tour.
type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

type ReviewInput struct {
	TourID  uint
	Rating  int
	Comment string
}

type ReviewUpdate struct {
	Rating  *int
	Comment *string
}

type ReviewFilter struct {
	TourID   *uint
	Rating   *int
	Ordering string
	utils.Pagination
}

var reviewOrdering = map[string]string{
	"created_at": "created_at",
	"rating":     "rating",
}

func validateRating(rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return utils.Validation("rating must be an integer between 1 and 5",
			map[string]string{"rating": "must be between 1 and 5"})
	}
	return nil
}

// CreateReview records userID's rating of a tour. A second review of the same tour by the same
// user is a validation failure.
func (s *ReviewService) CreateReview(ctx context.Context, userID uint, in ReviewInput) (*models.Review, error) {
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Comment) == "" {
		return nil, utils.Validation("comment is required", map[string]string{"comment": "this field is required"})
	}

	db := s.DB.WithContext(ctx)
	if err := mustBeActiveTour(db, in.TourID); err != nil {
		return nil, err
	}

	duplicate := utils.Validation("you have already reviewed this tour",
		map[string]string{"non_field_errors": "the fields tour, user must make a unique set"})

	var existing int64
	if err := db.Model(&models.Review{}).
		Where("tour_id = ? AND user_id = ?", in.TourID, userID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing > 0 {
		return nil, duplicate
	}

	review := models.Review{
		TourID:  in.TourID,
		UserID:  userID,
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
	}
	if err := db.Omit(clause.Associations).Create(&review).Error; err != nil {
		// lost a race with a concurrent submission
		if utils.IsDuplicateKey(err) {
			return nil, duplicate
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return s.GetReview(ctx, review.ID)
}

func (s *ReviewService) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := s.DB.WithContext(ctx).Preload("User").First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("review not found")
		}
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}
	return &review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Review{})
	if f.TourID != nil {
		q = q.Where("tour_id = ?", *f.TourID)
	}
	if f.Rating != nil {
		q = q.Where("rating = ?", *f.Rating)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	list := []models.Review{}
	err := q.Preload("User").
		Order(utils.ParseOrdering(f.Ordering, reviewOrdering, "created_at DESC")).
		Offset(f.Offset()).Limit(f.Limit()).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	return list, total, nil
}

// UpdateReview edits a review owned by userID.
func (s *ReviewService) UpdateReview(ctx context.Context, userID, id uint, in ReviewUpdate) (*models.Review, error) {
	review, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Rating != nil {
		if err := validateRating(*in.Rating); err != nil {
			return nil, err
		}
		updates["rating"] = *in.Rating
	}
	if in.Comment != nil {
		if strings.TrimSpace(*in.Comment) == "" {
			return nil, utils.Validation("comment must not be blank", map[string]string{"comment": "must not be blank"})
		}
		updates["comment"] = strings.TrimSpace(*in.Comment)
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.DB.WithContext(ctx).Model(&models.Review{}).Where("id = ?", review.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update review: %w", err)
		}
	}
	return s.GetReview(ctx, review.ID)
}

// DeleteReview removes a review owned by userID.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, id uint) error {
	review, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Review{}, review.ID).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (s *ReviewService) owned(ctx context.Context, userID, id uint) (*models.Review, error) {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, utils.PermissionDenied("you can only change your own reviews")
	}
	return review, nil
}
