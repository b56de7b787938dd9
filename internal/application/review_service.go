package application

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
)

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ReviewService struct {
	Reviews  repo.ReviewRepository
	Products repo.ProductRepository
	Validate *validator.Validate
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewReviewService(reviews repo.ReviewRepository, products repo.ProductRepository, logger *logrus.Logger) *ReviewService {
	return &ReviewService{Reviews: reviews, Products: products, Validate: defaultValidator, Logger: logger, Now: time.Now}
}

// AverageRating is the mean of ratings rounded half away from zero to one
// decimal place, or 0 when there are none.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	n := len(ratings)
	// tenths = round(sum*10/n) in integers; ratings are positive
	tenths := (sum*20 + n) / (2 * n)
	return float64(tenths) / 10
}

// List returns the reviews of a product, newest first.
func (s *ReviewService) List(ctx context.Context, productID string) ([]*entity.Review, error) {
	items, err := s.Reviews.List(ctx, productID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

// Add writes the review and recomputes the product rating from every review.
func (s *ReviewService) Add(ctx context.Context, sess *Session, productID string, in ReviewInput) (*entity.Review, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	if err := validate(s.Validate, in); err != nil {
		return nil, err
	}
	if _, err := s.Products.Get(ctx, productID); err != nil {
		return nil, err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	rv := &entity.Review{
		ID:         uuid.NewString(),
		ProductID:  productID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		AuthorID:   sess.UserID,
		AuthorName: sess.DisplayName(),
		CreatedAt:  now().UTC(),
	}
	if err := s.Reviews.Add(ctx, rv); err != nil {
		return nil, err
	}
	if _, err := s.Recompute(ctx, productID); err != nil {
		return rv, err
	}
	return rv, nil
}

// Delete removes a review written by the caller, or any review for admins.
func (s *ReviewService) Delete(ctx context.Context, sess *Session, productID, reviewID string) error {
	if err := sess.RequireMember(); err != nil {
		return err
	}
	rv, err := s.Reviews.Get(ctx, productID, reviewID)
	if err != nil {
		return err
	}
	if rv.AuthorID != sess.UserID && !sess.IsAdmin() {
		return ErrForbidden
	}
	if err := s.Reviews.Delete(ctx, productID, reviewID); err != nil {
		return err
	}
	_, err = s.Recompute(ctx, productID)
	return err
}

// Recompute re-reads every review of the product and writes the derived
// rating and count. Concurrent recomputes race; the last write wins.
func (s *ReviewService) Recompute(ctx context.Context, productID string) (float64, error) {
	items, err := s.Reviews.List(ctx, productID)
	if err != nil {
		return 0, err
	}
	ratings := make([]int, 0, len(items))
	for _, r := range items {
		ratings = append(ratings, r.Rating)
	}
	avg := AverageRating(ratings)
	if err := s.Products.Update(ctx, productID, map[string]any{"rating": avg, "reviewCount": len(ratings)}); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", productID).Warn("rating update failed")
		}
		return 0, err
	}
	return avg, nil
}
