// internal/infrastructure/database/postgres/review_repository.go
package postgres

import (
	"context"

	"github.com/your-org/storefront-backend/internal/domain/review"
	"gorm.io/gorm"
)

// ReviewRepository stores product comments
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	return translate(r.db.WithContext(ctx).Create(rv).Error, "create review")
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]*review.Review, error) {
	reviews := make([]*review.Review, 0)
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, translate(err, "list reviews")
	}
	return reviews, nil
}
