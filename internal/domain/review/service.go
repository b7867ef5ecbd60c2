// internal/domain/review/service.go
package review

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
)

const maxCommentLength = 2000

// ProductFinder checks that a commented product exists
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*product.Product, error)
}

// Service handles review business logic
type Service struct {
	repo     Repository
	products ProductFinder
	log      logrus.FieldLogger
}

// NewService creates a new review service
func NewService(repo Repository, products ProductFinder, log logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		log:      log,
	}
}

// CreateReviewRequest represents a new comment
type CreateReviewRequest struct {
	Comment string `json:"comment" binding:"required"`
}

func (s *Service) productID(ctx context.Context, id string) (string, error) {
	id, ok := objectid.Normalize(id)
	if !ok {
		return "", apperr.ErrInvalidID
	}
	if _, err := s.products.FindByID(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.ErrProductNotFound
		}
		return "", err
	}
	return id, nil
}

// Add appends a comment to a product. Anonymous callers may comment.
func (s *Service) Add(ctx context.Context, caller user.Caller, productID, comment string) (*Review, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "comment is required")
	}
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, apperr.Newf(apperr.KindInvalidInput, "comment must be at most %d characters", maxCommentLength)
	}

	id, err := s.productID(ctx, productID)
	if err != nil {
		return nil, err
	}

	r := &Review{ProductID: id, Comment: comment}
	if caller.IsAuthenticated() {
		userID := caller.UserID
		r.UserID = &userID
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"product_id": id, "review_id": r.ID}).Debug("review added")
	return r, nil
}

// ListByProduct returns a product's comments, oldest first
func (s *Service) ListByProduct(ctx context.Context, productID string) ([]*Review, error) {
	id, err := s.productID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, id)
}
