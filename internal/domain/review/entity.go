// internal/domain/review/entity.go
package review

import (
	"context"
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/objectid"
	"gorm.io/gorm"
)

// Review is a free-text comment left on a product page. UserID is nil for
// comments posted without a session.
type Review struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	ProductID string    `gorm:"not null;size:24;index" json:"product_id"`
	UserID    *string   `gorm:"size:24;index" json:"user_id"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name for Review
func (Review) TableName() string {
	return "reviews"
}

// BeforeCreate assigns a document id when the caller did not
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = objectid.New()
	}
	return nil
}

// Repository is the storage collaborator for reviews
type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListByProduct(ctx context.Context, productID string) ([]*Review, error)
}
