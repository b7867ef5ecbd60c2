// internal/domain/product/entity.go
package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID          string          `gorm:"primaryKey;size:24" json:"id"`
	SellerID    string          `gorm:"size:24;index" json:"seller_id,omitempty"`
	Name        string          `gorm:"not null;size:255" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CoverImage  string          `gorm:"type:text" json:"cover_image,omitempty"`
	Images      []string        `gorm:"serializer:json" json:"images"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Category    string          `gorm:"size:100;index" json:"category,omitempty"`
	Tags        []string        `gorm:"serializer:json" json:"tags"`

	// Promotion fields are stored together or not at all
	DiscountKind   promotion.DiscountKind `gorm:"size:20" json:"-"`
	DiscountValue  decimal.Decimal        `gorm:"type:decimal(12,2)" json:"-"`
	PromotionStart *time.Time             `json:"-"`
	PromotionEnd   *time.Time             `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns a document id when the caller did not
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = objectid.New()
	}
	return nil
}

// Promotion returns the stored promotion terms
func (p *Product) Promotion() promotion.Terms {
	return promotion.Terms{
		Discount: promotion.Discount{Kind: p.DiscountKind, Value: p.DiscountValue},
		Start:    promotion.InstantFromPtr(p.PromotionStart),
		End:      promotion.InstantFromPtr(p.PromotionEnd),
	}
}

// ApplyPromotion stores terms on the product. Zero terms clear the promotion.
func (p *Product) ApplyPromotion(terms promotion.Terms) {
	p.DiscountKind = terms.Discount.Kind
	p.DiscountValue = terms.Discount.Value
	p.PromotionStart = terms.Start.Ptr()
	p.PromotionEnd = terms.End.Ptr()
}

// OwnedBy reports whether sellerID may manage the product.
// Products created before seller ownership was recorded can be managed by any seller.
func (p *Product) OwnedBy(sellerID string) bool {
	return p.SellerID == "" || p.SellerID == sellerID
}

// Filter narrows a catalog listing
type Filter struct {
	SellerID string
	Search   string
}

// Repository is the storage collaborator for products
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Product, error)
	List(ctx context.Context, filter Filter) ([]*Product, error)
}
