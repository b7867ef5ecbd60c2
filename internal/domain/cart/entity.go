// internal/domain/cart/entity.go
package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// LineItem is one product in a cart. Name, price and cover image are a
// snapshot taken when the product was first added.
type LineItem struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CoverImage string          `json:"cover_image,omitempty"`
	Quantity   int             `json:"quantity"`
}

// Cart is the per-user cart document. Items keep insertion order and hold
// at most one line per product.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the cart
func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = append([]LineItem(nil), c.Items...)
	return &out
}

// LineView is a line item priced at the time of the request
type LineView struct {
	LineItem
	EffectivePrice  decimal.Decimal `json:"effective_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
	PromotionActive bool            `json:"promotion_active"`
}

// View represents the priced cart returned to the client
type View struct {
	Items         []LineView      `json:"items"`
	ItemCount     int             `json:"item_count"`     // Number of unique items
	TotalQuantity int             `json:"total_quantity"` // Sum of all quantities
	Total         decimal.Decimal `json:"total"`
}

// Repository is the storage collaborator for carts. Save replaces the whole document.
type Repository interface {
	FindByUser(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
}

// Catalog resolves the products referenced by a cart
type Catalog interface {
	FindByID(ctx context.Context, id string) (*product.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error)
}
