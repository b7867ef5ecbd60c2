// internal/domain/order/entity.go
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

// The only transition is PENDING to PAID, driven by the billing webhook
const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
)

// Order represents the order entity
type Order struct {
	ID            string          `gorm:"primaryKey;size:24" json:"id"`
	UserID        string          `gorm:"not null;size:24;index" json:"user_id"`
	CustomerEmail string          `gorm:"size:255" json:"customer_email"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Status        OrderStatus     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	BillingID     string          `gorm:"size:100;uniqueIndex" json:"billing_id"`
	PaymentURL    string          `gorm:"size:500" json:"payment_url,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem is a line of the cart as it was priced at checkout
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	OrderID   string          `gorm:"not null;size:24;index" json:"-"`
	Position  int             `gorm:"not null;default:0" json:"-"`
	ProductID string          `gorm:"not null;size:24" json:"product_id"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

// TableName overrides the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName overrides the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// BeforeCreate assigns a document id when the caller did not
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = objectid.New()
	}
	return nil
}

// LineTotal returns price times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IsPaid reports whether the billing was confirmed
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// Repository is the storage collaborator for orders
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByBillingID(ctx context.Context, billingID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	// MarkPaid flips a PENDING order to PAID and reports whether this call did it
	MarkPaid(ctx context.Context, billingID string, paidAt time.Time) (bool, error)
}
