// internal/infrastructure/database/postgres/order_repository.go
package postgres

import (
	"context"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"gorm.io/gorm"
)

// OrderRepository stores orders and their items
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	for i := range o.Items {
		o.Items[i].Position = i
	}
	return translate(r.db.WithContext(ctx).Create(o).Error, "create order")
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).Preload("Items", byPosition).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find order")
	}
	return &o, nil
}

func (r *OrderRepository) FindByBillingID(ctx context.Context, billingID string) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items", byPosition).
		Where("billing_id = ?", billingID).
		First(&o).Error
	if err != nil {
		return nil, translate(err, "find order")
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	orders := make([]*order.Order, 0)
	err := r.db.WithContext(ctx).
		Preload("Items", byPosition).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err, "list orders")
	}
	return orders, nil
}

// MarkPaid is a single conditional UPDATE, so concurrent webhook deliveries
// cannot both observe the PENDING row
func (r *OrderRepository) MarkPaid(ctx context.Context, billingID string, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("billing_id = ? AND status = ?", billingID, order.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     order.OrderStatusPaid,
			"paid_at":    paidAt.UTC(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, translate(result.Error, "mark order paid")
	}
	return result.RowsAffected == 1, nil
}
