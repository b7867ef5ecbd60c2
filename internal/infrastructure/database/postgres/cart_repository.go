// internal/infrastructure/database/postgres/cart_repository.go
package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRecord is the cart header row, one per user
type CartRecord struct {
	UserID    string    `gorm:"primaryKey;size:24"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

// TableName overrides the table name for CartRecord
func (CartRecord) TableName() string {
	return "carts"
}

// CartItemRecord is one line of a cart. Position keeps insertion order.
type CartItemRecord struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     string          `gorm:"not null;size:24;index:idx_cart_items_user_position,priority:1"`
	Position   int             `gorm:"not null;index:idx_cart_items_user_position,priority:2"`
	ProductID  string          `gorm:"not null;size:24"`
	Name       string          `gorm:"not null;size:255"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CoverImage string          `gorm:"type:text"`
	Quantity   int             `gorm:"not null"`
}

// TableName overrides the table name for CartItemRecord
func (CartItemRecord) TableName() string {
	return "cart_items"
}

// CartRepository stores each cart as a header row plus its item rows
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) FindByUser(ctx context.Context, userID string) (*cart.Cart, error) {
	db := r.db.WithContext(ctx)

	var header CartRecord
	if err := db.First(&header, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, "load cart")
	}

	var rows []CartItemRecord
	if err := db.Where("user_id = ?", userID).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, "load cart")
	}

	c := &cart.Cart{UserID: userID, Items: make([]cart.LineItem, 0, len(rows)), UpdatedAt: header.UpdatedAt}
	for _, row := range rows {
		c.Items = append(c.Items, cart.LineItem{
			ProductID:  row.ProductID,
			Name:       row.Name,
			Price:      row.Price,
			CoverImage: row.CoverImage,
			Quantity:   row.Quantity,
		})
	}
	return c, nil
}

// Save replaces the stored cart with c in one transaction
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := CartRecord{UserID: c.UserID, UpdatedAt: c.UpdatedAt}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).Create(&header).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", c.UserID).Delete(&CartItemRecord{}).Error; err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return nil
		}

		rows := make([]CartItemRecord, 0, len(c.Items))
		for i, item := range c.Items {
			rows = append(rows, CartItemRecord{
				UserID:     c.UserID,
				Position:   i,
				ProductID:  item.ProductID,
				Name:       item.Name,
				Price:      item.Price,
				CoverImage: item.CoverImage,
				Quantity:   item.Quantity,
			})
		}
		return tx.Create(&rows).Error
	})
	return translate(err, "save cart")
}
