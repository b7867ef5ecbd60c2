// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&product.Product{},
		&review.Review{},
		&CartRecord{},
		&CartItemRecord{},
		&order.Order{},
		&order.OrderItem{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("🔄 Running database auto-migrations...")

	for _, model := range Models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates the indexes AutoMigrate does not derive from tags
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_promotion_window ON products(promotion_start, promotion_end)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
	}

	var failed int
	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			m.log.WithError(err).Warn("⚠️ Failed to create index")
			failed++
		}
	}

	m.log.WithFields(logrus.Fields{"created": len(indexes) - failed, "failed": failed}).Info("✅ Indexes created")
	if failed > 0 {
		return fmt.Errorf("%d indexes could not be created", failed)
	}
	return nil
}

// SeedInitialData inserts a demo seller with a small catalog. Existing rows are left alone.
func (m *Migration) SeedInitialData() error {
	m.log.Info("🌱 Seeding initial data...")

	seller, err := m.seedSeller()
	if err != nil {
		return err
	}
	if err := m.seedProducts(seller); err != nil {
		return err
	}

	m.log.Info("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedSeller() (*user.User, error) {
	const email = "seller@example.com"

	var existing user.User
	err := m.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		m.log.WithField("user_id", existing.ID).Debug("⏭️ Seller already exists")
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up seller: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("seller123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	seller := &user.User{Email: email, Password: string(hashedPassword), Role: user.RoleSeller}
	if err := m.db.Create(seller).Error; err != nil {
		return nil, fmt.Errorf("failed to create seller: %w", err)
	}

	m.log.WithField("email", email).Info("✅ Created seller (password: seller123)")
	return seller, nil
}

func (m *Migration) seedProducts(seller *user.User) error {
	var count int64
	if err := m.db.Model(&product.Product{}).Where("seller_id = ?", seller.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		m.log.Debug("⏭️ Demo products already exist")
		return nil
	}

	now := time.Now().UTC()
	onSale := &product.Product{
		SellerID:    seller.ID,
		Name:        "Camiseta Basica",
		Price:       decimal.RequireFromString("59.90"),
		Description: "Camiseta 100% algodao",
		Category:    "roupas",
		Images:      []string{},
		Tags:        []string{"algodao", "basica"},
	}
	onSale.ApplyPromotion(promotion.Terms{
		Discount: promotion.Percentage(decimal.NewFromInt(20)),
		Start:    promotion.At(now.Add(-24 * time.Hour)),
		End:      promotion.At(now.Add(7 * 24 * time.Hour)),
	})

	products := []*product.Product{
		onSale,
		{
			SellerID:    seller.ID,
			Name:        "Caneca Esmaltada",
			Price:       decimal.RequireFromString("25.00"),
			Description: "Caneca de 350ml",
			Category:    "casa",
			Images:      []string{},
			Tags:        []string{},
		},
	}

	for _, p := range products {
		if err := m.db.Create(p).Error; err != nil {
			m.log.WithError(err).WithField("name", p.Name).Warn("⚠️ Failed to create demo product")
			continue
		}
		m.log.WithField("name", p.Name).Info("✅ Created demo product")
	}
	return nil
}

// GetTableInfo logs the row count of every table
func (m *Migration) GetTableInfo() error {
	var total int64
	for _, model := range Models() {
		stmt := &gorm.Statement{DB: m.db}
		if err := stmt.Parse(model); err != nil {
			return err
		}

		var count int64
		if err := m.db.Model(model).Count(&count).Error; err != nil {
			m.log.WithError(err).WithField("table", stmt.Table).Warn("⚠️ Could not count table")
			continue
		}
		total += count
		m.log.WithFields(logrus.Fields{"table": stmt.Table, "records": count}).Info("📊 Table")
	}

	m.log.WithField("records", total).Info("📈 Total records across all tables")
	return nil
}
