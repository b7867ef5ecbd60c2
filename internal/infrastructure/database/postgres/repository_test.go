package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates a migrated in-memory SQLite database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)

	// Every pooled connection would otherwise get its own empty database
	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })

	log, _ := test.NewNullLogger()
	require.NoError(t, NewMigration(database.DB, log).RunAutoMigrations())
	return database.DB
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &user.User{Email: " Ana@Example.com", Password: "hash", Role: user.RoleSeller}
	require.NoError(t, repo.Create(ctx, u))
	assert.True(t, objectid.Valid(u.ID))

	found, err := repo.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, user.RoleSeller, found.Role)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", byID.Email)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = repo.Create(ctx, &user.User{Email: "ana@example.com", Password: "hash"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestProductRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	p := &product.Product{
		SellerID: "65f1c0a2b3c4d5e6f7a8b911",
		Name:     "Camiseta 100%",
		Price:    decimal.RequireFromString("59.90"),
		Images:   []string{"a.png", "b.png"},
		Tags:     []string{"algodao"},
	}
	p.ApplyPromotion(promotion.Terms{
		Discount: promotion.Percentage(decimal.NewFromInt(25)),
		Start:    promotion.At(start),
		End:      promotion.At(start.Add(48 * time.Hour)),
	})
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.Create(ctx, &product.Product{Name: "Caneca", Price: decimal.RequireFromString("25")}))

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, found.Price.Equal(p.Price))
		assert.Equal(t, []string{"a.png", "b.png"}, found.Images)

		terms := found.Promotion()
		assert.Equal(t, promotion.DiscountPercentage, terms.Discount.Kind)
		assert.True(t, terms.Discount.Value.Equal(decimal.NewFromInt(25)))
		got, ok := terms.Start.Time()
		require.True(t, ok)
		assert.True(t, got.Equal(start))

		_, err = repo.FindByID(ctx, objectid.New())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("list and search", func(t *testing.T) {
		all, err := repo.List(ctx, product.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		found, err := repo.List(ctx, product.Filter{Search: "CAMISETA"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, p.ID, found[0].ID)

		found, err = repo.List(ctx, product.Filter{Search: "100%"})
		require.NoError(t, err)
		assert.Len(t, found, 1)

		found, err = repo.List(ctx, product.Filter{Search: "%"})
		require.NoError(t, err)
		assert.Len(t, found, 1)

		mine, err := repo.List(ctx, product.Filter{SellerID: p.SellerID})
		require.NoError(t, err)
		assert.Len(t, mine, 1)
	})

	t.Run("find by ids", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, []string{p.ID, objectid.New()})
		require.NoError(t, err)
		require.Len(t, found, 1)

		none, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update clears promotion", func(t *testing.T) {
		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)

		found.Price = decimal.RequireFromString("49.90")
		found.ApplyPromotion(promotion.Terms{})
		require.NoError(t, repo.Update(ctx, found))

		again, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "49.90", again.Price.StringFixed(2))
		assert.True(t, again.Promotion().IsZero())

		err = repo.Update(ctx, &product.Product{ID: objectid.New(), Name: "ghost"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, p.ID))
		assert.ErrorIs(t, repo.Delete(ctx, p.ID), apperr.ErrNotFound)
	})
}

func TestCartRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	userID := objectid.New()

	_, err := repo.FindByUser(ctx, userID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	c := &cart.Cart{
		UserID: userID,
		Items: []cart.LineItem{
			{ProductID: "p2", Name: "Caneca", Price: decimal.RequireFromString("25.00"), Quantity: 1},
			{ProductID: "p1", Name: "Camiseta", Price: decimal.RequireFromString("59.90"), CoverImage: "c.png", Quantity: 3},
		},
		UpdatedAt: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "p2", loaded.Items[0].ProductID)
	assert.Equal(t, "p1", loaded.Items[1].ProductID)
	assert.Equal(t, 3, loaded.Items[1].Quantity)
	assert.Equal(t, "c.png", loaded.Items[1].CoverImage)
	assert.True(t, loaded.Items[1].Price.Equal(decimal.RequireFromString("59.90")))

	// Saving again replaces the whole document
	loaded.Items = loaded.Items[1:]
	loaded.Items[0].Quantity = 7
	require.NoError(t, repo.Save(ctx, loaded))

	again, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Equal(t, 7, again.Items[0].Quantity)

	again.Items = nil
	require.NoError(t, repo.Save(ctx, again))
	empty, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestOrderRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	userID := objectid.New()

	o := &order.Order{
		UserID:        userID,
		CustomerEmail: "ana@example.com",
		TotalPrice:    decimal.RequireFromString("254.70"),
		Status:        order.OrderStatusPending,
		BillingID:     "bill_1",
		Items: []order.OrderItem{
			{ProductID: "p1", Name: "Camiseta", Price: decimal.RequireFromString("59.90"), Quantity: 3},
			{ProductID: "p2", Name: "Mochila", Price: decimal.RequireFromString("75.00"), Quantity: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, o))
	assert.True(t, objectid.Valid(o.ID))

	dup := &order.Order{UserID: userID, Status: order.OrderStatusPending, BillingID: "bill_1"}
	assert.True(t, apperr.IsKind(repo.Create(ctx, dup), apperr.KindConflict))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Camiseta", found.Items[0].Name)
	assert.Equal(t, "Mochila", found.Items[1].Name)
	assert.Equal(t, "254.70", found.TotalPrice.StringFixed(2))

	paidAt := time.Date(2026, 5, 10, 12, 30, 0, 0, time.UTC)
	flipped, err := repo.MarkPaid(ctx, "bill_1", paidAt)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.MarkPaid(ctx, "bill_1", paidAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, flipped)

	flipped, err = repo.MarkPaid(ctx, "bill_unknown", paidAt)
	require.NoError(t, err)
	assert.False(t, flipped)

	paid, err := repo.FindByBillingID(ctx, "bill_1")
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(paidAt))

	mine, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Len(t, mine[0].Items, 2)

	_, err = repo.FindByBillingID(ctx, "bill_unknown")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReviewRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()
	productID := objectid.New()
	userID := objectid.New()

	require.NoError(t, repo.Create(ctx, &review.Review{ProductID: productID, UserID: &userID, Comment: "primeiro"}))
	require.NoError(t, repo.Create(ctx, &review.Review{ProductID: productID, Comment: "segundo"}))
	require.NoError(t, repo.Create(ctx, &review.Review{ProductID: objectid.New(), Comment: "outro"}))

	reviews, err := repo.ListByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "primeiro", reviews[0].Comment)
	require.NotNil(t, reviews[0].UserID)
	assert.Equal(t, userID, *reviews[0].UserID)
	assert.Nil(t, reviews[1].UserID)
}

func TestMigration_SeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	log, _ := test.NewNullLogger()
	m := NewMigration(db, log)

	require.NoError(t, m.CreateIndexes())
	require.NoError(t, m.SeedInitialData())
	require.NoError(t, m.SeedInitialData())

	var users, products int64
	require.NoError(t, db.Model(&user.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&product.Product{}).Count(&products).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(2), products)

	require.NoError(t, m.GetTableInfo())
}
