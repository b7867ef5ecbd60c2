// internal/infrastructure/database/database.go

// Package database opens the storage driver selected by DB_DRIVER and
// exposes its repositories behind the domain interfaces.
package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/memory"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/mongo"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Repositories groups the storage collaborators of every domain
type Repositories struct {
	Driver   string
	Users    user.Repository
	Products product.Repository
	Carts    cart.Repository
	Orders   order.Repository
	Reviews  review.Repository

	// Sessions is set only by drivers that can track sessions themselves
	Sessions auth.SessionStore

	ping  func(ctx context.Context) error
	close func() error
}

// Ping checks the underlying connection
func (r *Repositories) Ping(ctx context.Context) error {
	return r.ping(ctx)
}

// Close releases the underlying connection
func (r *Repositories) Close() error {
	return r.close()
}

// Open connects the driver named by cfg.Database.Driver
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return openPostgres(cfg, log)
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	case config.DriverMemory:
		log.Warn("⚠️ Using in-memory storage, data is lost on restart")
		return FromMemory(memory.NewStore()), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.Database.Driver)
	}
}

func openPostgres(cfg *config.Config, log logrus.FieldLogger) (*Repositories, error) {
	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}

	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("Failed to seed initial data")
		}
	}

	gdb := db.GetDB()
	return &Repositories{
		Driver:   config.DriverPostgres,
		Users:    postgres.NewUserRepository(gdb),
		Products: postgres.NewProductRepository(gdb),
		Carts:    postgres.NewCartRepository(gdb),
		Orders:   postgres.NewOrderRepository(gdb),
		Reviews:  postgres.NewReviewRepository(gdb),
		ping:     db.Ping,
		close:    db.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Repositories, error) {
	store, err := mongo.NewConnection(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Driver:   config.DriverMongo,
		Users:    store.Users(),
		Products: store.Products(),
		Carts:    store.Carts(),
		Orders:   store.Orders(),
		Reviews:  store.Reviews(),
		ping:     store.Ping,
		close:    store.Close,
	}, nil
}

// FromMemory wraps an in-memory store
func FromMemory(store *memory.Store) *Repositories {
	return &Repositories{
		Driver:   config.DriverMemory,
		Users:    store.Users(),
		Products: store.Products(),
		Carts:    store.Carts(),
		Orders:   store.Orders(),
		Reviews:  store.Reviews(),
		Sessions: store.Sessions(),
		ping:     store.Ping,
		close:    store.Close,
	}
}
