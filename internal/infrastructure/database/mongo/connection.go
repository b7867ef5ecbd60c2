// internal/infrastructure/database/mongo/connection.go
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names match the documents written by earlier releases
const (
	usersCollection    = "users"
	productsCollection = "products"
	cartsCollection    = "cart"
	reviewsCollection  = "reviews"
	ordersCollection   = "orders"
)

// Store holds the MongoDB client and database
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewConnection connects to MongoDB and makes sure the indexes exist
func NewConnection(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{client: client, db: client.Database(cfg.Mongo.Database)}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.WithField("database", cfg.Mongo.Database).Info("✅ MongoDB connection established successfully")
	return s, nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "sellerId", Value: 1}}},
		},
		cartsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "_id", Value: 1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "billingId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "_id", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Users returns the user repository
func (s *Store) Users() *UserRepository {
	return &UserRepository{coll: s.db.Collection(usersCollection)}
}

// Products returns the product repository
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{coll: s.db.Collection(productsCollection)}
}

// Carts returns the cart repository
func (s *Store) Carts() *CartRepository {
	return &CartRepository{coll: s.db.Collection(cartsCollection)}
}

// Orders returns the order repository
func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{coll: s.db.Collection(ordersCollection)}
}

// Reviews returns the review repository
func (s *Store) Reviews() *ReviewRepository {
	return &ReviewRepository{coll: s.db.Collection(reviewsCollection)}
}

// Ping checks the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// translate maps driver errors onto application errors
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return apperr.Wrap(apperr.KindConflict, err, "record already exists")
	default:
		return apperr.Storage(err, op)
	}
}
