// internal/infrastructure/database/mongo/repositories.go
package mongo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.ErrNotFound
	}
	return oid, nil
}

func stamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// UserRepository stores users in the users collection
type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = objectid.New()
	}
	oid, err := objectID(u.ID)
	if err != nil {
		return apperr.ErrInvalidID
	}
	u.Email = user.NormalizeEmail(u.Email)
	u.CreatedAt = stamp()
	u.UpdatedAt = u.CreatedAt

	doc := userDocument{
		ID:        oid,
		Email:     u.Email,
		Password:  u.Password,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return translate(err, "create user")
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err, "find user")
	}
	return doc.toUser(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"email": user.NormalizeEmail(email)})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// ProductRepository stores products in the products collection
type ProductRepository struct {
	coll *mongo.Collection
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	if p.ID == "" {
		p.ID = objectid.New()
	}
	p.CreatedAt = stamp()
	p.UpdatedAt = p.CreatedAt

	doc, err := toProductDocument(p)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, err, "invalid product")
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return translate(err, "create product")
}

// Update replaces the whole document, which also drops legacy promotion fields
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	p.UpdatedAt = stamp()
	doc, err := toProductDocument(p)
	if err != nil {
		return apperr.ErrNotFound
	}

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return translate(err, "update product")
	}
	if result.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate(err, "delete product")
	}
	if result.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	raw, err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Raw()
	if err != nil {
		return nil, translate(err, "find product")
	}
	p, err := productFromRaw(raw)
	if err != nil {
		return nil, apperr.Storage(err, "decode product")
	}
	return p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := objectID(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*product.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *ProductRepository) List(ctx context.Context, filter product.Filter) ([]*product.Product, error) {
	query := bson.M{}
	if filter.SellerID != "" {
		query["sellerId"] = filter.SellerID
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}
	return r.find(ctx, query)
}

func (r *ProductRepository) find(ctx context.Context, query bson.M) ([]*product.Product, error) {
	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate(err, "list products")
	}
	defer cursor.Close(ctx)

	products := make([]*product.Product, 0)
	for cursor.Next(ctx) {
		p, err := productFromRaw(cursor.Current)
		if err != nil {
			continue
		}
		products = append(products, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, translate(err, "list products")
	}
	return products, nil
}

// CartRepository stores one document per user in the cart collection
type CartRepository struct {
	coll *mongo.Collection
}

func (r *CartRepository) FindByUser(ctx context.Context, userID string) (*cart.Cart, error) {
	raw, err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Raw()
	if err != nil {
		return nil, translate(err, "load cart")
	}
	return cartFromRaw(raw), nil
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	doc, err := toCartDocument(c)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, err, "invalid cart")
	}
	_, err = r.coll.ReplaceOne(ctx, bson.M{"userId": c.UserID}, doc, options.Replace().SetUpsert(true))
	return translate(err, "save cart")
}

// OrderRepository stores orders with their items embedded
type OrderRepository struct {
	coll *mongo.Collection
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if o.ID == "" {
		o.ID = objectid.New()
	}
	o.CreatedAt = stamp()
	o.UpdatedAt = o.CreatedAt

	doc, err := toOrderDocument(o)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, err, "invalid order")
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return translate(err, "create order")
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*order.Order, error) {
	var doc orderDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err, "find order")
	}
	return doc.toOrder(), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *OrderRepository) FindByBillingID(ctx context.Context, billingID string) (*order.Order, error) {
	return r.findOne(ctx, bson.M{"billingId": billingID})
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, translate(err, "list orders")
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err, "list orders")
	}
	orders := make([]*order.Order, 0, len(docs))
	for i := range docs {
		orders = append(orders, docs[i].toOrder())
	}
	return orders, nil
}

// MarkPaid matches on the PENDING status, so only one delivery flips the order
func (r *OrderRepository) MarkPaid(ctx context.Context, billingID string, paidAt time.Time) (bool, error) {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"billingId": billingID, "status": string(order.OrderStatusPending)},
		bson.M{"$set": bson.M{
			"status":    string(order.OrderStatusPaid),
			"paidAt":    paidAt.UTC(),
			"updatedAt": stamp(),
		}},
	)
	if err != nil {
		return false, translate(err, "mark order paid")
	}
	return result.ModifiedCount == 1, nil
}

// ReviewRepository stores product comments
type ReviewRepository struct {
	coll *mongo.Collection
}

func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	if rv.ID == "" {
		rv.ID = objectid.New()
	}
	oid, err := objectID(rv.ID)
	if err != nil {
		return apperr.ErrInvalidID
	}
	productID, err := objectID(rv.ProductID)
	if err != nil {
		return apperr.ErrInvalidID
	}
	rv.CreatedAt = stamp()

	doc := reviewDocument{
		ID:        oid,
		ProductID: productID,
		UserID:    rv.UserID,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return translate(err, "create review")
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]*review.Review, error) {
	oid, err := objectID(productID)
	if err != nil {
		return []*review.Review{}, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"productId": oid}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate(err, "list reviews")
	}
	defer cursor.Close(ctx)

	var docs []reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err, "list reviews")
	}
	reviews := make([]*review.Review, 0, len(docs))
	for i := range docs {
		reviews = append(reviews, docs[i].toReview())
	}
	return reviews, nil
}
