// internal/infrastructure/database/memory/store.go

// Package memory keeps every collection in process memory. It backs
// DB_DRIVER=memory for local development and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
)

// Store holds the collections. Values are copied on the way in and out so
// callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	users    map[string]user.User
	products map[string]product.Product
	carts    map[string]cart.Cart
	orders   map[string]order.Order
	reviews  []review.Review
	sessions map[string]time.Time
	now      func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces the wall clock used for timestamps and session expiry
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.now = clock }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		users:    make(map[string]user.User),
		products: make(map[string]product.Product),
		carts:    make(map[string]cart.Cart),
		orders:   make(map[string]order.Order),
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Users returns the user repository
func (s *Store) Users() *UserRepository { return &UserRepository{s} }

// Products returns the product repository
func (s *Store) Products() *ProductRepository { return &ProductRepository{s} }

// Carts returns the cart repository
func (s *Store) Carts() *CartRepository { return &CartRepository{s} }

// Orders returns the order repository
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s} }

// Reviews returns the review repository
func (s *Store) Reviews() *ReviewRepository { return &ReviewRepository{s} }

// Sessions returns the session store
func (s *Store) Sessions() *SessionStore { return &SessionStore{s} }

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op
func (s *Store) Close() error { return nil }

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

// UserRepository stores users
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.Email = user.NormalizeEmail(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return apperr.New(apperr.KindConflict, "email already registered")
		}
	}
	if u.ID == "" {
		u.ID = objectid.New()
	}
	u.CreatedAt = r.s.stamp()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = user.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

// ProductRepository stores products
type ProductRepository struct{ s *Store }

func cloneProduct(p product.Product) *product.Product {
	p.Images = append([]string(nil), p.Images...)
	p.Tags = append([]string(nil), p.Tags...)
	if p.PromotionStart != nil {
		t := *p.PromotionStart
		p.PromotionStart = &t
	}
	if p.PromotionEnd != nil {
		t := *p.PromotionEnd
		p.PromotionEnd = &t
	}
	return &p
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == "" {
		p.ID = objectid.New()
	}
	p.CreatedAt = r.s.stamp()
	p.UpdatedAt = p.CreatedAt
	r.s.products[p.ID] = *cloneProduct(*p)
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	p.UpdatedAt = r.s.stamp()
	r.s.products[p.ID] = *cloneProduct(*p)
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*product.Product, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := r.s.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context, filter product.Filter) ([]*product.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := make([]*product.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if filter.SellerID != "" && p.SellerID != filter.SellerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, cloneProduct(p))
	}

	// Ids are time-ordered, so this is creation order
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CartRepository stores carts
type CartRepository struct{ s *Store }

func (r *CartRepository) FindByUser(ctx context.Context, userID string) (*cart.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.carts[userID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.carts[c.UserID] = *c.Clone()
	return nil
}

// OrderRepository stores orders
type OrderRepository struct{ s *Store }

func cloneOrder(o order.Order) *order.Order {
	o.Items = append([]order.OrderItem(nil), o.Items...)
	if o.PaidAt != nil {
		t := *o.PaidAt
		o.PaidAt = &t
	}
	return &o
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if o.ID == "" {
		o.ID = objectid.New()
	}
	for _, existing := range r.s.orders {
		if existing.BillingID == o.BillingID {
			return apperr.New(apperr.KindConflict, "billing already has an order")
		}
	}
	o.CreatedAt = r.s.stamp()
	o.UpdatedAt = o.CreatedAt
	r.s.orders[o.ID] = *cloneOrder(*o)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) FindByBillingID(ctx context.Context, billingID string) (*order.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.orders {
		if o.BillingID == billingID {
			return cloneOrder(o), nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*order.Order, 0)
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, billingID string, paidAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, o := range r.s.orders {
		if o.BillingID != billingID || o.Status != order.OrderStatusPending {
			continue
		}
		paid := paidAt.UTC()
		o.Status = order.OrderStatusPaid
		o.PaidAt = &paid
		o.UpdatedAt = r.s.stamp()
		r.s.orders[id] = o
		return true, nil
	}
	return false, nil
}

// ReviewRepository stores reviews
type ReviewRepository struct{ s *Store }

func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rv.ID == "" {
		rv.ID = objectid.New()
	}
	rv.CreatedAt = r.s.stamp()
	r.s.reviews = append(r.s.reviews, *rv)
	return nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]*review.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*review.Review, 0)
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID {
			item := rv
			out = append(out, &item)
		}
	}
	return out, nil
}

// SessionStore tracks session ids with their expiry
type SessionStore struct{ s *Store }

func (r *SessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.stamp()
	for id, expires := range r.s.sessions {
		if !now.Before(expires) {
			delete(r.s.sessions, id)
		}
	}
	r.s.sessions[sessionID] = now.Add(ttl)
	return nil
}

func (r *SessionStore) Active(ctx context.Context, sessionID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	expires, ok := r.s.sessions[sessionID]
	return ok && r.s.stamp().Before(expires), nil
}

// Len reports how many sessions are tracked, expired ones included
func (r *SessionStore) Len() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.sessions)
}

func (r *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, sessionID)
	return nil
}
