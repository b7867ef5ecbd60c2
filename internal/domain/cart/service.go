// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
)

// ErrInvalidQuantity is returned when a quantity update would drop below one.
// Removing a line goes through RemoveItem.
var ErrInvalidQuantity = apperr.New(apperr.KindInvalidInput, "quantity must be at least 1").WithCode("invalid_quantity")

// Service handles cart business logic
type Service struct {
	repo      Repository
	catalog   Catalog
	evaluator *promotion.Evaluator
	log       logrus.FieldLogger
}

// NewService creates a new cart service
func NewService(repo Repository, catalog Catalog, evaluator *promotion.Evaluator, log logrus.FieldLogger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		evaluator: evaluator,
		log:       log,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// load returns the caller's cart, or an empty one when none is stored yet
func (s *Service) load(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return &Cart{UserID: userID, Items: []LineItem{}}, nil
		}
		return nil, err
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = s.evaluator.Now()
	return s.repo.Save(ctx, c)
}

// AddItem adds quantity units of a product. An existing line accumulates the
// quantity; otherwise a new line snapshots the product.
func (s *Service) AddItem(ctx context.Context, caller user.Caller, productID string, quantity int) error {
	if err := caller.RequireAuthenticated(); err != nil {
		return err
	}

	id, ok := objectid.Normalize(productID)
	if !ok {
		return apperr.ErrInvalidID
	}

	p, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrProductNotFound
		}
		return err
	}

	if quantity < 1 {
		quantity = 1
	}

	c, err := s.load(ctx, caller.UserID)
	if err != nil {
		return err
	}

	if i := c.indexOf(p.ID); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, LineItem{
			ProductID:  p.ID,
			Name:       p.Name,
			Price:      p.Price,
			CoverImage: p.CoverImage,
			Quantity:   quantity,
		})
	}

	if err := s.save(ctx, c); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": caller.UserID, "product_id": p.ID, "quantity": quantity}).Debug("item added to cart")
	return nil
}

// UpdateQuantity replaces the quantity of one line
func (s *Service) UpdateQuantity(ctx context.Context, caller user.Caller, productID string, quantity int) error {
	if err := caller.RequireAuthenticated(); err != nil {
		return err
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	id, ok := objectid.Normalize(productID)
	if !ok {
		return apperr.ErrInvalidID
	}

	c, err := s.load(ctx, caller.UserID)
	if err != nil {
		return err
	}

	i := c.indexOf(id)
	if i < 0 {
		return apperr.ErrLineItemNotFound
	}
	c.Items[i].Quantity = quantity

	return s.save(ctx, c)
}

// RemoveItem drops a line from the cart. Removing a product that is not in
// the cart succeeds without writing.
func (s *Service) RemoveItem(ctx context.Context, caller user.Caller, productID string) error {
	if err := caller.RequireAuthenticated(); err != nil {
		return err
	}

	id, ok := objectid.Normalize(productID)
	if !ok {
		return apperr.ErrInvalidID
	}

	c, err := s.load(ctx, caller.UserID)
	if err != nil {
		return err
	}

	i := c.indexOf(id)
	if i < 0 {
		return nil
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)

	return s.save(ctx, c)
}

// GetCart returns the caller's line items in insertion order
func (s *Service) GetCart(ctx context.Context, caller user.Caller) ([]LineItem, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return c.Items, nil
}

// Clear empties the caller's cart
func (s *Service) Clear(ctx context.Context, caller user.Caller) error {
	if err := caller.RequireAuthenticated(); err != nil {
		return err
	}

	c, err := s.load(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if len(c.Items) == 0 {
		return nil
	}
	c.Items = []LineItem{}

	return s.save(ctx, c)
}

// View returns the caller's cart priced with the promotions active right now
func (s *Service) View(ctx context.Context, caller user.Caller) (*View, error) {
	items, err := s.GetCart(ctx, caller)
	if err != nil {
		return nil, err
	}

	terms, err := s.PromotionTerms(ctx, items)
	if err != nil {
		return nil, err
	}

	return Price(items, terms, s.evaluator.Now()), nil
}

// PromotionTerms loads the current promotion of every product in items.
// Products that no longer exist are left out and keep their snapshot price.
func (s *Service) PromotionTerms(ctx context.Context, items []LineItem) (map[string]promotion.Terms, error) {
	terms := make(map[string]promotion.Terms, len(items))
	if len(items) == 0 {
		return terms, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		terms[p.ID] = p.Promotion()
	}
	return terms, nil
}

// Price computes the effective price and line total of every item at now.
// A line's promotion is applied to its snapshot price.
func Price(items []LineItem, terms map[string]promotion.Terms, now time.Time) *View {
	view := &View{Items: make([]LineView, 0, len(items)), Total: decimal.Zero}

	for _, item := range items {
		effective := item.Price
		active := false
		if t, ok := terms[item.ProductID]; ok && promotion.IsActive(t, now) {
			effective = promotion.EffectivePrice(item.Price, t, now)
			active = true
		}

		lineTotal := money.Round(effective.Mul(decimal.NewFromInt(int64(item.Quantity))))
		view.Items = append(view.Items, LineView{
			LineItem:        item,
			EffectivePrice:  effective,
			LineTotal:       lineTotal,
			PromotionActive: active,
		})
		view.ItemCount++
		view.TotalQuantity += item.Quantity
		view.Total = view.Total.Add(lineTotal)
	}

	view.Total = money.Round(view.Total)
	return view
}

// ComputeCartTotal sums effective price times quantity over items
func ComputeCartTotal(items []LineItem, terms map[string]promotion.Terms, now time.Time) decimal.Decimal {
	return Price(items, terms, now).Total
}
