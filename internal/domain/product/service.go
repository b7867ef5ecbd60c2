// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
)

// Service handles product business logic
type Service struct {
	repo      Repository
	evaluator *promotion.Evaluator
	log       logrus.FieldLogger
}

// NewService creates a new product service
func NewService(repo Repository, evaluator *promotion.Evaluator, log logrus.FieldLogger) *Service {
	return &Service{
		repo:      repo,
		evaluator: evaluator,
		log:       log,
	}
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Name        string       `json:"name" binding:"required"`
	Price       money.Amount `json:"price"`
	CoverImage  string       `json:"cover_image"`
	Images      []string     `json:"images"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Tags        []string     `json:"tags"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name        *string      `json:"name"`
	Price       money.Amount `json:"price"`
	CoverImage  *string      `json:"cover_image"`
	Images      []string     `json:"images"`
	Description *string      `json:"description"`
	Category    *string      `json:"category"`
	Tags        []string     `json:"tags"`
}

// PromotionRequest represents the promotion form. Either Kind and Value, or one
// of the legacy percentage/promotional-price fields, describe the discount.
type PromotionRequest struct {
	Kind                promotion.DiscountKind `json:"kind"`
	Value               money.Amount           `json:"value"`
	PercentagePromotion money.Amount           `json:"percentage_promotion"`
	PromotionalPrice    money.Amount           `json:"promotional_price"`
	StartDate           promotion.Instant      `json:"start_date"`
	EndDate             promotion.Instant      `json:"end_date"`
}

// Discount resolves the requested discount into its canonical form
func (r *PromotionRequest) Discount() promotion.Discount {
	switch {
	case r.Kind != promotion.DiscountNone:
		return promotion.Discount{Kind: r.Kind, Value: r.Value.Value}
	case r.PromotionalPrice.Set:
		return promotion.Absolute(r.PromotionalPrice.Value)
	case r.PercentagePromotion.Set:
		return promotion.Percentage(r.PercentagePromotion.Value)
	default:
		return promotion.Discount{}
	}
}

// Listing is a product annotated with the price a customer pays right now
type Listing struct {
	*Product
	EffectivePrice  decimal.Decimal  `json:"effective_price"`
	PromotionActive bool             `json:"promotion_active"`
	PromotionStatus promotion.Status `json:"promotion_status"`
	Promotion       *promotion.Terms `json:"promotion,omitempty"`
}

// Annotate runs a product through the promotion rules
func (s *Service) Annotate(p *Product) *Listing {
	terms := p.Promotion()
	now := s.evaluator.Now()
	listing := &Listing{
		Product:         p,
		EffectivePrice:  promotion.EffectivePrice(p.Price, terms, now),
		PromotionActive: promotion.IsActive(terms, now),
		PromotionStatus: promotion.StatusAt(terms, now),
	}
	if !terms.IsZero() {
		listing.Promotion = &terms
	}
	return listing
}

func (s *Service) annotateAll(products []*Product) []*Listing {
	listings := make([]*Listing, 0, len(products))
	for _, p := range products {
		listings = append(listings, s.Annotate(p))
	}
	return listings
}

// List returns the whole catalog
func (s *Service) List(ctx context.Context) ([]*Listing, error) {
	return s.Search(ctx, "")
}

// Search returns the products whose name contains word, ignoring case
func (s *Service) Search(ctx context.Context, word string) ([]*Listing, error) {
	products, err := s.repo.List(ctx, Filter{Search: strings.TrimSpace(word)})
	if err != nil {
		return nil, err
	}
	return s.annotateAll(products), nil
}

// ListMine returns the caller's own products, optionally filtered by name
func (s *Service) ListMine(ctx context.Context, caller user.Caller, word string) ([]*Listing, error) {
	if err := caller.RequireSeller(); err != nil {
		return nil, err
	}
	products, err := s.repo.List(ctx, Filter{SellerID: caller.UserID, Search: strings.TrimSpace(word)})
	if err != nil {
		return nil, err
	}
	return s.annotateAll(products), nil
}

// Get returns a single annotated product
func (s *Service) Get(ctx context.Context, id string) (*Listing, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Annotate(p), nil
}

// Find loads a product without annotating it
func (s *Service) Find(ctx context.Context, id string) (*Product, error) {
	return s.find(ctx, id)
}

// update persists p, reporting a concurrently deleted product as not found
func (s *Service) update(ctx context.Context, p *Product) error {
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *Service) find(ctx context.Context, id string) (*Product, error) {
	id, ok := objectid.Normalize(id)
	if !ok {
		return nil, apperr.ErrInvalidID
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// findOwned loads a product the caller is allowed to manage
func (s *Service) findOwned(ctx context.Context, caller user.Caller, id string) (*Product, error) {
	if err := caller.RequireSeller(); err != nil {
		return nil, err
	}
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(caller.UserID) {
		return nil, apperr.ErrNotAuthorized.WithMessage("this product belongs to another seller")
	}
	return p, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperr.New(apperr.KindInvalidInput, "price must not be negative")
	}
	return nil
}

// Create adds a product owned by the calling seller
func (s *Service) Create(ctx context.Context, caller user.Caller, req *ProductCreateRequest) (*Listing, error) {
	if err := caller.RequireSeller(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "name is required")
	}
	if !req.Price.Set {
		return nil, apperr.New(apperr.KindInvalidInput, "price is required")
	}
	if err := validatePrice(req.Price.Value); err != nil {
		return nil, err
	}

	p := &Product{
		SellerID:    caller.UserID,
		Name:        name,
		Price:       money.Round(req.Price.Value),
		CoverImage:  req.CoverImage,
		Images:      nonNil(req.Images),
		Description: req.Description,
		Category:    req.Category,
		Tags:        nonNil(req.Tags),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"product_id": p.ID, "seller_id": caller.UserID}).Info("product created")

	return s.Annotate(p), nil
}

// Update edits a product owned by the calling seller
func (s *Service) Update(ctx context.Context, caller user.Caller, id string, req *ProductUpdateRequest) (*Listing, error) {
	p, err := s.findOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.New(apperr.KindInvalidInput, "name must not be empty")
		}
		p.Name = name
	}
	if req.Price.Set {
		if err := validatePrice(req.Price.Value); err != nil {
			return nil, err
		}
		p.Price = money.Round(req.Price.Value)
	}
	if req.CoverImage != nil {
		p.CoverImage = *req.CoverImage
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Tags != nil {
		p.Tags = req.Tags
	}

	if err := s.update(ctx, p); err != nil {
		return nil, err
	}
	return s.Annotate(p), nil
}

// Delete removes a product owned by the calling seller
func (s *Service) Delete(ctx context.Context, caller user.Caller, id string) error {
	p, err := s.findOwned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrProductNotFound
		}
		return err
	}

	s.log.WithFields(logrus.Fields{"product_id": p.ID, "seller_id": caller.UserID}).Info("product deleted")
	return nil
}

// SetPromotion validates and stores a promotion, replacing any previous one
func (s *Service) SetPromotion(ctx context.Context, caller user.Caller, id string, req *PromotionRequest) (*Listing, error) {
	p, err := s.findOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	terms, err := promotion.NewTerms(req.Discount(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	p.ApplyPromotion(terms)
	if err := s.update(ctx, p); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id": p.ID,
		"kind":       terms.Discount.Kind,
		"start":      terms.Start.String(),
		"end":        terms.End.String(),
	}).Info("promotion set")

	return s.Annotate(p), nil
}

// ClearPromotion removes any promotion. Clearing an unpromoted product succeeds.
func (s *Service) ClearPromotion(ctx context.Context, caller user.Caller, id string) (*Listing, error) {
	p, err := s.findOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if p.Promotion().IsZero() {
		return s.Annotate(p), nil
	}

	p.ApplyPromotion(promotion.Terms{})
	if err := s.update(ctx, p); err != nil {
		return nil, err
	}
	return s.Annotate(p), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
