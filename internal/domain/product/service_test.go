package product_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/memory"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
)

var (
	now      = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	seller   = user.Caller{UserID: "65f1c0a2b3c4d5e6f7a8b911", Role: user.RoleSeller, Email: "loja@example.com"}
	rival    = user.Caller{UserID: "65f1c0a2b3c4d5e6f7a8b912", Role: user.RoleSeller, Email: "outra@example.com"}
	customer = user.Caller{UserID: "65f1c0a2b3c4d5e6f7a8b913", Role: user.RoleCustomer, Email: "ana@example.com"}
)

func newService(t *testing.T) (*product.Service, *memory.Store) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	return product.NewService(store.Products(), promotion.NewEvaluator(func() time.Time { return now }), logger), store
}

func amount(s string) money.Amount {
	return money.Amount{Value: decimal.RequireFromString(s), Set: true}
}

func create(t *testing.T, svc *product.Service, caller user.Caller, name, price string) *product.Listing {
	t.Helper()
	listing, err := svc.Create(context.Background(), caller, &product.ProductCreateRequest{Name: name, Price: amount(price)})
	require.NoError(t, err)
	return listing
}

func TestCreate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	listing := create(t, svc, seller, "  Camiseta  ", "59.899")
	assert.True(t, objectid.Valid(listing.ID))
	assert.Equal(t, "Camiseta", listing.Name)
	assert.Equal(t, seller.UserID, listing.SellerID)
	assert.Equal(t, "59.90", listing.Price.StringFixed(2))
	assert.NotNil(t, listing.Images)
	assert.False(t, listing.PromotionActive)
	assert.Equal(t, promotion.StatusNone, listing.PromotionStatus)
	assert.Nil(t, listing.Promotion)

	_, err := svc.Create(ctx, customer, &product.ProductCreateRequest{Name: "x", Price: amount("1")})
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	_, err = svc.Create(ctx, user.Anonymous, &product.ProductCreateRequest{Name: "x", Price: amount("1")})
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	_, err = svc.Create(ctx, seller, &product.ProductCreateRequest{Name: "x"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = svc.Create(ctx, seller, &product.ProductCreateRequest{Name: "x", Price: amount("-1")})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = svc.Create(ctx, seller, &product.ProductCreateRequest{Name: "  ", Price: amount("1")})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestCreate_AcceptsFormattedPrice(t *testing.T) {
	svc, _ := newService(t)

	var req product.ProductCreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Caneca","price":"R$ 1.234,50"}`), &req))

	listing, err := svc.Create(context.Background(), seller, &req)
	require.NoError(t, err)
	assert.Equal(t, "1234.50", listing.Price.StringFixed(2))
}

func TestGet(t *testing.T) {
	svc, _ := newService(t)
	created := create(t, svc, seller, "Camiseta", "59.90")

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(context.Background(), objectid.New())
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)
}

func TestSearchAndListMine(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	create(t, svc, seller, "Camiseta Azul", "59.90")
	create(t, svc, seller, "Caneca", "25.00")
	create(t, svc, rival, "camiseta verde", "49.90")

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := svc.Search(ctx, "CAMISETA")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	mine, err := svc.ListMine(ctx, seller, "")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	mine, err = svc.ListMine(ctx, seller, "caneca")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Caneca", mine[0].Name)

	_, err = svc.ListMine(ctx, customer, "")
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestUpdateAndDelete_Ownership(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	created := create(t, svc, seller, "Camiseta", "59.90")

	name := "Camiseta Premium"
	updated, err := svc.Update(ctx, seller, created.ID, &product.ProductUpdateRequest{Name: &name, Price: amount("79.90")})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "79.90", updated.Price.StringFixed(2))

	_, err = svc.Update(ctx, rival, created.ID, &product.ProductUpdateRequest{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	assert.ErrorIs(t, svc.Delete(ctx, rival, created.ID), apperr.ErrNotAuthorized)
	assert.ErrorIs(t, svc.Delete(ctx, customer, created.ID), apperr.ErrNotAuthorized)

	require.NoError(t, svc.Delete(ctx, seller, created.ID))
	_, err = store.Products().FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, seller, created.ID), apperr.ErrProductNotFound)
}

func TestUpdate_LegacyProductWithoutSeller(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	legacy := &product.Product{Name: "Bone", Price: decimal.RequireFromString("40")}
	require.NoError(t, store.Products().Create(ctx, legacy))

	name := "Bone Aba Reta"
	updated, err := svc.Update(ctx, rival, legacy.ID, &product.ProductUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}

func TestSetPromotion(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	created := create(t, svc, seller, "Mochila", "100.00")

	listing, err := svc.SetPromotion(ctx, seller, created.ID, &product.PromotionRequest{
		Kind:      promotion.DiscountPercentage,
		Value:     amount("25"),
		StartDate: promotion.ParseInstant("2026-05-10 11:00:00"),
		EndDate:   promotion.ParseInstant("2026-05-10 13:00:00"),
	})
	require.NoError(t, err)
	assert.True(t, listing.PromotionActive)
	assert.Equal(t, promotion.StatusActive, listing.PromotionStatus)
	assert.Equal(t, "75.00", listing.EffectivePrice.StringFixed(2))
	require.NotNil(t, listing.Promotion)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.PromotionActive)
	assert.Equal(t, "100.00", got.Price.StringFixed(2))
}

func TestSetPromotion_LegacyFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	created := create(t, svc, seller, "Mochila", "100.00")

	var req product.PromotionRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"promotional_price": "79,90",
		"start_date": "2026-05-11 00:00:00",
		"end_date": "2026-05-12 00:00:00"
	}`), &req))

	listing, err := svc.SetPromotion(ctx, seller, created.ID, &req)
	require.NoError(t, err)
	assert.False(t, listing.PromotionActive)
	assert.Equal(t, promotion.StatusScheduled, listing.PromotionStatus)
	assert.Equal(t, "100.00", listing.EffectivePrice.StringFixed(2))
	assert.Equal(t, promotion.DiscountAbsolute, listing.Promotion.Discount.Kind)
}

func TestSetPromotion_Rejected(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	created := create(t, svc, seller, "Mochila", "100.00")

	cases := map[string]*product.PromotionRequest{
		"no discount": {
			StartDate: promotion.ParseInstant("2026-05-10 11:00:00"),
			EndDate:   promotion.ParseInstant("2026-05-10 13:00:00"),
		},
		"end before start": {
			Kind:      promotion.DiscountPercentage,
			Value:     amount("10"),
			StartDate: promotion.ParseInstant("2026-05-10 13:00:00"),
			EndDate:   promotion.ParseInstant("2026-05-10 11:00:00"),
		},
		"bad date": {
			Kind:      promotion.DiscountPercentage,
			Value:     amount("10"),
			StartDate: promotion.ParseInstant("amanha"),
			EndDate:   promotion.ParseInstant("2026-05-10 11:00:00"),
		},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SetPromotion(ctx, seller, created.ID, req)
			assert.ErrorIs(t, err, promotion.ErrInvalidPromotionWindow)
		})
	}

	_, err := svc.SetPromotion(ctx, rival, created.ID, cases["end before start"])
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestClearPromotion(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	created := create(t, svc, seller, "Mochila", "100.00")

	_, err := svc.SetPromotion(ctx, seller, created.ID, &product.PromotionRequest{
		Kind:      promotion.DiscountAbsolute,
		Value:     amount("80"),
		StartDate: promotion.ParseInstant("2026-05-10 11:00:00"),
		EndDate:   promotion.ParseInstant("2026-05-10 13:00:00"),
	})
	require.NoError(t, err)

	cleared, err := svc.ClearPromotion(ctx, seller, created.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Promotion)
	assert.Equal(t, "100.00", cleared.EffectivePrice.StringFixed(2))

	again, err := svc.ClearPromotion(ctx, seller, created.ID)
	require.NoError(t, err)
	assert.Nil(t, again.Promotion)
}

func TestGet_PromotionFieldsAgreeAtWindowEnd(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()

	// each read of the clock moves it one second, starting on the last active instant
	var reads int
	clock := func() time.Time {
		at := now.Add(time.Duration(reads) * time.Second)
		reads++
		return at
	}
	svc := product.NewService(store.Products(), promotion.NewEvaluator(clock), logger)

	p := &product.Product{Name: "Mochila", Price: decimal.RequireFromString("100.00")}
	p.ApplyPromotion(promotion.Terms{
		Discount: promotion.Percentage(decimal.NewFromInt(25)),
		Start:    promotion.At(now.Add(-time.Hour)),
		End:      promotion.At(now),
	})
	require.NoError(t, store.Products().Create(context.Background(), p))

	listing, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, reads)
	assert.True(t, listing.PromotionActive)
	assert.Equal(t, promotion.StatusActive, listing.PromotionStatus)
	assert.Equal(t, "75.00", listing.EffectivePrice.StringFixed(2))
}

func TestUpdate_ConcurrentlyDeletedProduct(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	products := &vanishingRepository{ProductRepository: store.Products()}
	svc := product.NewService(products, promotion.NewEvaluator(func() time.Time { return now }), logger)
	created := create(t, svc, seller, "Camiseta", "59.90")
	products.vanish = true

	name := "Camiseta Premium"
	_, err := svc.Update(context.Background(), seller, created.ID, &product.ProductUpdateRequest{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)

	_, err = svc.SetPromotion(context.Background(), seller, created.ID, &product.PromotionRequest{
		Kind:      promotion.DiscountPercentage,
		Value:     amount("10"),
		StartDate: promotion.ParseInstant("2026-05-10 11:00:00"),
		EndDate:   promotion.ParseInstant("2026-05-10 13:00:00"),
	})
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), seller, created.ID), apperr.ErrProductNotFound)
}

// vanishingRepository loses products between the read and the write
type vanishingRepository struct {
	*memory.ProductRepository
	vanish bool
}

func (r *vanishingRepository) Update(ctx context.Context, p *product.Product) error {
	if r.vanish {
		if err := r.ProductRepository.Delete(ctx, p.ID); err != nil {
			return err
		}
	}
	return r.ProductRepository.Update(ctx, p)
}

func (r *vanishingRepository) Delete(ctx context.Context, id string) error {
	if r.vanish {
		if err := r.ProductRepository.Delete(ctx, id); err != nil {
			return err
		}
	}
	return r.ProductRepository.Delete(ctx, id)
}
