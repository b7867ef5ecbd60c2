// internal/infrastructure/database/mongo/documents.go
package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Products and carts were written by several schema revisions: prices as
// doubles or text, promotions as percentagePromotion or promotionalPrice with
// string dates. Reads accept all of them; writes use the documents below.

type productDocument struct {
	ID                 primitive.ObjectID    `bson:"_id"`
	SellerID           string                `bson:"sellerId,omitempty"`
	Name               string                `bson:"name"`
	Price              primitive.Decimal128  `bson:"price"`
	CoverImage         string                `bson:"coverImage,omitempty"`
	Images             []string              `bson:"images"`
	Description        string                `bson:"description,omitempty"`
	Category           string                `bson:"category,omitempty"`
	Tags               []string              `bson:"tags"`
	DiscountKind       string                `bson:"discountKind,omitempty"`
	DiscountValue      *primitive.Decimal128 `bson:"discountValue,omitempty"`
	PromotionStartDate *time.Time            `bson:"promotionStartDate,omitempty"`
	PromotionEndDate   *time.Time            `bson:"promotionEndDate,omitempty"`
	CreatedAt          time.Time             `bson:"createdAt"`
	UpdatedAt          time.Time             `bson:"updatedAt"`
}

type cartLineDocument struct {
	ProductID  primitive.ObjectID   `bson:"productId"`
	Name       string               `bson:"name"`
	Price      primitive.Decimal128 `bson:"price"`
	CoverImage string               `bson:"coverImage,omitempty"`
	Quantity   int                  `bson:"quantity"`
}

type cartDocument struct {
	UserID    string             `bson:"userId"`
	Products  []cartLineDocument `bson:"products"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	ProductID primitive.ObjectID `bson:"productId"`
	UserID    *string            `bson:"userId"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type orderItemDocument struct {
	ProductID string               `bson:"productId"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
}

type orderDocument struct {
	ID            primitive.ObjectID   `bson:"_id"`
	UserID        string               `bson:"userId"`
	CustomerEmail string               `bson:"customerEmail,omitempty"`
	Items         []orderItemDocument  `bson:"items"`
	TotalPrice    primitive.Decimal128 `bson:"totalPrice"`
	Status        string               `bson:"status"`
	BillingID     string               `bson:"billingId"`
	PaymentURL    string               `bson:"paymentUrl,omitempty"`
	PaidAt        *time.Time           `bson:"paidAt,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	out, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		// decimal.String never produces text Decimal128 rejects within our ranges
		return primitive.NewDecimal128(0, 0)
	}
	return out
}

func fromDecimal128(d primitive.Decimal128) decimal.Decimal {
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return out
}

// decimalOf reads a number stored as double, integer, Decimal128 or text
func decimalOf(v bson.RawValue) (decimal.Decimal, bool) {
	switch v.Type {
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), true
	case bsontype.Int32:
		return decimal.NewFromInt(int64(v.Int32())), true
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), true
	case bsontype.Decimal128:
		return fromDecimal128(v.Decimal128()), true
	case bsontype.String:
		d, err := money.Parse(v.StringValue())
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// instantOf reads a promotion boundary stored as a date or as text
func instantOf(v bson.RawValue) promotion.Instant {
	switch v.Type {
	case bsontype.DateTime:
		return promotion.At(time.UnixMilli(v.DateTime()))
	case bsontype.String:
		return promotion.ParseInstant(v.StringValue())
	default:
		return promotion.Instant{}
	}
}

func stringOf(v bson.RawValue) string {
	switch v.Type {
	case bsontype.String:
		return v.StringValue()
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	default:
		return ""
	}
}

func timeOf(v bson.RawValue) time.Time {
	if v.Type == bsontype.DateTime {
		return time.UnixMilli(v.DateTime()).UTC()
	}
	return time.Time{}
}

func stringsOf(v bson.RawValue) []string {
	out := []string{}
	if v.Type != bsontype.Array {
		return out
	}
	values, err := v.Array().Values()
	if err != nil {
		return out
	}
	for _, item := range values {
		if s := stringOf(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// firstPresent returns the first field of raw that is stored
func firstPresent(raw bson.Raw, keys ...string) bson.RawValue {
	for _, key := range keys {
		if v, err := raw.LookupErr(key); err == nil && v.Type != bsontype.Null {
			return v
		}
	}
	return bson.RawValue{}
}

func discountOf(raw bson.Raw) promotion.Discount {
	if kind := stringOf(raw.Lookup("discountKind")); kind != "" {
		value, _ := decimalOf(raw.Lookup("discountValue"))
		return promotion.Discount{Kind: promotion.DiscountKind(kind), Value: value}
	}
	if price, ok := decimalOf(firstPresent(raw, "promotionalPrice")); ok && price.IsPositive() {
		return promotion.Absolute(price)
	}
	if pct, ok := decimalOf(firstPresent(raw, "percentagePromotion")); ok && pct.IsPositive() {
		return promotion.Percentage(pct)
	}
	return promotion.Discount{}
}

func productFromRaw(raw bson.Raw) (*product.Product, error) {
	idValue, err := raw.LookupErr("_id")
	if err != nil || idValue.Type != bsontype.ObjectID {
		return nil, fmt.Errorf("product document without an object id")
	}
	price, _ := decimalOf(raw.Lookup("price"))

	p := &product.Product{
		ID:          idValue.ObjectID().Hex(),
		SellerID:    stringOf(raw.Lookup("sellerId")),
		Name:        stringOf(raw.Lookup("name")),
		Price:       money.Round(price),
		CoverImage:  stringOf(raw.Lookup("coverImage")),
		Images:      stringsOf(raw.Lookup("images")),
		Description: stringOf(raw.Lookup("description")),
		Category:    stringOf(raw.Lookup("category")),
		Tags:        stringsOf(raw.Lookup("tags")),
		CreatedAt:   timeOf(raw.Lookup("createdAt")),
		UpdatedAt:   timeOf(raw.Lookup("updatedAt")),
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = idValue.ObjectID().Timestamp().UTC()
	}

	// Unparsable dates are dropped here, so the promotion never activates
	discount := discountOf(raw)
	if !discount.IsZero() {
		p.ApplyPromotion(promotion.Terms{
			Discount: discount,
			Start:    instantOf(firstPresent(raw, "promotionStartDate", "startDate")),
			End:      instantOf(firstPresent(raw, "promotionEndDate", "endDate")),
		})
	}
	return p, nil
}

func toProductDocument(p *product.Product) (*productDocument, error) {
	id, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", p.ID, err)
	}
	doc := &productDocument{
		ID:                 id,
		SellerID:           p.SellerID,
		Name:               p.Name,
		Price:              toDecimal128(p.Price),
		CoverImage:         p.CoverImage,
		Images:             nonNil(p.Images),
		Description:        p.Description,
		Category:           p.Category,
		Tags:               nonNil(p.Tags),
		DiscountKind:       string(p.DiscountKind),
		PromotionStartDate: p.PromotionStart,
		PromotionEndDate:   p.PromotionEnd,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if p.DiscountKind != promotion.DiscountNone {
		value := toDecimal128(p.DiscountValue)
		doc.DiscountValue = &value
	}
	return doc, nil
}

func cartFromRaw(raw bson.Raw) *cart.Cart {
	c := &cart.Cart{
		UserID:    stringOf(raw.Lookup("userId")),
		Items:     []cart.LineItem{},
		UpdatedAt: timeOf(raw.Lookup("updatedAt")),
	}

	lines := raw.Lookup("products")
	if lines.Type != bsontype.Array {
		return c
	}
	values, err := lines.Array().Values()
	if err != nil {
		return c
	}
	for _, v := range values {
		if v.Type != bsontype.EmbeddedDocument {
			continue
		}
		line := v.Document()
		price, _ := decimalOf(line.Lookup("price"))
		quantity := 1
		switch q := line.Lookup("quantity"); q.Type {
		case bsontype.Int32:
			quantity = int(q.Int32())
		case bsontype.Int64:
			quantity = int(q.Int64())
		case bsontype.Double:
			quantity = int(q.Double())
		}
		c.Items = append(c.Items, cart.LineItem{
			ProductID:  stringOf(line.Lookup("productId")),
			Name:       stringOf(line.Lookup("name")),
			Price:      price,
			CoverImage: stringOf(line.Lookup("coverImage")),
			Quantity:   quantity,
		})
	}
	return c
}

func toCartDocument(c *cart.Cart) (*cartDocument, error) {
	doc := &cartDocument{
		UserID:    c.UserID,
		Products:  make([]cartLineDocument, 0, len(c.Items)),
		UpdatedAt: c.UpdatedAt,
	}
	for _, item := range c.Items {
		id, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q: %w", item.ProductID, err)
		}
		doc.Products = append(doc.Products, cartLineDocument{
			ProductID:  id,
			Name:       item.Name,
			Price:      toDecimal128(item.Price),
			CoverImage: item.CoverImage,
			Quantity:   item.Quantity,
		})
	}
	return doc, nil
}

func (d *userDocument) toUser() *user.User {
	return &user.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Password:  d.Password,
		Role:      user.ParseRole(d.Role),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d *reviewDocument) toReview() *review.Review {
	return &review.Review{
		ID:        d.ID.Hex(),
		ProductID: d.ProductID.Hex(),
		UserID:    d.UserID,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

func toOrderDocument(o *order.Order) (*orderDocument, error) {
	id, err := primitive.ObjectIDFromHex(o.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid order id %q: %w", o.ID, err)
	}
	doc := &orderDocument{
		ID:            id,
		UserID:        o.UserID,
		CustomerEmail: o.CustomerEmail,
		Items:         make([]orderItemDocument, 0, len(o.Items)),
		TotalPrice:    toDecimal128(o.TotalPrice),
		Status:        string(o.Status),
		BillingID:     o.BillingID,
		PaymentURL:    o.PaymentURL,
		PaidAt:        o.PaidAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, item := range o.Items {
		doc.Items = append(doc.Items, orderItemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     toDecimal128(item.Price),
			Quantity:  item.Quantity,
		})
	}
	return doc, nil
}

func (d *orderDocument) toOrder() *order.Order {
	o := &order.Order{
		ID:            d.ID.Hex(),
		UserID:        d.UserID,
		CustomerEmail: d.CustomerEmail,
		Items:         make([]order.OrderItem, 0, len(d.Items)),
		TotalPrice:    fromDecimal128(d.TotalPrice),
		Status:        order.OrderStatus(d.Status),
		BillingID:     d.BillingID,
		PaymentURL:    d.PaymentURL,
		PaidAt:        d.PaidAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for i, item := range d.Items {
		o.Items = append(o.Items, order.OrderItem{
			OrderID:   o.ID,
			Position:  i,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     fromDecimal128(item.Price),
			Quantity:  item.Quantity,
		})
	}
	return o
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
