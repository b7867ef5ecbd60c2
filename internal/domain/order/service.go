// internal/domain/order/service.go
package order

import (
	"bytes"
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/money"
	"github.com/your-org/storefront-backend/internal/pkg/objectid"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

const dateLayout = "02/01/2006 15:04"

// ErrEmptyCart is returned when checking out without items
var ErrEmptyCart = apperr.New(apperr.KindInvalidInput, "cart is empty").WithCode("empty_cart")

// CartReader exposes the caller's cart to checkout
type CartReader interface {
	GetCart(ctx context.Context, caller user.Caller) ([]cart.LineItem, error)
	PromotionTerms(ctx context.Context, items []cart.LineItem) (map[string]promotion.Terms, error)
}

// Biller creates payable billings
type Biller interface {
	CreateBilling(ctx context.Context, req *payment.BillingRequest) (*payment.Billing, error)
}

// Mailer notifies customers about their orders
type Mailer interface {
	SendPaymentConfirmation(ctx context.Context, data email.PaymentConfirmationData) error
}

// ReceiptRenderer turns receipt data into a document
type ReceiptRenderer interface {
	GenerateReceipt(data *pdf.ReceiptData) (*bytes.Buffer, error)
}

// Service handles order business logic
type Service struct {
	repo      Repository
	carts     CartReader
	biller    Biller
	mailer    Mailer
	receipts  ReceiptRenderer
	evaluator *promotion.Evaluator
	log       logrus.FieldLogger
}

// NewService creates a new order service
func NewService(repo Repository, carts CartReader, biller Biller, mailer Mailer, receipts ReceiptRenderer, evaluator *promotion.Evaluator, log logrus.FieldLogger) *Service {
	return &Service{
		repo:      repo,
		carts:     carts,
		biller:    biller,
		mailer:    mailer,
		receipts:  receipts,
		evaluator: evaluator,
		log:       log,
	}
}

// CheckoutResponse carries the new order and where to pay it
type CheckoutResponse struct {
	Order      *Order `json:"order"`
	PaymentURL string `json:"payment_url"`
}

// Checkout bills the caller's cart at current prices and records a pending
// order. The cart is left as is.
func (s *Service) Checkout(ctx context.Context, caller user.Caller) (*CheckoutResponse, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}

	items, err := s.carts.GetCart(ctx, caller)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	terms, err := s.carts.PromotionTerms(ctx, items)
	if err != nil {
		return nil, err
	}
	priced := cart.Price(items, terms, s.evaluator.Now())

	products := make([]payment.Product, 0, len(priced.Items))
	orderItems := make([]OrderItem, 0, len(priced.Items))
	for i, line := range priced.Items {
		products = append(products, payment.Product{
			ExternalID:  line.ProductID,
			Name:        line.Name,
			Description: line.Name,
			Quantity:    line.Quantity,
			Price:       money.ToMinorUnits(line.EffectivePrice),
		})
		orderItems = append(orderItems, OrderItem{
			Position:  i,
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     money.Round(line.EffectivePrice),
			Quantity:  line.Quantity,
		})
	}

	req := &payment.BillingRequest{Products: products}
	if caller.Email != "" {
		req.Customer = &payment.Customer{Email: caller.Email}
	}

	billing, err := s.biller.CreateBilling(ctx, req)
	if err != nil {
		return nil, err
	}

	o := &Order{
		UserID:        caller.UserID,
		CustomerEmail: caller.Email,
		Items:         orderItems,
		TotalPrice:    priced.Total,
		Status:        OrderStatusPending,
		BillingID:     billing.ID,
		PaymentURL:    billing.URL,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		s.log.WithError(err).WithField("billing_id", billing.ID).Error("billing created but order could not be stored")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":   o.ID,
		"user_id":    caller.UserID,
		"billing_id": billing.ID,
		"total":      o.TotalPrice.StringFixed(money.Places),
	}).Info("order created")

	return &CheckoutResponse{Order: o, PaymentURL: billing.URL}, nil
}

// MarkPaid records the payment of the order billed under billingID.
// Confirming an order that is already paid is a no-op.
func (s *Service) MarkPaid(ctx context.Context, billingID string) (*Order, error) {
	if billingID == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "billing id is required")
	}

	flipped, err := s.repo.MarkPaid(ctx, billingID, s.evaluator.Now())
	if err != nil {
		return nil, err
	}

	o, err := s.repo.FindByBillingID(ctx, billingID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrOrderNotFound
		}
		return nil, err
	}

	fields := logrus.Fields{"order_id": o.ID, "billing_id": billingID}
	if !flipped {
		s.log.WithFields(fields).Info("payment already recorded")
		return o, nil
	}

	s.log.WithFields(fields).Info("order paid")
	s.notifyPaid(ctx, o)
	return o, nil
}

func (s *Service) notifyPaid(ctx context.Context, o *Order) {
	if s.mailer == nil || o.CustomerEmail == "" {
		return
	}

	data := email.PaymentConfirmationData{
		EmailTemplateData: email.EmailTemplateData{UserEmail: o.CustomerEmail},
		OrderID:           o.ID,
		BillingID:         o.BillingID,
		Total:             money.FormatBRL(o.TotalPrice),
	}
	if o.PaidAt != nil {
		data.PaidAt = o.PaidAt.Format(dateLayout)
	}
	for _, item := range o.Items {
		data.Items = append(data.Items, email.OrderLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    money.FormatBRL(item.Price),
			Total:    money.FormatBRL(item.LineTotal()),
		})
	}

	if err := s.mailer.SendPaymentConfirmation(ctx, data); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("failed to send payment confirmation")
	}
}

// ListMine returns the caller's orders, newest first
func (s *Service) ListMine(ctx context.Context, caller user.Caller) ([]*Order, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, caller.UserID)
}

// Get returns one of the caller's orders
func (s *Service) Get(ctx context.Context, caller user.Caller, id string) (*Order, error) {
	if err := caller.RequireAuthenticated(); err != nil {
		return nil, err
	}

	id, ok := objectid.Normalize(id)
	if !ok {
		return nil, apperr.ErrInvalidID
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrOrderNotFound
		}
		return nil, err
	}
	// Other users' orders are reported as missing
	if o.UserID != caller.UserID {
		return nil, apperr.ErrOrderNotFound
	}
	return o, nil
}

// ReceiptData builds the printable view of an order
func ReceiptData(o *Order) *pdf.ReceiptData {
	data := &pdf.ReceiptData{
		OrderID:       o.ID,
		BillingID:     o.BillingID,
		CustomerEmail: o.CustomerEmail,
		Status:        string(o.Status),
		OrderDate:     o.CreatedAt.Format(dateLayout),
		Total:         money.FormatBRL(o.TotalPrice),
	}
	if o.PaidAt != nil {
		data.PaidAt = o.PaidAt.Format(dateLayout)
	}
	for _, item := range o.Items {
		data.Items = append(data.Items, pdf.ReceiptLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: money.FormatBRL(item.Price),
			Total:     money.FormatBRL(item.LineTotal()),
		})
	}
	return data
}

// Receipt renders one of the caller's orders as PDF
func (s *Service) Receipt(ctx context.Context, caller user.Caller, id string) (*bytes.Buffer, *Order, error) {
	o, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}

	buf, err := s.receipts.GenerateReceipt(ReceiptData(o))
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInternal, err, "failed to generate receipt")
	}
	return buf, o, nil
}
