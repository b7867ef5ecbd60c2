// internal/domain/promotion/service.go
package promotion

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/money"
)

// ErrInvalidPromotionWindow is returned when a promotion cannot be stored
var ErrInvalidPromotionWindow = apperr.New(apperr.KindInvalidInput, "invalid promotion window").
	WithCode("invalid_promotion_window")

var hundred = decimal.NewFromInt(100)

// window returns the usable boundaries of an applicable promotion
func window(terms Terms) (start, end time.Time, ok bool) {
	if terms.Discount.IsZero() || !terms.Discount.Value.IsPositive() {
		return time.Time{}, time.Time{}, false
	}
	start, okStart := terms.Start.Time()
	end, okEnd := terms.End.Time()
	if !okStart || !okEnd {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// IsActive reports whether the promotion applies at now. Both ends are inclusive.
func IsActive(terms Terms, now time.Time) bool {
	start, end, ok := window(terms)
	if !ok {
		return false
	}
	return !now.Before(start) && !now.After(end)
}

// StatusAt places the promotion in its lifecycle at now
func StatusAt(terms Terms, now time.Time) Status {
	start, end, ok := window(terms)
	switch {
	case !ok:
		return StatusNone
	case now.Before(start):
		return StatusScheduled
	case now.After(end):
		return StatusExpired
	default:
		return StatusActive
	}
}

// EffectivePrice returns the price a customer pays at now
func EffectivePrice(base decimal.Decimal, terms Terms, now time.Time) decimal.Decimal {
	if !IsActive(terms, now) {
		return base
	}

	var price decimal.Decimal
	switch terms.Discount.Kind {
	case DiscountPercentage:
		factor := decimal.NewFromInt(1).Sub(terms.Discount.Value.Div(hundred))
		price = base.Mul(factor)
	case DiscountAbsolute:
		price = decimal.Min(terms.Discount.Value, base)
	default:
		return base
	}

	return money.NonNegative(money.Round(price))
}

// NewTerms validates and builds the terms of a new promotion
func NewTerms(discount Discount, start, end Instant) (Terms, error) {
	if discount.Kind != DiscountPercentage && discount.Kind != DiscountAbsolute {
		return Terms{}, ErrInvalidPromotionWindow.WithMessage("discount kind must be percentage or absolute")
	}
	if !discount.Value.IsPositive() {
		return Terms{}, ErrInvalidPromotionWindow.WithMessage("discount must be greater than zero")
	}

	startAt, okStart := start.Time()
	endAt, okEnd := end.Time()
	if !okStart || !okEnd {
		return Terms{}, ErrInvalidPromotionWindow.WithMessage("start and end dates must be in YYYY-MM-DD HH:MM:SS format")
	}
	if endAt.Before(startAt) {
		return Terms{}, ErrInvalidPromotionWindow.WithMessage("end date must not be before start date")
	}

	return Terms{Discount: discount, Start: At(startAt), End: At(endAt)}, nil
}

// Evaluator binds the pricing rules to a clock
type Evaluator struct {
	now func() time.Time
}

// NewEvaluator creates an evaluator. A nil clock uses the wall clock.
func NewEvaluator(clock func() time.Time) *Evaluator {
	if clock == nil {
		clock = time.Now
	}
	return &Evaluator{now: clock}
}

// Now returns the evaluator's current time in UTC
func (e *Evaluator) Now() time.Time {
	return e.now().UTC()
}

// IsActive evaluates IsActive at the current time
func (e *Evaluator) IsActive(terms Terms) bool {
	return IsActive(terms, e.Now())
}

// EffectivePrice evaluates EffectivePrice at the current time
func (e *Evaluator) EffectivePrice(base decimal.Decimal, terms Terms) decimal.Decimal {
	return EffectivePrice(base, terms, e.Now())
}

// Status evaluates StatusAt at the current time
func (e *Evaluator) Status(terms Terms) Status {
	return StatusAt(terms, e.Now())
}
