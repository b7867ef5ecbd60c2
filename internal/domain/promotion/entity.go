// internal/domain/promotion/entity.go
package promotion

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Layout is the serialized form of promotion dates ("YYYY-MM-DD HH:MM:SS", UTC)
const Layout = "2006-01-02 15:04:05"

// DiscountKind tags how a discount value is interpreted
type DiscountKind string

const (
	DiscountNone       DiscountKind = ""
	DiscountPercentage DiscountKind = "percentage"
	DiscountAbsolute   DiscountKind = "absolute"
)

// Discount is a percentage off the base price or an absolute promotional price
type Discount struct {
	Kind  DiscountKind    `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Percentage builds a percentage discount
func Percentage(value decimal.Decimal) Discount {
	return Discount{Kind: DiscountPercentage, Value: value}
}

// Absolute builds an absolute promotional price
func Absolute(price decimal.Decimal) Discount {
	return Discount{Kind: DiscountAbsolute, Value: price}
}

// IsZero reports whether no discount is stored
func (d Discount) IsZero() bool {
	return d.Kind == DiscountNone
}

// Instant is a promotion boundary. It is either a parsed timestamp or a
// serialized string that is only resolved when evaluated.
type Instant struct {
	t       time.Time
	raw     string
	present bool
	valid   bool
}

// At wraps an already-parsed timestamp
func At(t time.Time) Instant {
	return Instant{t: t.UTC(), present: true, valid: true}
}

// ParseInstant wraps a serialized boundary. Parse failures are remembered,
// not reported: an invalid Instant never activates a promotion.
func ParseInstant(s string) Instant {
	s = strings.TrimSpace(s)
	if s == "" {
		return Instant{}
	}
	inst := Instant{raw: s, present: true}
	if t, err := time.ParseInLocation(Layout, s, time.UTC); err == nil {
		inst.t, inst.valid = t, true
	} else if t, err := time.Parse(time.RFC3339, s); err == nil {
		inst.t, inst.valid = t.UTC(), true
	}
	return inst
}

// InstantFromPtr converts an optional stored timestamp
func InstantFromPtr(t *time.Time) Instant {
	if t == nil {
		return Instant{}
	}
	return At(*t)
}

// IsZero reports whether the boundary is absent
func (i Instant) IsZero() bool {
	return !i.present
}

// Time returns the parsed timestamp and whether it is usable
func (i Instant) Time() (time.Time, bool) {
	return i.t, i.present && i.valid
}

// Ptr returns the timestamp for storage, nil when absent or unparsable
func (i Instant) Ptr() *time.Time {
	if t, ok := i.Time(); ok {
		return &t
	}
	return nil
}

func (i Instant) String() string {
	if t, ok := i.Time(); ok {
		return t.Format(Layout)
	}
	return i.raw
}

// MarshalJSON renders the boundary in the serialized layout
func (i Instant) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.String())
}

// UnmarshalJSON accepts the serialized layout, RFC 3339, or null
func (i *Instant) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Instant{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*i = ParseInstant(s)
	return nil
}

// Terms are the promotion fields stored on a product
type Terms struct {
	Discount Discount `json:"discount"`
	Start    Instant  `json:"start_date"`
	End      Instant  `json:"end_date"`
}

// IsZero reports whether no promotion is stored
func (t Terms) IsZero() bool {
	return t.Discount.IsZero() && t.Start.IsZero() && t.End.IsZero()
}

// Status is the lifecycle position of a product's promotion
type Status string

const (
	StatusNone      Status = "none"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
)
