package promotion

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 = time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func percentTerms(pct string, start, end time.Time) Terms {
	return Terms{Discount: Percentage(dec(pct)), Start: At(start), End: At(end)}
}

func TestIsActive_WindowBoundaries(t *testing.T) {
	terms := percentTerms("20", t0, t1)

	assert.True(t, IsActive(terms, t0), "active exactly at start")
	assert.True(t, IsActive(terms, t1), "active exactly at end")
	assert.False(t, IsActive(terms, t0.Add(-time.Second)), "inactive one second before start")
	assert.False(t, IsActive(terms, t1.Add(time.Second)), "inactive one second after end")
}

func TestIsActive_MissingOrNonPositiveDiscount(t *testing.T) {
	now := t0.Add(time.Hour)

	assert.False(t, IsActive(Terms{}, now))
	assert.False(t, IsActive(percentTerms("0", t0, t1), now))
	assert.False(t, IsActive(percentTerms("-5", t0, t1), now))
	assert.False(t, IsActive(Terms{Discount: Percentage(dec("10")), Start: At(t0)}, now))
	assert.False(t, IsActive(Terms{Discount: Percentage(dec("10")), End: At(t1)}, now))
}

func TestIsActive_SerializedDates(t *testing.T) {
	terms := Terms{
		Discount: Percentage(dec("20")),
		Start:    ParseInstant("2026-03-01 10:00:00"),
		End:      ParseInstant("2026-03-08 10:00:00"),
	}

	assert.True(t, IsActive(terms, t0))
	assert.True(t, IsActive(terms, t1))
	assert.False(t, IsActive(terms, t1.Add(time.Second)))
}

func TestIsActive_UnparsableDateFailsClosed(t *testing.T) {
	terms := Terms{
		Discount: Percentage(dec("20")),
		Start:    ParseInstant("yesterday-ish"),
		End:      At(t1),
	}

	assert.NotPanics(t, func() {
		assert.False(t, IsActive(terms, t0.Add(time.Hour)))
	})
	assert.True(t, EffectivePrice(dec("100"), terms, t0.Add(time.Hour)).Equal(dec("100")))
	assert.Equal(t, StatusNone, StatusAt(terms, t0.Add(time.Hour)))
}

func TestEffectivePrice(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		base  string
		terms Terms
		want  string
	}{
		{
			name:  "active percentage",
			base:  "100.00",
			terms: percentTerms("25", now.Add(-time.Hour), now.Add(time.Hour)),
			want:  "75",
		},
		{
			name:  "future window is not applied",
			base:  "100.00",
			terms: percentTerms("25", now.Add(time.Hour), now.Add(2*time.Hour)),
			want:  "100",
		},
		{
			name:  "percentage rounds half up",
			base:  "59.90",
			terms: percentTerms("25", now.Add(-time.Hour), now.Add(time.Hour)),
			want:  "44.93",
		},
		{
			name:  "discount above one hundred percent floors at zero",
			base:  "80.00",
			terms: percentTerms("150", now.Add(-time.Hour), now.Add(time.Hour)),
			want:  "0",
		},
		{
			name: "absolute promotional price",
			base: "80.00",
			terms: Terms{
				Discount: Absolute(dec("49.99")),
				Start:    At(now.Add(-time.Hour)),
				End:      At(now.Add(time.Hour)),
			},
			want: "49.99",
		},
		{
			name: "absolute price above base is capped at base",
			base: "100.00",
			terms: Terms{
				Discount: Absolute(dec("150")),
				Start:    At(now.Add(-time.Hour)),
				End:      At(now.Add(time.Hour)),
			},
			want: "100",
		},
		{
			name: "expired absolute price reverts to base",
			base: "80.00",
			terms: Terms{
				Discount: Absolute(dec("49.99")),
				Start:    At(now.Add(-2 * time.Hour)),
				End:      At(now.Add(-time.Hour)),
			},
			want: "80",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectivePrice(dec(tt.base), tt.terms, now)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestStatusAt_Lifecycle(t *testing.T) {
	terms := percentTerms("10", t0, t1)

	assert.Equal(t, StatusScheduled, StatusAt(terms, t0.Add(-time.Minute)))
	assert.Equal(t, StatusActive, StatusAt(terms, t0))
	assert.Equal(t, StatusActive, StatusAt(terms, t1))
	assert.Equal(t, StatusExpired, StatusAt(terms, t1.Add(time.Minute)))
	assert.Equal(t, StatusNone, StatusAt(Terms{}, t0))
}

func TestNewTerms(t *testing.T) {
	t.Run("valid window", func(t *testing.T) {
		terms, err := NewTerms(Percentage(dec("15")), ParseInstant("2026-03-01 10:00:00"), ParseInstant("2026-03-08 10:00:00"))
		require.NoError(t, err)

		start, ok := terms.Start.Time()
		require.True(t, ok)
		assert.Equal(t, t0, start)
		assert.True(t, IsActive(terms, t0))
	})

	invalid := []struct {
		name     string
		discount Discount
		start    Instant
		end      Instant
	}{
		{"zero discount", Percentage(dec("0")), At(t0), At(t1)},
		{"negative discount", Absolute(dec("-1")), At(t0), At(t1)},
		{"missing kind", Discount{Value: dec("10")}, At(t0), At(t1)},
		{"unparsable start", Percentage(dec("10")), ParseInstant("01/03/2026"), At(t1)},
		{"missing end", Percentage(dec("10")), At(t0), Instant{}},
		{"end before start", Percentage(dec("10")), At(t1), At(t0)},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTerms(tt.discount, tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPromotionWindow))
		})
	}
}

func TestTerms_ClearIsZero(t *testing.T) {
	assert.True(t, Terms{}.IsZero())
	assert.False(t, percentTerms("10", t0, t1).IsZero())
}

func TestInstant_JSON(t *testing.T) {
	var payload struct {
		Start Instant `json:"start"`
		End   Instant `json:"end"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2026-03-01 10:00:00","end":null}`), &payload))

	start, ok := payload.Start.Time()
	require.True(t, ok)
	assert.Equal(t, t0, start)
	assert.True(t, payload.End.IsZero())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2026-03-01 10:00:00","end":null}`, string(out))
}

func TestEvaluator_UsesClock(t *testing.T) {
	now := t0.Add(time.Hour)
	e := NewEvaluator(func() time.Time { return now })
	terms := percentTerms("50", t0, t1)

	assert.True(t, e.IsActive(terms))
	assert.Equal(t, StatusActive, e.Status(terms))
	assert.True(t, e.EffectivePrice(dec("10"), terms).Equal(dec("5")))

	now = t1.Add(time.Hour)
	assert.False(t, e.IsActive(terms))
}
