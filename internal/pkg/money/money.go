// internal/pkg/money/money.go

// Package money holds the decimal helpers shared by pricing, cart totals and billing.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for monetary values
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds to two places, half away from zero (half-up for the non-negative amounts we handle)
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// NonNegative clamps d at zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ToMinorUnits converts an amount to cents
func ToMinorUnits(d decimal.Decimal) int64 {
	return Round(d).Mul(hundred).IntPart()
}

// FromMinorUnits converts cents to an amount
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -Places)
}

// Parse accepts a plain decimal ("59.90", "59") or Brazilian-formatted text ("R$ 1.234,56", "59,90").
func Parse(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "R$")
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return decimal.Zero, fmt.Errorf("price is required")
	}

	if strings.Contains(raw, ",") {
		// BRL text: dots group thousands, the comma is the decimal separator
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price must be numeric: %q", s)
	}
	return d, nil
}

// FormatBRL renders an amount the way the storefront displays it
func FormatBRL(d decimal.Decimal) string {
	fixed := Round(d).StringFixed(Places)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := "R$ " + grouped.String() + "," + frac
	if negative {
		out = "-" + out
	}
	return out
}

// Amount is a price received from a client, either as a JSON number or as text
type Amount struct {
	Value decimal.Decimal
	Set   bool
}

// UnmarshalJSON accepts 59.9, "59.90" and "R$ 59,90"
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Amount{}
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	d, err := Parse(raw)
	if err != nil {
		return err
	}
	*a = Amount{Value: d, Set: true}
	return nil
}
