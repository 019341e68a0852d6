// Package pricing computes cart totals. Everything here is pure: no I/O, no
// clock, no database. The checkout flow recomputes totals from scratch on
// every cart change.
package pricing

import (
	"errors"
	"math"

	"go-pos-checkout/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNoCustomer           = errors.New("no customer selected")
	ErrInvalidPoints        = errors.New("points must be greater than zero")
	ErrInsufficientPoints   = errors.New("customer does not have enough points")
	ErrDiscountOverSubtotal = errors.New("discount exceeds cart subtotal")
)

// Discount carries the active loyalty redemption for the current cart.
// The zero value means no discount.
type Discount struct {
	PointsUsed int     `json:"points_used"`
	Amount     float64 `json:"amount"`
	ExcludeVAT bool    `json:"exclude_vat"`
}

// Totals is the computed money breakdown shown on the register and stamped
// onto the persisted sale.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Compute derives totals from the cart lines and the active discount.
// taxRatePercent is the VAT percentage (7 means 7%). Amounts are computed in
// decimal and rounded to satang (2dp) so 7% of 450 is exactly 31.50.
func Compute(lines []models.CartLine, d Discount, taxRatePercent float64) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		line := decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	discount := decimal.NewFromFloat(d.Amount).Round(2)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	// A redemption validated against an earlier, larger cart can exceed the
	// current subtotal; the invariant discount <= subtotal always wins.
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	tax := decimal.Zero
	if !d.ExcludeVAT && taxRatePercent > 0 {
		rate := decimal.NewFromFloat(taxRatePercent).Div(decimal.NewFromInt(100))
		tax = subtotal.Sub(discount).Mul(rate).Round(2)
	}

	total := subtotal.Sub(discount).Add(tax)

	sub, _ := subtotal.Float64()
	disc, _ := discount.Float64()
	tx, _ := tax.Float64()
	tot, _ := total.Float64()
	return Totals{Subtotal: sub, Discount: disc, Tax: tx, Total: tot}
}

// ApplyPoints validates a loyalty redemption and returns the resulting
// discount. The caller's state is untouched on error. pointValue is the baht
// value of one point.
func ApplyPoints(customer *models.Customer, pointsToUse int, subtotal, pointValue float64) (Discount, error) {
	if customer == nil {
		return Discount{}, ErrNoCustomer
	}
	if pointsToUse <= 0 {
		return Discount{}, ErrInvalidPoints
	}
	if pointsToUse > customer.LoyaltyPoints {
		return Discount{}, ErrInsufficientPoints
	}

	amount := decimal.NewFromInt(int64(pointsToUse)).Mul(decimal.NewFromFloat(pointValue)).Round(2)
	if amount.GreaterThan(decimal.NewFromFloat(subtotal).Round(2)) {
		return Discount{}, ErrDiscountOverSubtotal
	}

	value, _ := amount.Float64()
	return Discount{PointsUsed: pointsToUse, Amount: value}, nil
}

// RemoveDiscount clears any active redemption but keeps the VAT flag, which
// is a separate toggle on the register. Safe to call when nothing is active.
func RemoveDiscount(d Discount) Discount {
	return Discount{ExcludeVAT: d.ExcludeVAT}
}

// PointsEarned converts a confirmed sale total into loyalty points:
// floor(total / amountPerPoint). A zero or unset rate earns nothing.
func PointsEarned(total, amountPerPoint float64) int {
	if amountPerPoint <= 0 || total <= 0 {
		return 0
	}
	earned := decimal.NewFromFloat(total).Div(decimal.NewFromFloat(amountPerPoint)).Floor()
	v, _ := earned.Float64()
	if v < 0 || v > math.MaxInt32 {
		return 0
	}
	return int(v)
}
