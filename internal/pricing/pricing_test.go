package pricing

import (
	"errors"
	"testing"

	"go-pos-checkout/internal/models"
)

func line(price float64, qty int) models.CartLine {
	return models.CartLine{UnitPrice: price, Quantity: qty}
}

func TestCompute_BasicSale(t *testing.T) {
	// 2 × 100 at 7% VAT, no discount
	got := Compute([]models.CartLine{line(100, 2)}, Discount{}, 7)

	if got.Subtotal != 200 {
		t.Errorf("subtotal = %v, want 200", got.Subtotal)
	}
	if got.Discount != 0 {
		t.Errorf("discount = %v, want 0", got.Discount)
	}
	if got.Tax != 14 {
		t.Errorf("tax = %v, want 14", got.Tax)
	}
	if got.Total != 214 {
		t.Errorf("total = %v, want 214", got.Total)
	}
}

func TestCompute_DiscountAndTax(t *testing.T) {
	// 500 with a 50 baht point redemption: tax on the discounted amount
	d := Discount{PointsUsed: 50, Amount: 50}
	got := Compute([]models.CartLine{line(500, 1)}, d, 7)

	if got.Subtotal != 500 {
		t.Errorf("subtotal = %v, want 500", got.Subtotal)
	}
	if got.Discount != 50 {
		t.Errorf("discount = %v, want 50", got.Discount)
	}
	if got.Tax != 31.50 {
		t.Errorf("tax = %v, want 31.50", got.Tax)
	}
	if got.Total != 481.50 {
		t.Errorf("total = %v, want 481.50", got.Total)
	}
}

func TestCompute_VATExcluded(t *testing.T) {
	d := Discount{PointsUsed: 50, Amount: 50, ExcludeVAT: true}
	got := Compute([]models.CartLine{line(500, 1)}, d, 7)

	if got.Tax != 0 {
		t.Errorf("tax = %v, want 0 when VAT excluded", got.Tax)
	}
	if got.Total != 450 {
		t.Errorf("total = %v, want 450", got.Total)
	}
}

func TestCompute_EmptyCart(t *testing.T) {
	got := Compute(nil, Discount{}, 7)
	if got.Subtotal != 0 || got.Tax != 0 || got.Total != 0 {
		t.Errorf("empty cart should be all zeros, got %+v", got)
	}
}

func TestCompute_DiscountClampedToSubtotal(t *testing.T) {
	// A redemption validated against a bigger cart never pushes total negative
	d := Discount{PointsUsed: 300, Amount: 300}
	got := Compute([]models.CartLine{line(100, 2)}, d, 7)

	if got.Discount != 200 {
		t.Errorf("discount = %v, want clamp to subtotal 200", got.Discount)
	}
	if got.Total != 0 {
		t.Errorf("total = %v, want 0", got.Total)
	}
}

func TestCompute_TotalInvariant(t *testing.T) {
	carts := [][]models.CartLine{
		{line(19.75, 3)},
		{line(100, 2), line(35.25, 1)},
		{line(500, 1), line(0.99, 7)},
	}
	discounts := []Discount{
		{},
		{PointsUsed: 10, Amount: 10},
		{PointsUsed: 10, Amount: 10, ExcludeVAT: true},
	}
	for _, lines := range carts {
		for _, d := range discounts {
			got := Compute(lines, d, 7)
			want := got.Subtotal - got.Discount + got.Tax
			if diff := got.Total - want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("total %v != subtotal %v - discount %v + tax %v",
					got.Total, got.Subtotal, got.Discount, got.Tax)
			}
			if d.ExcludeVAT && got.Tax != 0 {
				t.Errorf("tax = %v, want 0 with ExcludeVAT", got.Tax)
			}
		}
	}
}

func TestApplyPoints(t *testing.T) {
	member := &models.Customer{ID: 1, LoyaltyPoints: 120}

	tests := []struct {
		name       string
		customer   *models.Customer
		points     int
		subtotal   float64
		pointValue float64
		wantErr    error
		wantAmount float64
	}{
		{"no customer", nil, 50, 500, 1, ErrNoCustomer, 0},
		{"zero points", member, 0, 500, 1, ErrInvalidPoints, 0},
		{"negative points", member, -5, 500, 1, ErrInvalidPoints, 0},
		{"over balance", member, 121, 500, 1, ErrInsufficientPoints, 0},
		{"discount over subtotal", member, 120, 100, 1, ErrDiscountOverSubtotal, 0},
		{"valid", member, 50, 500, 1, nil, 50},
		{"valid at half baht per point", member, 100, 60, 0.5, nil, 50},
		{"exactly the subtotal", member, 100, 100, 1, nil, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ApplyPoints(tt.customer, tt.points, tt.subtotal, tt.pointValue)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if d.PointsUsed != tt.points {
				t.Errorf("PointsUsed = %d, want %d", d.PointsUsed, tt.points)
			}
			if d.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", d.Amount, tt.wantAmount)
			}
		})
	}
}

func TestRemoveDiscount_Idempotent(t *testing.T) {
	d := Discount{PointsUsed: 50, Amount: 50, ExcludeVAT: true}

	d = RemoveDiscount(d)
	if d.PointsUsed != 0 || d.Amount != 0 {
		t.Errorf("after remove: %+v, want zero redemption", d)
	}
	if !d.ExcludeVAT {
		t.Error("remove discount must not touch the VAT flag")
	}

	// Removing again is a no-op
	again := RemoveDiscount(d)
	if again != d {
		t.Errorf("second remove changed state: %+v", again)
	}

	// And it is safe on the zero value
	if got := RemoveDiscount(Discount{}); got != (Discount{}) {
		t.Errorf("remove on zero value = %+v", got)
	}
}

func TestPointsEarned(t *testing.T) {
	tests := []struct {
		total          float64
		amountPerPoint float64
		want           int
	}{
		{481.50, 100, 4},
		{99.99, 100, 0},
		{100, 100, 1},
		{214, 100, 2},
		{450, 0, 0},   // rate unset
		{0, 100, 0},   // nothing bought
		{-50, 100, 0}, // refund totals never earn
	}
	for _, tt := range tests {
		if got := PointsEarned(tt.total, tt.amountPerPoint); got != tt.want {
			t.Errorf("PointsEarned(%v, %v) = %d, want %d", tt.total, tt.amountPerPoint, got, tt.want)
		}
	}
}
