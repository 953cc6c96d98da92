package pricing

import (
	"errors"

	"github.com/atharv404/velmont-ecom/models"
)

const (
	// Free shipping over ₹2999, flat fee below.
	FreeShippingThreshold int64 = 299900
	FlatShippingFee       int64 = 5000
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Line is one cart position with the variant adjustment already folded
// into the unit price.
type Line struct {
	UnitPrice int64
	Quantity  int
}

// Quote holds the computed totals in paise. All fields are non-negative
// and Total = Subtotal + Tax + Shipping - Discount.
type Quote struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// TaxFunc computes tax on a subtotal. The flat policy today is zero;
// a jurisdiction rule can be plugged in without touching Compute.
type TaxFunc func(subtotal int64) int64

func ZeroTax(int64) int64 { return 0 }

// Subtotal sums the lines without validating them. Compute is the
// authoritative entry point.
func Subtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.UnitPrice * int64(l.Quantity)
	}
	return sum
}

// Compute prices a cart. The coupon is assumed already resolved and
// eligible (see ResolveCoupon); pass nil for no discount. A nil tax
// function falls back to ZeroTax.
func Compute(lines []Line, coupon *models.Coupon, tax TaxFunc) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, ErrEmptyCart
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			return Quote{}, ErrInvalidQuantity
		}
	}
	if tax == nil {
		tax = ZeroTax
	}

	q := Quote{Subtotal: Subtotal(lines)}
	q.Tax = tax(q.Subtotal)

	if q.Subtotal < FreeShippingThreshold {
		q.Shipping = FlatShippingFee
	}

	if coupon != nil {
		switch coupon.Type {
		case models.CouponTypePercentage:
			q.Discount = q.Subtotal * coupon.Value / 100
			if coupon.MaxDiscount > 0 && q.Discount > coupon.MaxDiscount {
				q.Discount = coupon.MaxDiscount
			}
		case models.CouponTypeFixedAmount:
			q.Discount = coupon.Value
		}
		// A discount must never push the total negative.
		if limit := q.Subtotal + q.Shipping; q.Discount > limit {
			q.Discount = limit
		}
	}

	q.Total = q.Subtotal + q.Tax + q.Shipping - q.Discount
	return q, nil
}
