package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharv404/velmont-ecom/models"
)

func TestComputeFreeShippingWithPercentageCoupon(t *testing.T) {
	// ₹3499 item over the free-shipping threshold with WELCOME10 (10%).
	coupon := &models.Coupon{
		Code:      "WELCOME10",
		Type:      models.CouponTypePercentage,
		Value:     10,
		MinAmount: 200000,
		IsActive:  true,
	}

	q, err := Compute([]Line{{UnitPrice: 349900, Quantity: 1}}, coupon, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(349900), q.Subtotal)
	assert.Equal(t, int64(0), q.Shipping)
	assert.Equal(t, int64(34990), q.Discount)
	assert.Equal(t, int64(314910), q.Total)
}

func TestComputeFlatShippingNoCoupon(t *testing.T) {
	q, err := Compute([]Line{{UnitPrice: 75000, Quantity: 2}}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(150000), q.Subtotal)
	assert.Equal(t, FlatShippingFee, q.Shipping)
	assert.Equal(t, int64(0), q.Discount)
	assert.Equal(t, int64(155000), q.Total)
}

func TestComputePercentageMaxDiscountCap(t *testing.T) {
	coupon := &models.Coupon{
		Type:        models.CouponTypePercentage,
		Value:       50,
		MaxDiscount: 10000,
	}

	q, err := Compute([]Line{{UnitPrice: 400000, Quantity: 1}}, coupon, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), q.Discount)
	assert.Equal(t, int64(390000), q.Total)
}

func TestComputeFixedDiscountNeverNegative(t *testing.T) {
	// Flat ₹500 off a ₹100 cart: discount caps at subtotal+shipping.
	coupon := &models.Coupon{
		Type:  models.CouponTypeFixedAmount,
		Value: 50000,
	}

	q, err := Compute([]Line{{UnitPrice: 10000, Quantity: 1}}, coupon, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), q.Discount) // 10000 subtotal + 5000 shipping
	assert.Equal(t, int64(0), q.Total)
}

func TestComputeTotalIdentity(t *testing.T) {
	cases := []struct {
		lines  []Line
		coupon *models.Coupon
	}{
		{[]Line{{UnitPrice: 349900, Quantity: 1}}, nil},
		{[]Line{{UnitPrice: 9900, Quantity: 3}, {UnitPrice: 129900, Quantity: 1}}, nil},
		{[]Line{{UnitPrice: 500000, Quantity: 2}}, &models.Coupon{Type: models.CouponTypeFixedAmount, Value: 50000}},
		{[]Line{{UnitPrice: 1, Quantity: 1}}, &models.Coupon{Type: models.CouponTypePercentage, Value: 100}},
	}
	for _, tc := range cases {
		q, err := Compute(tc.lines, tc.coupon, nil)
		require.NoError(t, err)
		assert.Equal(t, q.Total, q.Subtotal+q.Tax+q.Shipping-q.Discount)
		assert.GreaterOrEqual(t, q.Total, int64(0))
		assert.GreaterOrEqual(t, q.Discount, int64(0))
	}
}

func TestComputePluggableTax(t *testing.T) {
	gst := func(subtotal int64) int64 { return subtotal * 18 / 100 }

	q, err := Compute([]Line{{UnitPrice: 100000, Quantity: 1}}, nil, gst)
	require.NoError(t, err)
	assert.Equal(t, int64(18000), q.Tax)
	assert.Equal(t, int64(123000), q.Total)
}

func TestComputeRejectsBadInput(t *testing.T) {
	_, err := Compute(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = Compute([]Line{{UnitPrice: 100, Quantity: 0}}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = Compute([]Line{{UnitPrice: 100, Quantity: -2}}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
