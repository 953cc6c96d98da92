package pricing

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/atharv404/velmont-ecom/models"
)

// ResolveCoupon looks up a coupon code and returns it only when it is
// applicable to the given subtotal. An unknown, inactive, expired or
// not-yet-eligible code yields (nil, nil): an invalid coupon silently
// buys nothing rather than blocking checkout. Only storage faults are
// returned as errors.
func ResolveCoupon(db *gorm.DB, code string, subtotal int64) (*models.Coupon, error) {
	if code == "" {
		return nil, nil
	}

	var coupon models.Coupon
	if err := db.Where("code = ?", code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !coupon.IsActive {
		return nil, nil
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	if coupon.MinAmount > 0 && subtotal < coupon.MinAmount {
		return nil, nil
	}
	return &coupon, nil
}
