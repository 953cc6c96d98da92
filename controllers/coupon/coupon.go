package couponControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atharv404/velmont-ecom/models"
)

type CouponInput struct {
	Code        string     `json:"code" binding:"required"`
	Type        string     `json:"type" binding:"required"`
	Value       int64      `json:"value" binding:"required,min=1"`
	MaxDiscount int64      `json:"maxDiscount" binding:"min=0"`
	MinAmount   int64      `json:"minAmount" binding:"min=0"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

type CouponUpdateInput struct {
	IsActive    *bool      `json:"isActive"`
	MaxDiscount *int64     `json:"maxDiscount"`
	MinAmount   *int64     `json:"minAmount"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

func mapCouponType(s string) (models.CouponType, error) {
	switch models.CouponType(strings.ToUpper(s)) {
	case models.CouponTypePercentage:
		return models.CouponTypePercentage, nil
	case models.CouponTypeFixedAmount:
		return models.CouponTypeFixedAmount, nil
	default:
		return "", errors.New("type must be PERCENTAGE or FIXED_AMOUNT")
	}
}

// GET /admin/coupons
func GetCoupons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupons []models.Coupon
		if err := db.Order("created_at DESC").Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"coupons": coupons})
	}
}

// POST /admin/coupons
func CreateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		couponType, err := mapCouponType(input.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if couponType == models.CouponTypePercentage && input.Value > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "percentage value cannot exceed 100"})
			return
		}

		coupon := models.Coupon{
			Code:        strings.ToUpper(input.Code),
			Type:        couponType,
			Value:       input.Value,
			MaxDiscount: input.MaxDiscount,
			MinAmount:   input.MinAmount,
			IsActive:    true,
			ExpiresAt:   input.ExpiresAt,
		}
		if err := db.Create(&coupon).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create coupon"})
			return
		}
		c.JSON(http.StatusCreated, coupon)
	}
}

// PATCH /admin/coupons/:couponID
func UpdateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupon models.Coupon
		if err := db.First(&coupon, "id = ?", c.Param("couponID")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupon"})
			return
		}

		var input CouponUpdateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.IsActive != nil {
			updates["is_active"] = *input.IsActive
		}
		if input.MaxDiscount != nil {
			updates["max_discount"] = *input.MaxDiscount
		}
		if input.MinAmount != nil {
			updates["min_amount"] = *input.MinAmount
		}
		if input.ExpiresAt != nil {
			updates["expires_at"] = *input.ExpiresAt
		}

		if len(updates) > 0 {
			if err := db.Model(&coupon).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coupon"})
				return
			}
		}
		c.JSON(http.StatusOK, coupon)
	}
}
