package checkoutControllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	cartControllers "github.com/atharv404/velmont-ecom/controllers/cart"
	orderControllers "github.com/atharv404/velmont-ecom/controllers/order"
	"github.com/atharv404/velmont-ecom/inventory"
	"github.com/atharv404/velmont-ecom/models"
	"github.com/atharv404/velmont-ecom/payment"
	"github.com/atharv404/velmont-ecom/pricing"
)

const Currency = "INR"

var (
	ErrInvalidAddress   = errors.New("invalid address")
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidSignature = errors.New("invalid payment signature")
)

type CheckoutRequest struct {
	AddressID  uint   `json:"addressId" binding:"required"`
	CouponCode string `json:"couponCode"`
}

type CheckoutResponse struct {
	OrderID        uint   `json:"orderId"`
	OrderNumber    string `json:"orderNumber"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	PublicKey      string `json:"publicKey"`
}

type VerifyRequest struct {
	OrderID          uint   `json:"orderId" binding:"required"`
	GatewayOrderID   string `json:"gatewayOrderId" binding:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

func generateOrderNumber() string {
	return "ORD-" + time.Now().UTC().Format("20060102150405") + "-" + uuid.NewString()
}

// Checkout turns the user's cart into a pending order backed by a gateway
// payment intent. The cart is read once; the intent is created before
// anything is persisted, so an order row never exists without a gateway
// reference. Stock is NOT reserved here: the authoritative check happens
// at settlement.
func Checkout(ctx context.Context, db *gorm.DB, gw *payment.Client, userID string, req CheckoutRequest) (*models.Order, error) {
	var cart models.Cart
	err := db.Preload("Items.Product").Preload("Items.Variant").
		Where("user_id = ?", userID).First(&cart).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, pricing.ErrEmptyCart
	}

	var address models.Address
	if err := db.First(&address, "id = ?", req.AddressID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAddress
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, ErrInvalidAddress
	}

	// Snapshot the lines with the variant adjustment folded in.
	lines := make([]pricing.Line, 0, len(cart.Items))
	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		unitPrice := item.Product.SellingPrice
		if item.Variant != nil {
			unitPrice += item.Variant.PriceAdjust
		}
		lines = append(lines, pricing.Line{UnitPrice: unitPrice, Quantity: item.Quantity})
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.Product.Name,
			ProductSKU:  item.Product.SKU,
			UnitPrice:   unitPrice,
			TotalPrice:  unitPrice * int64(item.Quantity),
			Quantity:    item.Quantity,
		})
	}

	coupon, err := pricing.ResolveCoupon(db, req.CouponCode, pricing.Subtotal(lines))
	if err != nil {
		return nil, err
	}
	quote, err := pricing.Compute(lines, coupon, nil)
	if err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixMilli())
	gatewayOrderID, err := gw.CreateOrder(ctx, quote.Total, Currency, receipt, map[string]string{
		"userId": userID,
		"cartId": fmt.Sprint(cart.ID),
	})
	if err != nil {
		return nil, err
	}

	couponCode := ""
	if coupon != nil {
		couponCode = coupon.Code
	}
	order := models.Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          userID,
		AddressID:       address.ID,
		Items:           orderItems,
		Subtotal:        quote.Subtotal,
		TaxAmount:       quote.Tax,
		ShippingAmount:  quote.Shipping,
		DiscountAmount:  quote.Discount,
		TotalAmount:     quote.Total,
		Currency:        Currency,
		CouponCode:      couponCode,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		RazorpayOrderID: gatewayOrderID,
	}

	// Header and item snapshot land in one transaction; a partial order
	// is never visible to other readers.
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	}); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyPayment settles a pending order from a payment callback. The HMAC
// signature is the only accepted proof of payment. Settlement is
// idempotent: replays of an already-settled callback succeed without
// repeating the stock decrement or the cart clear.
func VerifyPayment(db *gorm.DB, gw *payment.Client, userID string, req VerifyRequest) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Items").
		Where("id = ? AND user_id = ?", req.OrderID, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// Verify against the stored gateway reference, not the caller's copy.
	if req.GatewayOrderID != order.RazorpayOrderID ||
		!gw.VerifySignature(order.RazorpayOrderID, req.GatewayPaymentID, req.Signature) {
		// The order stays PENDING for manual reconciliation.
		return nil, ErrInvalidSignature
	}

	if order.PaymentStatus == models.PaymentStatusCompleted {
		return &order, nil
	}

	// Conditional transition guards against a concurrent duplicate
	// callback; only the winner runs the side effects below.
	res := db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusPending).
		Updates(map[string]any{
			"payment_status":      models.PaymentStatusCompleted,
			"status":              models.OrderStatusConfirmed,
			"razorpay_payment_id": req.GatewayPaymentID,
			"razorpay_signature":  req.Signature,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race to another delivery of the same callback.
		if err := db.First(&order, order.ID).Error; err != nil {
			return nil, err
		}
		return &order, nil
	}

	// The money has moved; a failed decrement is a reconciliation
	// problem, never a payment reversal.
	for _, item := range order.Items {
		if err := inventory.Decrement(db, item.ProductID, item.Quantity); err != nil {
			log.Printf("order %s: stock decrement failed for product %d x%d: %v",
				order.OrderNumber, item.ProductID, item.Quantity, err)
		}
	}
	if err := cartControllers.Clear(db, userID); err != nil {
		log.Printf("order %s: cart clear failed for user %s: %v", order.OrderNumber, userID, err)
	}

	if err := db.First(&order, order.ID).Error; err != nil {
		return nil, err
	}
	orderControllers.BroadcastOrderUpdate(order)
	return &order, nil
}

// POST /checkout
func CheckoutHandler(db *gorm.DB, gw *payment.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := cartControllers.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := Checkout(c.Request.Context(), db, gw, userID, req)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, CheckoutResponse{
				OrderID:        order.ID,
				OrderNumber:    order.OrderNumber,
				GatewayOrderID: order.RazorpayOrderID,
				Amount:         order.TotalAmount,
				Currency:       order.Currency,
				PublicKey:      gw.KeyID,
			})
		case errors.Is(err, pricing.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		case errors.Is(err, ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address"})
		case errors.Is(err, payment.ErrGatewayUnavailable), errors.Is(err, payment.ErrGatewayRejected):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway error"})
		default:
			log.Printf("checkout failed for user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
	}
}

// POST /checkout/verify
func VerifyPaymentHandler(db *gorm.DB, gw *payment.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := cartControllers.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := VerifyPayment(db, gw, userID, req)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{
				"orderId":     order.ID,
				"orderNumber": order.OrderNumber,
			})
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
		default:
			log.Printf("payment verification failed for user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment verification failed"})
		}
	}
}
