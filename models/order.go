package models

import "time"

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"    // placed, awaiting payment
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"  // payment settled
	OrderStatusProcessing OrderStatus = "PROCESSING" // being packed
	OrderStatusShipped    OrderStatus = "SHIPPED"    // out for delivery
	OrderStatusDelivered  OrderStatus = "DELIVERED"  // customer received it
	OrderStatusCancelled  OrderStatus = "CANCELLED"  // cancelled before delivery
	OrderStatusRefunded   OrderStatus = "REFUNDED"   // money returned

	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID      string `gorm:"index;not null" json:"user_id"`
	AddressID   uint   `gorm:"not null" json:"address_id"`
	Address     Address `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	// Totals in paise. TotalAmount = Subtotal + TaxAmount + ShippingAmount - DiscountAmount.
	Subtotal       int64  `gorm:"not null" json:"subtotal"`
	TaxAmount      int64  `json:"tax_amount"`
	ShippingAmount int64  `json:"shipping_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	Currency       string `gorm:"default:'INR'" json:"currency"`
	CouponCode     string `json:"coupon_code,omitempty"`

	Status        OrderStatus   `gorm:"type:VARCHAR(20);default:'PENDING'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20);default:'PENDING'" json:"payment_status"`

	// Gateway reference triple; RazorpayOrderID is set at creation,
	// the payment id and signature only after a verified callback.
	RazorpayOrderID   string `gorm:"index" json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is an immutable snapshot of the product at order creation.
// TotalPrice = UnitPrice * Quantity.
type OrderItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderID     uint   `gorm:"index;not null" json:"order_id"`
	ProductID   uint   `gorm:"not null" json:"product_id"`
	VariantID   *uint  `json:"variant_id,omitempty"`
	ProductName string `gorm:"not null" json:"product_name"`
	ProductSKU  string `gorm:"column:product_sku" json:"product_sku"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`
	TotalPrice  int64  `gorm:"not null" json:"total_price"`
	Quantity    int    `gorm:"not null" json:"quantity"`
}

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// CanTransition reports whether an order may move from one status to another.
// Fulfilment statuses only move forward; CANCELLED and REFUNDED are terminal
// and reachable from any state before DELIVERED.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	if from == OrderStatusCancelled || from == OrderStatusRefunded || from == OrderStatusDelivered {
		return false
	}
	if to == OrderStatusCancelled || to == OrderStatusRefunded {
		return true
	}
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}
