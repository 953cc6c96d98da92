package orderControllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/atharv404/velmont-ecom/controllers/cart"
	"github.com/atharv404/velmont-ecom/inventory"
	"github.com/atharv404/velmont-ecom/models"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch models.OrderStatus(strings.ToUpper(status)) {
	case models.OrderStatusPending:
		return models.OrderStatusPending, nil
	case models.OrderStatusConfirmed:
		return models.OrderStatusConfirmed, nil
	case models.OrderStatusProcessing:
		return models.OrderStatusProcessing, nil
	case models.OrderStatusShipped:
		return models.OrderStatusShipped, nil
	case models.OrderStatusDelivered:
		return models.OrderStatusDelivered, nil
	case models.OrderStatusCancelled:
		return models.OrderStatusCancelled, nil
	case models.OrderStatusRefunded:
		return models.OrderStatusRefunded, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// GET /orders
func GetUserOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := cartControllers.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Preload("Address").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// GET /orders/:orderID accepts a numeric id or an order number.
func GetOrderByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := cartControllers.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ref := c.Param("orderID")
		query := db.Preload("Items").Preload("Address").Where("user_id = ?", userID)
		if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
			query = query.Where("id = ?", id)
		} else {
			query = query.Where("order_number = ?", ref)
		}

		var order models.Order
		if err := query.First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /admin/orders/:orderID/status
//
// Fulfilment moves forward only. Cancelling a paid order before it
// ships puts the items back on the shelf.
func UpdateOrderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if newStatus == models.OrderStatusConfirmed {
			// CONFIRMED is owned by payment settlement, not by hand.
			c.JSON(http.StatusBadRequest, gin.H{"error": "orders are confirmed by payment verification"})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", c.Param("orderID")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		if !models.CanTransition(order.Status, newStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status transition"})
			return
		}

		restock := newStatus == models.OrderStatusCancelled &&
			order.PaymentStatus == models.PaymentStatusCompleted &&
			beforeShipment(order.Status)

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
				Update("status", newStatus).Error; err != nil {
				return err
			}
			if restock {
				for _, item := range order.Items {
					if err := inventory.Restock(tx, item.ProductID, item.Quantity); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}

		order.Status = newStatus
		BroadcastOrderUpdate(order)
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
	}
}

func beforeShipment(s models.OrderStatus) bool {
	return s == models.OrderStatusPending || s == models.OrderStatusConfirmed || s == models.OrderStatusProcessing
}

// PUT /admin/orders/:orderID/payment-status
//
// Only FAILED and REFUNDED can be set by hand; COMPLETED is reserved
// for the signature-verified settlement path.
func UpdatePaymentStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		newStatus := models.PaymentStatus(strings.ToUpper(req.PaymentStatus))
		if newStatus != models.PaymentStatusFailed && newStatus != models.PaymentStatusRefunded {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment status must be FAILED or REFUNDED"})
			return
		}

		res := db.Model(&models.Order{}).
			Where("id = ?", c.Param("orderID")).
			Update("payment_status", newStatus)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update payment status"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		log.Printf("order %s: payment status set to %s", c.Param("orderID"), newStatus)
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated"})
	}
}
