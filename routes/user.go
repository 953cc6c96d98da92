package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atharv404/velmont-ecom/config"
	addressControllers "github.com/atharv404/velmont-ecom/controllers/address"
	cartControllers "github.com/atharv404/velmont-ecom/controllers/cart"
	checkoutControllers "github.com/atharv404/velmont-ecom/controllers/checkout"
	orderControllers "github.com/atharv404/velmont-ecom/controllers/order"
	"github.com/atharv404/velmont-ecom/middleware"
	"github.com/atharv404/velmont-ecom/payment"
)

func SetupUserRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, gw *payment.Client) {
	user := r.Group("/", middleware.ValidateToken(cfg.JWTSecret))
	{
		user.GET("/cart", cartControllers.GetCart(db))
		user.POST("/cart/items", cartControllers.AddCartItem(db))
		user.PATCH("/cart/items/:itemID", cartControllers.UpdateCartItem(db))
		user.DELETE("/cart/items/:itemID", cartControllers.DeleteCartItem(db))

		user.POST("/checkout", checkoutControllers.CheckoutHandler(db, gw))
		user.POST("/checkout/verify", checkoutControllers.VerifyPaymentHandler(db, gw))

		user.GET("/orders", orderControllers.GetUserOrders(db))
		user.GET("/orders/:orderID", orderControllers.GetOrderByID(db))

		user.GET("/addresses", addressControllers.GetAddresses(db))
		user.POST("/addresses", addressControllers.CreateAddress(db))
		user.PUT("/addresses/:addressID", addressControllers.UpdateAddress(db))
		user.DELETE("/addresses/:addressID", addressControllers.DeleteAddress(db))
	}
}
