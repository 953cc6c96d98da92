package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atharv404/velmont-ecom/config"
	couponControllers "github.com/atharv404/velmont-ecom/controllers/coupon"
	orderControllers "github.com/atharv404/velmont-ecom/controllers/order"
	productControllers "github.com/atharv404/velmont-ecom/controllers/product"
	"github.com/atharv404/velmont-ecom/middleware"
)

func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	admin := r.Group("/admin", middleware.ValidateAPIKey(cfg.AdminAPIKey))
	{
		admin.GET("/products", productControllers.GetProducts(db, true))
		admin.POST("/products", productControllers.CreateProduct(db))
		admin.PUT("/products/:productID", productControllers.UpdateProduct(db))
		admin.DELETE("/products/:productID", productControllers.DeleteProduct(db))
		admin.POST("/categories", productControllers.CreateCategory(db))

		admin.GET("/coupons", couponControllers.GetCoupons(db))
		admin.POST("/coupons", couponControllers.CreateCoupon(db))
		admin.PATCH("/coupons/:couponID", couponControllers.UpdateCoupon(db))

		admin.PUT("/orders/:orderID/status", orderControllers.UpdateOrderStatus(db))
		admin.PUT("/orders/:orderID/payment-status", orderControllers.UpdatePaymentStatus(db))
	}
}
