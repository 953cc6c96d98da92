package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atharv404/velmont-ecom/config"
	orderControllers "github.com/atharv404/velmont-ecom/controllers/order"
	"github.com/atharv404/velmont-ecom/payment"
)

// SetupRoutes is the single entry point that wires up the public catalog,
// the JWT-protected user surface and the API-key-protected admin surface.
func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, gw *payment.Client) {
	SetupCatalogRoutes(r, db)

	SetupUserRoutes(r, db, cfg, gw)

	SetupAdminRoutes(r, db, cfg)

	// websocket endpoint for real-time order updates
	r.GET("/ws/orders", orderControllers.OrderEventsHandler)
}
