package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	productControllers "github.com/atharv404/velmont-ecom/controllers/product"
)

func SetupCatalogRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/products", productControllers.GetProducts(db, false))
	r.GET("/products/:ref", productControllers.GetProduct(db))
	r.GET("/categories", productControllers.GetCategories(db))
}
