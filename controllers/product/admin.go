package productControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atharv404/velmont-ecom/models"
)

type ProductInput struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	Description  string `json:"description"`
	SKU          string `json:"sku" binding:"required"`
	MRP          int64  `json:"mrp"`
	SellingPrice int64  `json:"sellingPrice" binding:"required,min=1"`
	StockQty     int    `json:"stockQty" binding:"min=0"`
	CategoryID   uint   `json:"categoryId"`
	IsActive     *bool  `json:"isActive"`
	IsFeatured   *bool  `json:"isFeatured"`
}

type CategoryInput struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product := models.Product{
			Name:         input.Name,
			Slug:         input.Slug,
			Description:  input.Description,
			SKU:          input.SKU,
			MRP:          input.MRP,
			SellingPrice: input.SellingPrice,
			StockQty:     input.StockQty,
			CategoryID:   input.CategoryID,
			IsActive:     true,
		}
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}
		if input.IsFeatured != nil {
			product.IsFeatured = *input.IsFeatured
		}

		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// PUT /admin/products/:productID
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var product models.Product
		if err := db.First(&product, "id = ?", c.Param("productID")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product.Name = input.Name
		product.Slug = input.Slug
		product.Description = input.Description
		product.SKU = input.SKU
		product.MRP = input.MRP
		product.SellingPrice = input.SellingPrice
		product.StockQty = input.StockQty
		product.CategoryID = input.CategoryID
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}
		if input.IsFeatured != nil {
			product.IsFeatured = *input.IsFeatured
		}

		if err := db.Save(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// DELETE /admin/products/:productID
//
// Products referenced by order snapshots are never hard-deleted, they are
// retired from the storefront instead.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Model(&models.Product{}).
			Where("id = ?", c.Param("productID")).
			Update("is_active", false)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product retired"})
	}
}

// POST /admin/categories
func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		category := models.Category{Name: input.Name, Slug: input.Slug, IsActive: true}
		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}
