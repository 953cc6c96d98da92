package productControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atharv404/velmont-ecom/models"
)

// Filter is the closed set of predicates the catalog supports. Handlers
// translate query strings into it; everything below this type works with
// typed fields only.
type Filter struct {
	ActiveOnly   bool
	CategorySlug string
	Featured     *bool
	Search       string
}

// ListProducts returns catalog rows matching the filter, newest first.
func ListProducts(db *gorm.DB, f Filter) ([]models.Product, error) {
	query := db.Model(&models.Product{}).Preload("Category").Preload("Variants")

	if f.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}
	if f.CategorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if f.Featured != nil {
		query = query.Where("products.is_featured = ?", *f.Featured)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("products.name LIKE ? OR products.description LIKE ?", like, like)
	}

	var products []models.Product
	err := query.Order("products.created_at DESC").Find(&products).Error
	return products, err
}

// GET /products
//
// The storefront only ever sees active products; the admin listing passes
// ?include_inactive=true through the keyed route.
func GetProducts(db *gorm.DB, adminView bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := Filter{
			ActiveOnly:   true,
			CategorySlug: c.Query("category"),
			Search:       c.Query("search"),
		}
		if adminView && c.Query("include_inactive") == "true" {
			f.ActiveOnly = false
		}
		if v := c.Query("featured"); v != "" {
			featured := v == "true"
			f.Featured = &featured
		}

		products, err := ListProducts(db, f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

// GET /products/:ref accepts a numeric id or a slug.
func GetProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := c.Param("ref")
		query := db.Preload("Category").Preload("Variants").
			Where("is_active = ?", true)
		if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
			query = query.Where("id = ?", id)
		} else {
			query = query.Where("slug = ?", ref)
		}

		var product models.Product
		if err := query.First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GET /categories
func GetCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Where("is_active = ?", true).Order("name").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}
