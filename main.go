package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/atharv404/velmont-ecom/config"
	"github.com/atharv404/velmont-ecom/models"
	"github.com/atharv404/velmont-ecom/payment"
	"github.com/atharv404/velmont-ecom/routes"
)

func main() {
	log.Println("✅ Starting application...")

	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Coupon{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	if err := seedCoupons(db); err != nil {
		log.Fatalf("❌ Coupon seed failed: %v", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	gw := payment.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)

	routes.SetupRoutes(r, db, cfg, gw)

	log.Printf("🚀 Server running on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// seedCoupons inserts the launch coupons once; existing codes are left alone.
func seedCoupons(db *gorm.DB) error {
	seeds := []models.Coupon{
		{
			Code: "WELCOME10", Name: "Welcome 10% off",
			Type: models.CouponTypePercentage, Value: 10,
			MinAmount: 200000, IsActive: true,
		},
		{
			Code: "SAVE500", Name: "Flat 500 off",
			Type: models.CouponTypeFixedAmount, Value: 50000,
			MinAmount: 500000, IsActive: true,
		},
	}
	for _, seed := range seeds {
		if err := db.Where("code = ?", seed.Code).FirstOrCreate(&seed).Error; err != nil {
			return err
		}
	}
	return nil
}
