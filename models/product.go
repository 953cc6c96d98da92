package models

import "time"

// All monetary fields across the models are integer paise.

type Category struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

type Product struct {
	ID           uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string           `gorm:"not null" json:"name"`
	Slug         string           `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string           `json:"description"`
	SKU          string           `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	MRP          int64            `gorm:"column:mrp" json:"mrp"`
	SellingPrice int64            `gorm:"not null" json:"selling_price"`
	IsActive     bool             `gorm:"default:true" json:"is_active"`
	IsFeatured   bool             `json:"is_featured"`
	StockQty     int              `gorm:"not null;default:0" json:"stock_qty"`
	CategoryID   uint             `gorm:"index" json:"category_id"`
	Category     Category         `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Variants     []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ProductVariant adjusts the parent product's price; its stock dimension is
// informational here, availability is enforced against the product row.
type ProductVariant struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   uint   `gorm:"index;not null" json:"product_id"`
	Name        string `gorm:"not null" json:"name"`
	Value       string `json:"value"`
	PriceAdjust int64  `json:"price_adjust"`
	StockQty    int    `json:"stock_qty"`
	SKU         string `gorm:"column:sku" json:"sku"`
}
