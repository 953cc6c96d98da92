package inventory

import (
	"errors"

	"gorm.io/gorm"

	"github.com/atharv404/velmont-ecom/models"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

// Decrement takes qty units off a product's stock. The check and the
// write are a single conditional UPDATE, so concurrent settlements on
// the same product can never drive the stock below zero; the losing
// writer gets ErrInsufficientStock.
func Decrement(db *gorm.DB, productID uint, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	res := db.Model(&models.Product{}).
		Where("id = ? AND stock_qty >= ?", productID, qty).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Restock returns qty units to a product, e.g. when a confirmed order is
// cancelled before shipment.
func Restock(db *gorm.DB, productID uint, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	res := db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
