package inventory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atharv404/velmont-ecom/models"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}, &models.ProductVariant{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: "Teak Tray", Slug: "teak-tray", SKU: "TT-01", SellingPrice: 129900, IsActive: true, StockQty: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.StockQty
}

func TestDecrement(t *testing.T) {
	db := newDB(t)
	p := seedProduct(t, db, 5)

	require.NoError(t, Decrement(db, p.ID, 2))
	assert.Equal(t, 3, stockOf(t, db, p.ID))

	require.NoError(t, Decrement(db, p.ID, 3))
	assert.Equal(t, 0, stockOf(t, db, p.ID))
}

func TestDecrementRefusesOversell(t *testing.T) {
	db := newDB(t)
	p := seedProduct(t, db, 3)

	// Each attempt alone fits the original stock, but the stock is shared.
	require.NoError(t, Decrement(db, p.ID, 2))
	assert.ErrorIs(t, Decrement(db, p.ID, 2), ErrInsufficientStock)
	assert.Equal(t, 1, stockOf(t, db, p.ID))

	require.NoError(t, Decrement(db, p.ID, 1))
	assert.ErrorIs(t, Decrement(db, p.ID, 1), ErrInsufficientStock)
	assert.Equal(t, 0, stockOf(t, db, p.ID))
}

func TestDecrementStopsAtZero(t *testing.T) {
	// N attempts summing past the stock succeed at most stockQty times.
	db := newDB(t)
	p := seedProduct(t, db, 4)

	succeeded := 0
	for i := 0; i < 10; i++ {
		switch err := Decrement(db, p.ID, 1); {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	assert.Equal(t, 4, succeeded)
	assert.Equal(t, 0, stockOf(t, db, p.ID))
}

func TestDecrementUnknownProduct(t *testing.T) {
	db := newDB(t)
	assert.ErrorIs(t, Decrement(db, 999, 1), ErrInsufficientStock)
}

func TestDecrementInvalidQuantity(t *testing.T) {
	db := newDB(t)
	p := seedProduct(t, db, 3)
	assert.ErrorIs(t, Decrement(db, p.ID, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, Decrement(db, p.ID, -1), ErrInvalidQuantity)
	assert.Equal(t, 3, stockOf(t, db, p.ID))
}

func TestRestock(t *testing.T) {
	db := newDB(t)
	p := seedProduct(t, db, 1)

	require.NoError(t, Restock(db, p.ID, 2))
	assert.Equal(t, 3, stockOf(t, db, p.ID))

	assert.ErrorIs(t, Restock(db, 999, 1), gorm.ErrRecordNotFound)
}
