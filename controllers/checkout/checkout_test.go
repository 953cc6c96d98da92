package checkoutControllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atharv404/velmont-ecom/models"
	"github.com/atharv404/velmont-ecom/payment"
)

const gatewaySecret = "hush"

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Address{}, &models.Category{}, &models.Product{},
		&models.ProductVariant{}, &models.Coupon{}, &models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
	))
	return db
}

// fakeGateway answers the Razorpay orders endpoint with a fixed id.
func fakeGateway(t *testing.T) (*httptest.Server, *payment.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "order_fake123"})
	}))
	t.Cleanup(srv.Close)
	return srv, payment.NewClient("rzp_test_pub", gatewaySecret, srv.URL)
}

func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newRouter(db *gorm.DB, gw *payment.Client, userID string) *gin.Engine {
	r := gin.New()
	r.Use(asUser(userID))
	r.POST("/checkout", CheckoutHandler(db, gw))
	r.POST("/checkout/verify", VerifyPaymentHandler(db, gw))
	return r
}

func doJSON(r *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type fixture struct {
	user    models.User
	address models.Address
	product models.Product
}

// seedCheckout sets up a user with one address and a cart holding qty of
// one product priced at 349900 paise with the given stock.
func seedCheckout(t *testing.T, db *gorm.DB, stock, qty int) fixture {
	t.Helper()
	f := fixture{
		user: models.User{ID: "u1", Email: "u1@example.com"},
		product: models.Product{
			Name: "Sheesham Coffee Table", Slug: "sheesham-coffee-table", SKU: "SCT-01",
			SellingPrice: 349900, IsActive: true, StockQty: stock,
		},
	}
	require.NoError(t, db.Create(&f.user).Error)
	f.address = models.Address{
		UserID: "u1", FirstName: "Asha", Line1: "14 MG Road",
		City: "Pune", State: "MH", Pincode: "411001",
	}
	require.NoError(t, db.Create(&f.address).Error)
	require.NoError(t, db.Create(&f.product).Error)

	cart := models.Cart{UserID: "u1"}
	require.NoError(t, db.Create(&cart).Error)
	require.NoError(t, db.Create(&models.CartItem{
		CartID: cart.ID, ProductID: f.product.ID, Quantity: qty, AddedAt: time.Now(),
	}).Error)
	return f
}

func signPayload(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(gatewaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func checkout(t *testing.T, r *gin.Engine, body gin.H) CheckoutResponse {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/checkout", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func reloadOrder(t *testing.T, db *gorm.DB, id uint) models.Order {
	t.Helper()
	var o models.Order
	require.NoError(t, db.Preload("Items").First(&o, id).Error)
	return o
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 3, 1)
	r := newRouter(db, gw, "u1")

	resp := checkout(t, r, gin.H{"addressId": f.address.ID})

	assert.Equal(t, "order_fake123", resp.GatewayOrderID)
	assert.Equal(t, int64(349900), resp.Amount) // over threshold: free shipping
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "rzp_test_pub", resp.PublicKey)
	assert.NotEmpty(t, resp.OrderNumber)

	order := reloadOrder(t, db, resp.OrderID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "order_fake123", order.RazorpayOrderID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(349900), order.Items[0].UnitPrice)
	assert.Equal(t, f.product.SKU, order.Items[0].ProductSKU)
	assert.Equal(t, order.Subtotal, order.Items[0].TotalPrice)
	assert.Equal(t, order.TotalAmount, order.Subtotal+order.TaxAmount+order.ShippingAmount-order.DiscountAmount)

	// No reservation: stock and cart are untouched until settlement.
	var p models.Product
	require.NoError(t, db.First(&p, f.product.ID).Error)
	assert.Equal(t, 3, p.StockQty)
	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
}

func TestCheckoutAppliesCoupon(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 3, 1)
	require.NoError(t, db.Create(&models.Coupon{
		Code: "WELCOME10", Type: models.CouponTypePercentage, Value: 10,
		MinAmount: 200000, IsActive: true,
	}).Error)
	r := newRouter(db, gw, "u1")

	resp := checkout(t, r, gin.H{"addressId": f.address.ID, "couponCode": "WELCOME10"})
	assert.Equal(t, int64(314910), resp.Amount)

	order := reloadOrder(t, db, resp.OrderID)
	assert.Equal(t, int64(34990), order.DiscountAmount)
	assert.Equal(t, "WELCOME10", order.CouponCode)
}

func TestCheckoutExpiredCouponStillSucceeds(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 3, 1)
	expired := time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&models.Coupon{
		Code: "WELCOME10", Type: models.CouponTypePercentage, Value: 10,
		IsActive: true, ExpiresAt: &expired,
	}).Error)
	r := newRouter(db, gw, "u1")

	resp := checkout(t, r, gin.H{"addressId": f.address.ID, "couponCode": "WELCOME10"})
	assert.Equal(t, int64(349900), resp.Amount)

	order := reloadOrder(t, db, resp.OrderID)
	assert.Equal(t, int64(0), order.DiscountAmount)
	assert.Empty(t, order.CouponCode)
}

func TestCheckoutVariantAdjustsUnitPrice(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 5, 1)
	variant := models.ProductVariant{ProductID: f.product.ID, Name: "Finish", Value: "Teak", PriceAdjust: 25000}
	require.NoError(t, db.Create(&variant).Error)

	var item models.CartItem
	require.NoError(t, db.First(&item).Error)
	item.VariantID = &variant.ID
	require.NoError(t, db.Save(&item).Error)

	r := newRouter(db, gw, "u1")
	resp := checkout(t, r, gin.H{"addressId": f.address.ID})
	assert.Equal(t, int64(374900), resp.Amount)

	order := reloadOrder(t, db, resp.OrderID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(374900), order.Items[0].UnitPrice)
	require.NotNil(t, order.Items[0].VariantID)
	assert.Equal(t, variant.ID, *order.Items[0].VariantID)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	require.NoError(t, db.Create(&models.User{ID: "u1", Email: "u1@example.com"}).Error)
	addr := models.Address{UserID: "u1", FirstName: "Asha", Line1: "x", City: "Pune", State: "MH", Pincode: "411001"}
	require.NoError(t, db.Create(&addr).Error)
	r := newRouter(db, gw, "u1")

	w := doJSON(r, http.MethodPost, "/checkout", gin.H{"addressId": addr.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutForeignAddress(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	seedCheckout(t, db, 3, 1)
	require.NoError(t, db.Create(&models.User{ID: "u2", Email: "u2@example.com"}).Error)
	foreign := models.Address{UserID: "u2", FirstName: "Ravi", Line1: "x", City: "Delhi", State: "DL", Pincode: "110001"}
	require.NoError(t, db.Create(&foreign).Error)
	r := newRouter(db, gw, "u1")

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/checkout", gin.H{"addressId": foreign.ID}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/checkout", gin.H{"addressId": 999}).Code)
}

func TestCheckoutGatewayDownPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	f := seedCheckout(t, db, 3, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	gw := payment.NewClient("k", gatewaySecret, srv.URL)
	r := newRouter(db, gw, "u1")

	w := doJSON(r, http.MethodPost, "/checkout", gin.H{"addressId": f.address.ID})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 3, 1)
	r := newRouter(db, gw, "u1")
	resp := checkout(t, r, gin.H{"addressId": f.address.ID})

	w := doJSON(r, http.MethodPost, "/checkout/verify", gin.H{
		"orderId":          resp.OrderID,
		"gatewayOrderId":   resp.GatewayOrderID,
		"gatewayPaymentId": "pay_1",
		"signature":        "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The order is left pending for reconciliation, nothing else moved.
	order := reloadOrder(t, db, resp.OrderID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	var p models.Product
	require.NoError(t, db.First(&p, f.product.ID).Error)
	assert.Equal(t, 3, p.StockQty)
	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
}

func TestVerifyRejectsMismatchedGatewayOrder(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 3, 1)
	r := newRouter(db, gw, "u1")
	resp := checkout(t, r, gin.H{"addressId": f.address.ID})

	// Signature is valid for a different gateway order.
	w := doJSON(r, http.MethodPost, "/checkout/verify", gin.H{
		"orderId":          resp.OrderID,
		"gatewayOrderId":   "order_other",
		"gatewayPaymentId": "pay_1",
		"signature":        signPayload("order_other", "pay_1"),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifySettlesOrder(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 3, 2)
	r := newRouter(db, gw, "u1")
	resp := checkout(t, r, gin.H{"addressId": f.address.ID})

	w := doJSON(r, http.MethodPost, "/checkout/verify", gin.H{
		"orderId":          resp.OrderID,
		"gatewayOrderId":   resp.GatewayOrderID,
		"gatewayPaymentId": "pay_1",
		"signature":        signPayload(resp.GatewayOrderID, "pay_1"),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	order := reloadOrder(t, db, resp.OrderID)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, "pay_1", order.RazorpayPaymentID)

	var p models.Product
	require.NoError(t, db.First(&p, f.product.ID).Error)
	assert.Equal(t, 1, p.StockQty)

	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}

func TestVerifyReplayIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 5, 2)
	r := newRouter(db, gw, "u1")
	resp := checkout(t, r, gin.H{"addressId": f.address.ID})

	body := gin.H{
		"orderId":          resp.OrderID,
		"gatewayOrderId":   resp.GatewayOrderID,
		"gatewayPaymentId": "pay_1",
		"signature":        signPayload(resp.GatewayOrderID, "pay_1"),
	}
	require.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/checkout/verify", body).Code)

	// The user shops again between the two webhook deliveries.
	var cart models.Cart
	require.NoError(t, db.Where("user_id = ?", "u1").First(&cart).Error)
	require.NoError(t, db.Create(&models.CartItem{CartID: cart.ID, ProductID: f.product.ID, Quantity: 1, AddedAt: time.Now()}).Error)

	w := doJSON(r, http.MethodPost, "/checkout/verify", body)
	require.Equal(t, http.StatusOK, w.Code)
	var second struct {
		OrderNumber string `json:"orderNumber"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, resp.OrderNumber, second.OrderNumber)

	// One decrement, one clear: stock went down once, the new cart line
	// from the second shopping session survived the replay.
	var p models.Product
	require.NoError(t, db.First(&p, f.product.ID).Error)
	assert.Equal(t, 3, p.StockQty)
	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
}

func TestVerifyForeignOrder(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 3, 1)
	owner := newRouter(db, gw, "u1")
	resp := checkout(t, owner, gin.H{"addressId": f.address.ID})

	require.NoError(t, db.Create(&models.User{ID: "u2", Email: "u2@example.com"}).Error)
	intruder := newRouter(db, gw, "u2")
	w := doJSON(intruder, http.MethodPost, "/checkout/verify", gin.H{
		"orderId":          resp.OrderID,
		"gatewayOrderId":   resp.GatewayOrderID,
		"gatewayPaymentId": "pay_1",
		"signature":        signPayload(resp.GatewayOrderID, "pay_1"),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifySoldOutStockNeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	_, gw := fakeGateway(t)
	f := seedCheckout(t, db, 2, 2)
	r := newRouter(db, gw, "u1")
	resp := checkout(t, r, gin.H{"addressId": f.address.ID})

	// The product sells out elsewhere between checkout and settlement.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", f.product.ID).
		Update("stock_qty", 1).Error)

	w := doJSON(r, http.MethodPost, "/checkout/verify", gin.H{
		"orderId":          resp.OrderID,
		"gatewayOrderId":   resp.GatewayOrderID,
		"gatewayPaymentId": "pay_1",
		"signature":        signPayload(resp.GatewayOrderID, "pay_1"),
	})
	// The money already moved: settlement still succeeds, the shortfall
	// is a reconciliation problem.
	require.Equal(t, http.StatusOK, w.Code)

	order := reloadOrder(t, db, resp.OrderID)
	assert.Equal(t, models.PaymentStatusCompleted, order.PaymentStatus)
	var p models.Product
	require.NoError(t, db.First(&p, f.product.ID).Error)
	assert.Equal(t, 1, p.StockQty) // untouched, never negative
}
