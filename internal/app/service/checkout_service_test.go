package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/internal/db"
	"github.com/vastrakart/vastrakart-backend/pkg/payment/phonepe"
	"gorm.io/gorm"
)

// fakeShipping gives checkout tests direct control over the delivery gate
type fakeShipping struct {
	serviceability *ServiceabilityResult
	options        *DeliveryOptions
	optionsErr     error
}

func (f *fakeShipping) CheckServiceability(ctx context.Context, pincode string) *ServiceabilityResult {
	if f.serviceability != nil {
		return f.serviceability
	}
	return &ServiceabilityResult{Message: "Invalid pincode"}
}

func (f *fakeShipping) GetDeliveryOptions(ctx context.Context, pincode string, variantID *uint, quantity int, orderValue float64) (*DeliveryOptions, error) {
	if f.optionsErr != nil {
		return nil, f.optionsErr
	}
	return f.options, nil
}

// fakeGateway records payment initiations and serves canned status results
type fakeGateway struct {
	payCalls int
	payErr   error
	state    string
}

func (f *fakeGateway) Pay(ctx context.Context, merchantTxnID, merchantUserID string, amountPaise int64) (*phonepe.PayResponse, error) {
	f.payCalls++
	if f.payErr != nil {
		return nil, f.payErr
	}
	return &phonepe.PayResponse{
		MerchantTransactionID: merchantTxnID,
		PaymentURL:            "https://pay.example.com/redirect/" + merchantTxnID,
	}, nil
}

func (f *fakeGateway) Status(ctx context.Context, merchantTxnID string) (*phonepe.StatusResponse, error) {
	state := f.state
	if state == "" {
		state = phonepe.StatePending
	}
	return &phonepe.StatusResponse{
		MerchantTransactionID: merchantTxnID,
		State:                 state,
	}, nil
}

type checkoutTestEnv struct {
	service  CheckoutService
	shipping *fakeShipping
	gateway  *fakeGateway
	user     *model.User
	product  *model.Product
	address  *model.Address
	db       *gorm.DB
}

func serviceableOptions() (*ServiceabilityResult, *DeliveryOptions) {
	return &ServiceabilityResult{
			IsServiceable:  true,
			IsCODAvailable: true,
			EstimatedDays:  4,
		}, &DeliveryOptions{
			COD:     DeliveryQuote{Available: true, TotalAmount: 80},
			Prepaid: DeliveryQuote{Available: true, TotalAmount: 50},
		}
}

func setupCheckoutTest(t *testing.T) *checkoutTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	serviceability, options := serviceableOptions()
	shipping := &fakeShipping{serviceability: serviceability, options: options}
	gateway := &fakeGateway{}

	service := NewCheckoutService(
		testDB,
		repository.NewCartRepository(testDB),
		repository.NewAddressRepository(testDB),
		repository.NewProductRepository(testDB),
		repository.NewOrderRepository(testDB),
		shipping,
		gateway,
		newMemCache(),
		newMemCache(),
	)

	user := &model.User{Email: "test@example.com", PasswordHash: "hash", Name: "Test User"}
	testDB.Create(user)

	product := &model.Product{
		BrandName:   "Vastra Basics",
		ProductName: "Cotton Shirt",
		Category:    model.CategoryShirts,
		GSTRate:     5,
	}
	testDB.Create(product)
	variants := []model.ProductVariant{
		{ProductID: product.ID, Size: "M", Price: 200, WeightGrams: 400, StockQuantity: 10},
		{ProductID: product.ID, Size: "L", Price: 150, WeightGrams: 450, StockQuantity: 5},
	}
	testDB.Create(&variants)
	product.Variants = variants

	address := &model.Address{
		UserID:         user.ID,
		ReceiverName:   "Priya Sharma",
		ReceiverMobile: "9876543210",
		HouseNo:        "42",
		Area:           "MG Road",
		City:           "Mumbai",
		State:          "Maharashtra",
		Pincode:        "400001",
		IsPrimary:      true,
	}
	testDB.Create(address)

	return &checkoutTestEnv{
		service:  service,
		shipping: shipping,
		gateway:  gateway,
		user:     user,
		product:  product,
		address:  address,
		db:       testDB,
	}
}

func (e *checkoutTestEnv) fillCart(t *testing.T) {
	t.Helper()
	items := []model.CartItem{
		{UserID: e.user.ID, ProductID: e.product.ID, VariantID: &e.product.Variants[0].ID, Quantity: 2},
		{UserID: e.user.ID, ProductID: e.product.ID, VariantID: &e.product.Variants[1].ID, Quantity: 1},
	}
	require.NoError(t, e.db.Create(&items).Error)
}

func TestCheckout_CODOrderSuccess(t *testing.T) {
	env := setupCheckoutTest(t)
	env.fillCart(t)

	result, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// 200x2 + 150x1 = 550, GST 5% = 27.5, COD delivery 80
	assert.Equal(t, 550.0, result.Totals.Subtotal)
	assert.Equal(t, 27.5, result.Totals.Tax)
	assert.Equal(t, 80.0, result.Totals.DeliveryCharge)
	assert.Equal(t, 657.5, result.Totals.TotalPrice)
	assert.Empty(t, result.PaymentURL)
	assert.NotEmpty(t, result.OrderNumber)

	// Order persisted and confirmed
	var order model.Order
	require.NoError(t, env.db.Preload("OrderItems").First(&order, result.OrderID).Error)
	assert.Equal(t, model.OrderStatusConfirmed, order.Status)
	assert.Equal(t, model.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, "400001", order.ShippingPin)
	assert.Len(t, order.OrderItems, 2)

	// Cart cleared
	var cartCount int64
	env.db.Model(&model.CartItem{}).Where("user_id = ?", env.user.ID).Count(&cartCount)
	assert.Equal(t, int64(0), cartCount)

	// Stock decremented
	var variant model.ProductVariant
	env.db.First(&variant, env.product.Variants[0].ID)
	assert.Equal(t, 8, variant.StockQuantity)

	// No payment initiated for COD
	assert.Equal(t, 0, env.gateway.payCalls)
}

func TestCheckout_PrepaidOrderReturnsPaymentURL(t *testing.T) {
	env := setupCheckoutTest(t)
	env.fillCart(t)

	result, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodPrepaid,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, env.gateway.payCalls)
	assert.Contains(t, result.PaymentURL, "https://pay.example.com/redirect/")
	assert.Equal(t, 50.0, result.Totals.DeliveryCharge)

	var order model.Order
	require.NoError(t, env.db.First(&order, result.OrderID).Error)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	assert.NotEmpty(t, order.PaymentTxnID)
}

func TestCheckout_BlockedWithoutAddress(t *testing.T) {
	env := setupCheckoutTest(t)
	env.fillCart(t)
	require.NoError(t, env.db.Delete(env.address).Error)

	_, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrNoDeliveryAddress)

	// Nothing submitted
	var orderCount int64
	env.db.Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)
}

func TestCheckout_BlockedWhenNotServiceable(t *testing.T) {
	env := setupCheckoutTest(t)
	env.fillCart(t)
	env.shipping.serviceability = &ServiceabilityResult{
		IsServiceable: false,
		Message:       "Sorry, we don't deliver to this pincode yet.",
	}

	_, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodPrepaid,
	})
	assert.ErrorIs(t, err, ErrNotServiceable)
}

func TestCheckout_BlockedWhenCODSelectedButUnavailable(t *testing.T) {
	env := setupCheckoutTest(t)
	env.fillCart(t)
	env.shipping.serviceability.IsCODAvailable = false
	env.shipping.options.COD.Available = false

	_, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrCODUnavailable)

	// Prepaid still goes through for the same destination
	result, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodPrepaid,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PaymentURL)
}

func TestCheckout_BlockedWhenQuoteMissing(t *testing.T) {
	env := setupCheckoutTest(t)
	env.fillCart(t)
	env.shipping.options = nil
	env.shipping.optionsErr = ErrDeliveryQuoteUnavailable

	_, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodPrepaid,
	})
	assert.ErrorIs(t, err, ErrDeliveryQuoteMissing)
}

func TestCheckout_BlockedOnEmptyCart(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_UnpurchasableItemsExcludedFromOrder(t *testing.T) {
	env := setupCheckoutTest(t)
	env.fillCart(t)

	// A line without a variant is not purchasable
	orphan := model.CartItem{UserID: env.user.ID, ProductID: env.product.ID, Quantity: 3}
	require.NoError(t, env.db.Create(&orphan).Error)

	result, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)

	assert.Equal(t, 550.0, result.Totals.Subtotal)
	assert.Equal(t, 3, result.Totals.ItemCount)

	var order model.Order
	require.NoError(t, env.db.Preload("OrderItems").First(&order, result.OrderID).Error)
	assert.Len(t, order.OrderItems, 2)
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	env := setupCheckoutTest(t)

	// L has 5 in stock; ask for more via direct insert (bypassing cart caps)
	item := model.CartItem{UserID: env.user.ID, ProductID: env.product.ID, VariantID: &env.product.Variants[1].ID, Quantity: 8}
	require.NoError(t, env.db.Create(&item).Error)

	_, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Cart untouched, no order written
	var cartCount, orderCount int64
	env.db.Model(&model.CartItem{}).Where("user_id = ?", env.user.ID).Count(&cartCount)
	env.db.Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(1), cartCount)
	assert.Equal(t, int64(0), orderCount)
}

func TestCheckout_PaymentInitFailureRestoresStockAndCart(t *testing.T) {
	env := setupCheckoutTest(t)
	env.fillCart(t)
	env.gateway.payErr = errors.New("gateway down")

	_, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodPrepaid,
	})
	assert.ErrorIs(t, err, ErrPaymentInitFailed)

	var order model.Order
	require.NoError(t, env.db.Order("id DESC").First(&order).Error)
	assert.Equal(t, model.PaymentStatusFailed, order.PaymentStatus)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)

	// Reserved stock returned to the variants
	var variant model.ProductVariant
	env.db.First(&variant, env.product.Variants[0].ID)
	assert.Equal(t, 10, variant.StockQuantity)
	env.db.First(&variant, env.product.Variants[1].ID)
	assert.Equal(t, 5, variant.StockQuantity)

	// Cart restored so the buyer can try again
	var cartCount int64
	env.db.Model(&model.CartItem{}).Where("user_id = ?", env.user.ID).Count(&cartCount)
	assert.Equal(t, int64(2), cartCount)

	// Retry goes through once the gateway recovers
	env.gateway.payErr = nil
	result, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodPrepaid,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.PaymentURL)
}

func TestCheckout_QuickBuyPaymentInitFailureRestoresStock(t *testing.T) {
	env := setupCheckoutTest(t)
	env.gateway.payErr = errors.New("gateway down")

	_, err := env.service.PlaceQuickBuyOrder(context.Background(), env.user.ID, QuickBuyRequest{
		ProductID:     env.product.ID,
		VariantID:     env.product.Variants[0].ID,
		Quantity:      3,
		PaymentMethod: model.PaymentMethodPrepaid,
	})
	assert.ErrorIs(t, err, ErrPaymentInitFailed)

	var variant model.ProductVariant
	env.db.First(&variant, env.product.Variants[0].ID)
	assert.Equal(t, 10, variant.StockQuantity)

	var order model.Order
	require.NoError(t, env.db.Order("id DESC").First(&order).Error)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
}

func TestCheckout_QuickBuySingleItem(t *testing.T) {
	env := setupCheckoutTest(t)

	result, err := env.service.PlaceQuickBuyOrder(context.Background(), env.user.ID, QuickBuyRequest{
		ProductID:     env.product.ID,
		VariantID:     env.product.Variants[0].ID,
		Quantity:      2,
		PaymentMethod: model.PaymentMethodCOD,
	})
	require.NoError(t, err)

	// 200x2 = 400, GST 5% = 20, COD delivery 80
	assert.Equal(t, 400.0, result.Totals.Subtotal)
	assert.Equal(t, 20.0, result.Totals.Tax)
	assert.Equal(t, 500.0, result.Totals.TotalPrice)

	var order model.Order
	require.NoError(t, env.db.Preload("OrderItems").First(&order, result.OrderID).Error)
	assert.Equal(t, model.FlowQuickBuy, order.Flow)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, "M", order.OrderItems[0].SizeSnapshot)

	var variant model.ProductVariant
	env.db.First(&variant, env.product.Variants[0].ID)
	assert.Equal(t, 8, variant.StockQuantity)
}

func TestCheckout_QuickBuyQuantityBounds(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.service.PlaceQuickBuyOrder(context.Background(), env.user.ID, QuickBuyRequest{
		ProductID:     env.product.ID,
		VariantID:     env.product.Variants[0].ID,
		Quantity:      11,
		PaymentMethod: model.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCheckout_ConcurrentSubmissionBlocked(t *testing.T) {
	env := setupCheckoutTest(t)
	env.fillCart(t)

	locker := newMemCache()
	service := NewCheckoutService(
		env.db,
		repository.NewCartRepository(env.db),
		repository.NewAddressRepository(env.db),
		repository.NewProductRepository(env.db),
		repository.NewOrderRepository(env.db),
		env.shipping,
		env.gateway,
		locker,
		newMemCache(),
	)

	// Simulate an in-flight checkout holding the lock
	held, err := locker.AcquireOnce(context.Background(), fmt.Sprintf("checkout:lock:%d", env.user.ID), checkoutLockTTL)
	require.NoError(t, err)
	require.True(t, held)

	_, err = service.PlaceCartOrder(context.Background(), env.user.ID, CheckoutRequest{
		PaymentMethod: model.PaymentMethodCOD,
	})
	assert.ErrorIs(t, err, ErrCheckoutInFlight)
}

func TestCheckout_DuplicateTokenPlacesOneOrder(t *testing.T) {
	env := setupCheckoutTest(t)

	req := QuickBuyRequest{
		ProductID:     env.product.ID,
		VariantID:     env.product.Variants[0].ID,
		Quantity:      1,
		PaymentMethod: model.PaymentMethodCOD,
		CheckoutToken: "attempt-7d5c1f0a",
	}

	_, err := env.service.PlaceQuickBuyOrder(context.Background(), env.user.ID, req)
	require.NoError(t, err)

	// The same submission resent lands on the consumed token
	_, err = env.service.PlaceQuickBuyOrder(context.Background(), env.user.ID, req)
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	var orderCount int64
	env.db.Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(1), orderCount)
}

func TestCheckout_TokenFreedWhenNothingPlaced(t *testing.T) {
	env := setupCheckoutTest(t)

	req := CheckoutRequest{
		PaymentMethod: model.PaymentMethodCOD,
		CheckoutToken: "attempt-2b9e44c3",
	}

	// First attempt fails before any order exists
	_, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, req)
	assert.ErrorIs(t, err, ErrEmptyCart)

	// The token is reusable once the buyer fixes the cart
	env.fillCart(t)
	result, err := env.service.PlaceCartOrder(context.Background(), env.user.ID, req)
	require.NoError(t, err)
	assert.NotEmpty(t, result.OrderNumber)
}
