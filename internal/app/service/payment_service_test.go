package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/internal/db"
	"github.com/vastrakart/vastrakart-backend/pkg/payment/phonepe"
	"gorm.io/gorm"
)

func setupPaymentServiceTest(t *testing.T) (PaymentService, *fakeGateway, *model.User, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	gateway := &fakeGateway{}
	paymentService := NewPaymentService(testDB, repository.NewOrderRepository(testDB), gateway)

	user := &model.User{Email: "test@example.com", PasswordHash: "hash", Name: "Test User"}
	testDB.Create(user)

	return paymentService, gateway, user, testDB
}

func createPrepaidOrder(t *testing.T, testDB *gorm.DB, userID uint, txnID string) *model.Order {
	t.Helper()

	address := &model.Address{
		UserID:         userID,
		ReceiverName:   "Priya Sharma",
		ReceiverMobile: "9876543210",
		HouseNo:        "42",
		Area:           "MG Road",
		Pincode:        "400001",
	}
	require.NoError(t, testDB.Create(address).Error)

	product := &model.Product{BrandName: "Vastra Basics", ProductName: "Cotton Shirt", Category: model.CategoryShirts, GSTRate: 5}
	require.NoError(t, testDB.Create(product).Error)
	variant := &model.ProductVariant{ProductID: product.ID, Size: "M", Price: 200, StockQuantity: 8}
	require.NoError(t, testDB.Create(variant).Error)

	order := &model.Order{
		OrderNumber:   "VK20260831" + txnID[3:],
		UserID:        userID,
		Flow:          model.FlowCart,
		Subtotal:      400,
		Tax:           20,
		TotalAmount:   470,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodPrepaid,
		PaymentTxnID:  txnID,
		AddressID:     address.ID,
		ShippingPin:   "400001",
		OrderItems: []model.OrderItem{{
			ProductID:       product.ID,
			VariantID:       variant.ID,
			Quantity:        2,
			PriceAtPurchase: 200,
			GSTRate:         5,
			SizeSnapshot:    "M",
		}},
	}
	require.NoError(t, testDB.Create(order).Error)
	return order
}

func TestPaymentService_StatusPaidSettlesOrder(t *testing.T) {
	paymentService, gateway, user, testDB := setupPaymentServiceTest(t)
	order := createPrepaidOrder(t, testDB, user.ID, "TXNPAID0001")
	gateway.state = phonepe.StateSuccess

	result, err := paymentService.GetPaymentStatus(context.Background(), user.ID, "TXNPAID0001")
	require.NoError(t, err)

	assert.Equal(t, "PAID", result.PaymentStatus)
	assert.Equal(t, order.ID, result.OrderID)

	var settled model.Order
	require.NoError(t, testDB.First(&settled, order.ID).Error)
	assert.Equal(t, model.PaymentStatusPaid, settled.PaymentStatus)
	assert.Equal(t, model.OrderStatusConfirmed, settled.Status)
	assert.NotNil(t, settled.PaidAt)
}

func TestPaymentService_StatusFailedCancelsAndRestocks(t *testing.T) {
	paymentService, gateway, user, testDB := setupPaymentServiceTest(t)
	order := createPrepaidOrder(t, testDB, user.ID, "TXNFAIL0001")
	gateway.state = phonepe.StateError

	result, err := paymentService.GetPaymentStatus(context.Background(), user.ID, "TXNFAIL0001")
	require.NoError(t, err)
	assert.Equal(t, "FAILED", result.PaymentStatus)

	var settled model.Order
	require.NoError(t, testDB.First(&settled, order.ID).Error)
	assert.Equal(t, model.PaymentStatusFailed, settled.PaymentStatus)
	assert.Equal(t, model.OrderStatusCancelled, settled.Status)

	// Reserved stock returned (8 + the 2 that were ordered)
	var variant model.ProductVariant
	require.NoError(t, testDB.Where("size = ?", "M").First(&variant).Error)
	assert.Equal(t, 10, variant.StockQuantity)
}

func TestPaymentService_StatusPendingLeavesOrderUntouched(t *testing.T) {
	paymentService, gateway, user, testDB := setupPaymentServiceTest(t)
	order := createPrepaidOrder(t, testDB, user.ID, "TXNPEND0001")
	gateway.state = phonepe.StatePending

	result, err := paymentService.GetPaymentStatus(context.Background(), user.ID, "TXNPEND0001")
	require.NoError(t, err)
	assert.Equal(t, "PENDING", result.PaymentStatus)

	var current model.Order
	require.NoError(t, testDB.First(&current, order.ID).Error)
	assert.Equal(t, model.PaymentStatusPending, current.PaymentStatus)
	assert.Equal(t, model.OrderStatusPending, current.Status)
}

func TestPaymentService_UnknownTransaction(t *testing.T) {
	paymentService, _, user, _ := setupPaymentServiceTest(t)

	_, err := paymentService.GetPaymentStatus(context.Background(), user.ID, "TXNMISSING")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentService_OwnershipEnforced(t *testing.T) {
	paymentService, _, user, testDB := setupPaymentServiceTest(t)
	createPrepaidOrder(t, testDB, user.ID, "TXNOWNER001")

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other"}
	testDB.Create(other)

	_, err := paymentService.GetPaymentStatus(context.Background(), other.ID, "TXNOWNER001")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentService_CallbackSettlesOrder(t *testing.T) {
	paymentService, gateway, user, testDB := setupPaymentServiceTest(t)
	order := createPrepaidOrder(t, testDB, user.ID, "TXNCALL0001")
	gateway.state = phonepe.StateSuccess

	require.NoError(t, paymentService.HandleCallback(context.Background(), "TXNCALL0001"))

	var settled model.Order
	require.NoError(t, testDB.First(&settled, order.ID).Error)
	assert.Equal(t, model.PaymentStatusPaid, settled.PaymentStatus)
	assert.Equal(t, model.OrderStatusConfirmed, settled.Status)
}

func TestPaymentService_CallbackUnknownTransaction(t *testing.T) {
	paymentService, _, _, _ := setupPaymentServiceTest(t)

	err := paymentService.HandleCallback(context.Background(), "TXNNOPE")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPaymentService_ReconcileSweepsStalePayments(t *testing.T) {
	paymentService, gateway, user, testDB := setupPaymentServiceTest(t)
	order := createPrepaidOrder(t, testDB, user.ID, "TXNSWEEP001")
	gateway.state = phonepe.StateSuccess

	// Age the order past the reconciliation cutoff
	require.NoError(t, testDB.Model(&model.Order{}).Where("id = ?", order.ID).
		Update("created_at", time.Now().Add(-10*time.Minute)).Error)

	require.NoError(t, paymentService.ReconcilePendingPayments(context.Background()))

	var settled model.Order
	require.NoError(t, testDB.First(&settled, order.ID).Error)
	assert.Equal(t, model.PaymentStatusPaid, settled.PaymentStatus)
	assert.Equal(t, model.OrderStatusConfirmed, settled.Status)
}

func TestPaymentService_ReconcileSkipsFreshOrders(t *testing.T) {
	paymentService, gateway, user, testDB := setupPaymentServiceTest(t)
	order := createPrepaidOrder(t, testDB, user.ID, "TXNFRESH001")
	gateway.state = phonepe.StateSuccess

	require.NoError(t, paymentService.ReconcilePendingPayments(context.Background()))

	// Just-created orders are left for the buyer-facing poll
	var current model.Order
	require.NoError(t, testDB.First(&current, order.ID).Error)
	assert.Equal(t, model.PaymentStatusPending, current.PaymentStatus)
}
