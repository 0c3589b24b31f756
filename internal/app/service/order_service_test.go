package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/internal/db"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (OrderService, *model.User, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderService := NewOrderService(repository.NewOrderRepository(testDB))

	user := &model.User{Email: "test@example.com", PasswordHash: "hash", Name: "Test User"}
	testDB.Create(user)

	return orderService, user, testDB
}

func createTestOrder(t *testing.T, testDB *gorm.DB, userID uint, status model.OrderStatus) *model.Order {
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

	order := &model.Order{
		OrderNumber:   "VK20260831TEST01",
		UserID:        userID,
		Flow:          model.FlowCart,
		Subtotal:      550,
		Tax:           27.5,
		TotalAmount:   627.5,
		Status:        status,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodCOD,
		AddressID:     address.ID,
		ShippingPin:   "400001",
	}
	require.NoError(t, testDB.Create(order).Error)
	require.NoError(t, testDB.Create(&model.OrderEvent{
		OrderID: order.ID,
		Status:  model.OrderStatusPending,
		Note:    "Order placed",
	}).Error)
	return order
}

func TestOrderService_GetUserOrders(t *testing.T) {
	orderService, user, testDB := setupOrderServiceTest(t)

	orders, err := orderService.GetUserOrders(user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 0)

	createTestOrder(t, testDB, user.ID, model.OrderStatusPending)

	orders, err = orderService.GetUserOrders(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "VK20260831TEST01", orders[0].OrderNumber)
}

func TestOrderService_GetOrder_OwnershipEnforced(t *testing.T) {
	orderService, user, testDB := setupOrderServiceTest(t)
	order := createTestOrder(t, testDB, user.ID, model.OrderStatusPending)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other"}
	testDB.Create(other)

	_, err := orderService.GetOrder(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	fetched, err := orderService.GetOrder(user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
}

func TestOrderService_StatusLifecycle(t *testing.T) {
	orderService, user, testDB := setupOrderServiceTest(t)
	order := createTestOrder(t, testDB, user.ID, model.OrderStatusPending)

	require.NoError(t, orderService.UpdateOrderStatus(order.ID, model.OrderStatusConfirmed, "Payment received"))
	require.NoError(t, orderService.UpdateOrderStatus(order.ID, model.OrderStatusShipped, "Handed to courier"))
	require.NoError(t, orderService.UpdateOrderStatus(order.ID, model.OrderStatusDelivered, ""))

	fetched, err := orderService.GetOrder(user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, fetched.Status)
}

func TestOrderService_InvalidTransitionsRejected(t *testing.T) {
	orderService, user, testDB := setupOrderServiceTest(t)
	order := createTestOrder(t, testDB, user.ID, model.OrderStatusPending)

	// Pending cannot jump straight to delivered
	err := orderService.UpdateOrderStatus(order.ID, model.OrderStatusDelivered, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	// Delivered orders cannot be cancelled
	require.NoError(t, orderService.UpdateOrderStatus(order.ID, model.OrderStatusConfirmed, ""))
	require.NoError(t, orderService.UpdateOrderStatus(order.ID, model.OrderStatusShipped, ""))
	require.NoError(t, orderService.UpdateOrderStatus(order.ID, model.OrderStatusDelivered, ""))
	err = orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled, "")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestOrderService_CancelOrder(t *testing.T) {
	orderService, user, testDB := setupOrderServiceTest(t)
	order := createTestOrder(t, testDB, user.ID, model.OrderStatusConfirmed)

	require.NoError(t, orderService.CancelOrder(user.ID, order.ID))

	fetched, err := orderService.GetOrder(user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, fetched.Status)
}

func TestOrderService_CancelShippedOrderRejected(t *testing.T) {
	orderService, user, testDB := setupOrderServiceTest(t)
	order := createTestOrder(t, testDB, user.ID, model.OrderStatusShipped)

	err := orderService.CancelOrder(user.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
}

func TestOrderService_TimelineGrowsWithStatusChanges(t *testing.T) {
	orderService, user, testDB := setupOrderServiceTest(t)
	order := createTestOrder(t, testDB, user.ID, model.OrderStatusPending)

	require.NoError(t, orderService.UpdateOrderStatus(order.ID, model.OrderStatusConfirmed, "Payment received"))
	require.NoError(t, orderService.UpdateOrderStatus(order.ID, model.OrderStatusShipped, "Handed to courier"))

	events, err := orderService.GetOrderTimeline(user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Append-only, chronological
	assert.Equal(t, model.OrderStatusPending, events[0].Status)
	assert.Equal(t, model.OrderStatusConfirmed, events[1].Status)
	assert.Equal(t, model.OrderStatusShipped, events[2].Status)
	assert.Equal(t, "Handed to courier", events[2].Note)
}
