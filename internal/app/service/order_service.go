package service

import (
	"errors"

	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrOrderNotCancellable     = errors.New("order can no longer be cancelled")
)

// validTransitions encodes the order status lifecycle. Cancellation is only
// reachable before shipment.
var validTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:   {model.OrderStatusDelivered},
}

type OrderService interface {
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrder(userID, orderID uint) (*model.Order, error)
	GetOrderTimeline(userID, orderID uint) ([]model.OrderEvent, error)
	CancelOrder(userID, orderID uint) error
	UpdateOrderStatus(orderID uint, status model.OrderStatus, note string) error
}

type orderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
	})

	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User orders fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (s *orderService) GetOrder(userID, orderID uint) (*model.Order, error) {
	return s.ownedOrder(userID, orderID)
}

func (s *orderService) GetOrderTimeline(userID, orderID uint) ([]model.OrderEvent, error) {
	if _, err := s.ownedOrder(userID, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.FindEventsByOrderID(orderID)
}

// CancelOrder cancels a not-yet-shipped order on the buyer's request.
func (s *orderService) CancelOrder(userID, orderID uint) error {
	logger.Info("Cancelling order", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.ownedOrder(userID, orderID)
	if err != nil {
		return err
	}

	if !transitionAllowed(order.Status, model.OrderStatusCancelled) {
		logger.Warn("Order cancellation rejected", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return ErrOrderNotCancellable
	}

	if err := s.orderRepo.UpdateStatus(orderID, model.OrderStatusCancelled); err != nil {
		return err
	}

	if err := s.orderRepo.AppendEvent(&model.OrderEvent{
		OrderID: orderID,
		Status:  model.OrderStatusCancelled,
		Note:    "Cancelled by customer",
	}); err != nil {
		logger.Warn("Failed to append cancellation event", map[string]interface{}{
			"order_id": orderID,
			"error":    err.Error(),
		})
	}

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": orderID,
	})
	return nil
}

// UpdateOrderStatus moves an order along its lifecycle and records the step
// in the tracking timeline. Seller/admin operation.
func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus, note string) error {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	if !transitionAllowed(order.Status, status) {
		logger.Warn("Order status transition rejected", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return ErrInvalidStatusTransition
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return err
	}

	if err := s.orderRepo.AppendEvent(&model.OrderEvent{
		OrderID: orderID,
		Status:  status,
		Note:    note,
	}); err != nil {
		logger.Warn("Failed to append order event", map[string]interface{}{
			"order_id": orderID,
			"error":    err.Error(),
		})
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     order.Status,
		"to":       status,
	})
	return nil
}

func (s *orderService) ownedOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func transitionAllowed(from, to model.OrderStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
