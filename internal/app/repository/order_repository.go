package repository

import (
	"time"

	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByOrderNumber(orderNumber string) (*model.Order, error)
	FindByTxnID(txnID string) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindPendingPayments(olderThan time.Duration) ([]model.Order, error)
	Update(order *model.Order) error
	UpdateStatus(id uint, status model.OrderStatus) error
	UpdatePaymentStatus(id uint, status model.PaymentStatus) error
	AppendEvent(event *model.OrderEvent) error
	FindEventsByOrderID(orderID uint) ([]model.OrderEvent, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("OrderItems", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Product").Preload("Variant")
	}).Preload("Address").Preload("Events", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

// Create persists an order inside the caller's transaction. Pass the
// repository's own handle when no surrounding transaction is needed.
func (r *orderRepository) Create(tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}

	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
		"flow":         order.Flow,
	})

	if err := tx.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id":      order.UserID,
			"order_number": order.OrderNumber,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	logger.Debug("Order found by ID in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
	})
	return &order, nil
}

func (r *orderRepository) FindByOrderNumber(orderNumber string) (*model.Order, error) {
	logger.Debug("Finding order by order number in database", map[string]interface{}{
		"order_number": orderNumber,
	})

	var order model.Order
	if err := r.preloadOrder().Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by order number in database", err, map[string]interface{}{
				"order_number": orderNumber,
			})
		}
		return nil, err
	}

	logger.Debug("Order found by order number in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": orderNumber,
	})
	return &order, nil
}

func (r *orderRepository) FindByTxnID(txnID string) (*model.Order, error) {
	logger.Debug("Finding order by payment transaction ID in database", map[string]interface{}{
		"txn_id": txnID,
	})

	var order model.Order
	if err := r.preloadOrder().Where("payment_txn_id = ?", txnID).
		First(&order).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find order by payment transaction ID in database", err, map[string]interface{}{
				"txn_id": txnID,
			})
		}
		return nil, err
	}

	logger.Debug("Order found by payment transaction ID in database", map[string]interface{}{
		"order_id": order.ID,
		"txn_id":   txnID,
	})
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

// FindPendingPayments returns prepaid orders still awaiting payment
// confirmation, created at least olderThan ago.
func (r *orderRepository) FindPendingPayments(olderThan time.Duration) ([]model.Order, error) {
	cutoff := time.Now().Add(-olderThan)

	var orders []model.Order
	if err := r.db.Where(
		"payment_method = ? AND payment_status = ? AND created_at < ?",
		model.PaymentMethodPrepaid, model.PaymentStatusPending, cutoff,
	).Find(&orders).Error; err != nil {
		logger.Error("Failed to find pending payment orders in database", err)
		return nil, err
	}

	logger.Debug("Pending payment orders found in database", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
			"user_id":  order.UserID,
		})
		return err
	}

	logger.Debug("Order updated in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		logger.Error("Failed to update order status in database", err, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return err
	}

	logger.Debug("Order status updated in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(id uint, status model.PaymentStatus) error {
	logger.Debug("Updating order payment status in database", map[string]interface{}{
		"order_id":       id,
		"payment_status": status,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("payment_status", status).Error; err != nil {
		logger.Error("Failed to update order payment status in database", err, map[string]interface{}{
			"order_id":       id,
			"payment_status": status,
		})
		return err
	}

	logger.Debug("Order payment status updated in database", map[string]interface{}{
		"order_id":       id,
		"payment_status": status,
	})
	return nil
}

func (r *orderRepository) AppendEvent(event *model.OrderEvent) error {
	logger.Debug("Appending order event in database", map[string]interface{}{
		"order_id": event.OrderID,
		"status":   event.Status,
	})

	if err := r.db.Create(event).Error; err != nil {
		logger.Error("Failed to append order event in database", err, map[string]interface{}{
			"order_id": event.OrderID,
			"status":   event.Status,
		})
		return err
	}

	logger.Debug("Order event appended in database", map[string]interface{}{
		"order_id": event.OrderID,
		"event_id": event.ID,
	})
	return nil
}

func (r *orderRepository) FindEventsByOrderID(orderID uint) ([]model.OrderEvent, error) {
	var events []model.OrderEvent
	if err := r.db.Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		logger.Error("Failed to find order events in database", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}
	return events, nil
}
