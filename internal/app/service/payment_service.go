package service

import (
	"context"
	"errors"
	"time"

	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"github.com/vastrakart/vastrakart-backend/pkg/payment/phonepe"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment transaction not found")
)

// PaymentStatusResult is what the storefront polls while the buyer sits on
// the payment-verification page.
type PaymentStatusResult struct {
	PaymentStatus string `json:"paymentStatus"` // PAID, FAILED or PENDING
	OrderID       uint   `json:"orderId"`
	OrderNumber   string `json:"orderNumber"`
}

const (
	paymentStatusPaid    = "PAID"
	paymentStatusFailed  = "FAILED"
	paymentStatusPending = "PENDING"
)

type PaymentService interface {
	GetPaymentStatus(ctx context.Context, userID uint, txnID string) (*PaymentStatusResult, error)
	HandleCallback(ctx context.Context, txnID string) error
	ReconcilePendingPayments(ctx context.Context) error
}

type paymentService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	gateway   PaymentGateway
}

func NewPaymentService(db *gorm.DB, orderRepo repository.OrderRepository, gateway PaymentGateway) PaymentService {
	return &paymentService{
		db:        db,
		orderRepo: orderRepo,
		gateway:   gateway,
	}
}

// GetPaymentStatus resolves the payment state for a transaction. Pending
// orders trigger a fresh gateway status call so the poll converges without
// waiting for the reconciliation sweep.
func (s *paymentService) GetPaymentStatus(ctx context.Context, userID uint, txnID string) (*PaymentStatusResult, error) {
	logger.Debug("Fetching payment status", map[string]interface{}{
		"user_id": userID,
		"txn_id":  txnID,
	})

	order, err := s.orderRepo.FindByTxnID(txnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Payment status access denied: ownership mismatch", map[string]interface{}{
			"user_id": userID,
			"txn_id":  txnID,
		})
		return nil, ErrPaymentNotFound
	}

	if order.PaymentStatus == model.PaymentStatusPending {
		if err := s.settleFromGateway(ctx, order); err != nil {
			logger.Warn("Gateway status check failed, reporting pending", map[string]interface{}{
				"txn_id": txnID,
				"error":  err.Error(),
			})
		}
	}

	result := &PaymentStatusResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
	}
	switch order.PaymentStatus {
	case model.PaymentStatusPaid:
		result.PaymentStatus = paymentStatusPaid
	case model.PaymentStatusFailed, model.PaymentStatusRefunded:
		result.PaymentStatus = paymentStatusFailed
	default:
		result.PaymentStatus = paymentStatusPending
	}

	logger.Info("Payment status resolved", map[string]interface{}{
		"txn_id":   txnID,
		"order_id": order.ID,
		"status":   result.PaymentStatus,
	})
	return result, nil
}

// HandleCallback settles a transaction on a server-to-server notification
// from the gateway. The notification is treated as a hint only: the state
// applied always comes from a fresh status call, never from the callback
// payload itself.
func (s *paymentService) HandleCallback(ctx context.Context, txnID string) error {
	logger.Info("Payment callback received", map[string]interface{}{
		"txn_id": txnID,
	})

	order, err := s.orderRepo.FindByTxnID(txnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	if order.PaymentStatus != model.PaymentStatusPending {
		return nil
	}
	return s.settleFromGateway(ctx, order)
}

// ReconcilePendingPayments sweeps prepaid orders stuck in the pending
// payment state and settles each against the gateway. Run periodically so
// buyers who never return from the payment page still get a final state.
func (s *paymentService) ReconcilePendingPayments(ctx context.Context) error {
	orders, err := s.orderRepo.FindPendingPayments(2 * time.Minute)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	logger.Info("Reconciling pending payments", map[string]interface{}{
		"count": len(orders),
	})

	for i := range orders {
		order := &orders[i]
		if order.PaymentTxnID == "" {
			continue
		}
		if err := s.settleFromGateway(ctx, order); err != nil {
			logger.Warn("Payment reconciliation attempt failed", map[string]interface{}{
				"order_id": order.ID,
				"txn_id":   order.PaymentTxnID,
				"error":    err.Error(),
			})
		}
	}
	return nil
}

// settleFromGateway polls the gateway for a transaction and applies the
// terminal state to the order. Mutates the order in place so callers see
// the settled status.
func (s *paymentService) settleFromGateway(ctx context.Context, order *model.Order) error {
	status, err := s.gateway.Status(ctx, order.PaymentTxnID)
	if err != nil {
		return err
	}

	switch status.State {
	case phonepe.StateSuccess:
		return s.markPaid(order)
	case phonepe.StateError, phonepe.StateDeclined:
		return s.markFailed(order)
	default:
		// Still pending at the gateway
		return nil
	}
}

func (s *paymentService) markPaid(order *model.Order) error {
	logger.Info("Marking order paid", map[string]interface{}{
		"order_id": order.ID,
		"txn_id":   order.PaymentTxnID,
	})

	now := time.Now()
	order.PaymentStatus = model.PaymentStatusPaid
	order.PaidAt = &now
	order.Status = model.OrderStatusConfirmed
	if err := s.orderRepo.Update(order); err != nil {
		return err
	}

	if err := s.orderRepo.AppendEvent(&model.OrderEvent{
		OrderID: order.ID,
		Status:  model.OrderStatusConfirmed,
		Note:    "Payment received, order confirmed",
	}); err != nil {
		logger.Warn("Failed to append payment event", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
	return nil
}

// markFailed fails the payment, cancels the order and returns reserved
// stock to the variants in one transaction.
func (s *paymentService) markFailed(order *model.Order) error {
	logger.Info("Marking order payment failed", map[string]interface{}{
		"order_id": order.ID,
		"txn_id":   order.PaymentTxnID,
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []model.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := tx.Model(&model.ProductVariant{}).
				Where("id = ?", item.VariantID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&model.Order{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"payment_status": model.PaymentStatusFailed,
				"status":         model.OrderStatusCancelled,
			}).Error; err != nil {
			return err
		}
		return tx.Create(&model.OrderEvent{
			OrderID: order.ID,
			Status:  model.OrderStatusCancelled,
			Note:    "Payment failed, order cancelled",
		}).Error
	})
	if err != nil {
		return err
	}

	order.PaymentStatus = model.PaymentStatusFailed
	order.Status = model.OrderStatusCancelled
	return nil
}
