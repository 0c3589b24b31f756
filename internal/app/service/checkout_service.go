package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"github.com/vastrakart/vastrakart-backend/pkg/payment/phonepe"
	"gorm.io/gorm"
)

var (
	ErrNoDeliveryAddress    = errors.New("no delivery address on file")
	ErrNotServiceable       = errors.New("delivery address pincode is not serviceable")
	ErrCODUnavailable       = errors.New("cash on delivery is not available for this pincode")
	ErrDeliveryQuoteMissing = errors.New("delivery charge not yet resolved")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCheckoutInFlight     = errors.New("a checkout is already in progress")
	ErrPaymentInitFailed    = errors.New("failed to initiate payment")
)

const checkoutLockTTL = 10 * time.Minute

// PaymentGateway is the payment provider surface the checkout and payment
// services consume.
type PaymentGateway interface {
	Pay(ctx context.Context, merchantTxnID, merchantUserID string, amountPaise int64) (*phonepe.PayResponse, error)
	Status(ctx context.Context, merchantTxnID string) (*phonepe.StatusResponse, error)
}

// CheckoutLocker serializes checkout attempts per user
type CheckoutLocker interface {
	AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// CheckoutRequest is a cart-flow order submission. CheckoutToken is a
// client-generated idempotency key; duplicate resends of the same token are
// rejected.
type CheckoutRequest struct {
	AddressID     uint // 0 means use the primary address
	PaymentMethod model.PaymentMethod
	CheckoutToken string
}

// QuickBuyRequest is a single-item expedited order submission
type QuickBuyRequest struct {
	ProductID     uint
	VariantID     uint
	Quantity      int
	AddressID     uint
	PaymentMethod model.PaymentMethod
	CheckoutToken string
}

// CheckoutResult reports a placed order. PaymentURL is set for prepaid
// orders and the buyer must be redirected there to complete payment.
type CheckoutResult struct {
	OrderID       uint                `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	PaymentURL    string              `json:"payment_url,omitempty"`
	Totals        Totals              `json:"totals"`
}

type CheckoutService interface {
	PlaceCartOrder(ctx context.Context, userID uint, req CheckoutRequest) (*CheckoutResult, error)
	PlaceQuickBuyOrder(ctx context.Context, userID uint, req QuickBuyRequest) (*CheckoutResult, error)
}

type checkoutService struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	addressRepo repository.AddressRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	shipping    ShippingService
	gateway     PaymentGateway
	locker      CheckoutLocker
	cartCache   CartCache
}

func NewCheckoutService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	shipping ShippingService,
	gateway PaymentGateway,
	locker CheckoutLocker,
	cartCache CartCache,
) CheckoutService {
	return &checkoutService{
		db:          db,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		shipping:    shipping,
		gateway:     gateway,
		locker:      locker,
		cartCache:   cartCache,
	}
}

// PlaceCartOrder validates, prices and submits the user's whole cart as one
// order. Validation failures surface as typed errors before any state
// changes; the order write, stock decrements and cart clear commit in one
// transaction.
func (s *checkoutService) PlaceCartOrder(ctx context.Context, userID uint, req CheckoutRequest) (*CheckoutResult, error) {
	logger.Info("Placing cart order", map[string]interface{}{
		"user_id":        userID,
		"address_id":     req.AddressID,
		"payment_method": req.PaymentMethod,
	})

	guard, err := s.acquireGuard(ctx, userID, req.CheckoutToken)
	if err != nil {
		return nil, err
	}
	defer guard.release(ctx)

	address, options, err := s.resolveDelivery(ctx, userID, req.AddressID, req.PaymentMethod, nil, 0, 0)
	if err != nil {
		return nil, err
	}

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	validItems := make([]model.CartItem, 0, len(cartItems))
	for _, item := range cartItems {
		if item.Purchasable() {
			validItems = append(validItems, item)
		}
	}
	if len(validItems) == 0 {
		logger.Warn("Checkout blocked: cart has no purchasable items", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	totals := ComputeCartTotals(validItems, options, req.PaymentMethod)

	order := &model.Order{
		OrderNumber:    newOrderNumber(),
		UserID:         userID,
		Flow:           model.FlowCart,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		DeliveryCharge: totals.DeliveryCharge,
		TotalAmount:    totals.TotalPrice,
		Status:         model.OrderStatusPending,
		PaymentStatus:  model.PaymentStatusPending,
		PaymentMethod:  req.PaymentMethod,
		AddressID:      address.ID,
		ShippingPin:    address.Pincode,
	}
	for _, item := range validItems {
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			ProductID:       item.ProductID,
			VariantID:       *item.VariantID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.Variant.Price,
			GSTRate:         item.Product.GSTRate,
			SizeSnapshot:    item.Variant.Size,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.OrderItems {
			if err := s.productRepo.DecrementStock(tx, item.VariantID, item.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInsufficientStock
				}
				return err
			}
		}
		if err := s.orderRepo.Create(tx, order); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.OrderEvent{
			OrderID: order.ID,
			Status:  model.OrderStatusPending,
			Note:    "Order placed",
		}).Error
	})
	if err != nil {
		logger.Error("Cart order transaction failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	guard.commit()

	s.invalidateCartCount(ctx, userID)

	return s.finalize(ctx, order, totals)
}

// PlaceQuickBuyOrder submits a single variant purchase, bypassing the cart.
func (s *checkoutService) PlaceQuickBuyOrder(ctx context.Context, userID uint, req QuickBuyRequest) (*CheckoutResult, error) {
	logger.Info("Placing quick buy order", map[string]interface{}{
		"user_id":        userID,
		"product_id":     req.ProductID,
		"variant_id":     req.VariantID,
		"quantity":       req.Quantity,
		"payment_method": req.PaymentMethod,
	})

	if req.Quantity < model.MinCartQuantity || req.Quantity > model.MaxCartQuantity {
		return nil, ErrInvalidQuantity
	}

	guard, err := s.acquireGuard(ctx, userID, req.CheckoutToken)
	if err != nil {
		return nil, err
	}
	defer guard.release(ctx)

	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	variant, err := s.productRepo.FindVariantByID(req.VariantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVariant
		}
		return nil, err
	}
	if variant.ProductID != product.ID || variant.Price <= 0 {
		return nil, ErrInvalidVariant
	}

	variantID := req.VariantID
	orderValue := variant.Price * float64(req.Quantity)
	address, options, err := s.resolveDelivery(ctx, userID, req.AddressID, req.PaymentMethod, &variantID, req.Quantity, orderValue)
	if err != nil {
		return nil, err
	}

	totals := ComputeQuickBuyTotals(variant.Price, product.GSTRate, req.Quantity, options, req.PaymentMethod)

	order := &model.Order{
		OrderNumber:    newOrderNumber(),
		UserID:         userID,
		Flow:           model.FlowQuickBuy,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		DeliveryCharge: totals.DeliveryCharge,
		TotalAmount:    totals.TotalPrice,
		Status:         model.OrderStatusPending,
		PaymentStatus:  model.PaymentStatusPending,
		PaymentMethod:  req.PaymentMethod,
		AddressID:      address.ID,
		ShippingPin:    address.Pincode,
		OrderItems: []model.OrderItem{{
			ProductID:       product.ID,
			VariantID:       variant.ID,
			Quantity:        req.Quantity,
			PriceAtPurchase: variant.Price,
			GSTRate:         product.GSTRate,
			SizeSnapshot:    variant.Size,
		}},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.DecrementStock(tx, variant.ID, req.Quantity); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInsufficientStock
			}
			return err
		}
		if err := s.orderRepo.Create(tx, order); err != nil {
			return err
		}
		return tx.Create(&model.OrderEvent{
			OrderID: order.ID,
			Status:  model.OrderStatusPending,
			Note:    "Order placed",
		}).Error
	})
	if err != nil {
		logger.Error("Quick buy order transaction failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	guard.commit()

	return s.finalize(ctx, order, totals)
}

// resolveDelivery runs the pre-submission gate: an address must exist, its
// pincode must be serviceable, COD must be offered when selected, and a
// delivery quote must be in hand. Quotes and totals are always recomputed
// server-side; client-supplied amounts are never trusted.
func (s *checkoutService) resolveDelivery(
	ctx context.Context,
	userID, addressID uint,
	method model.PaymentMethod,
	variantID *uint,
	quantity int,
	orderValue float64,
) (*model.Address, *DeliveryOptions, error) {
	var address *model.Address
	var err error
	if addressID != 0 {
		address, err = s.addressRepo.FindByID(addressID)
		if err == nil && address.UserID != userID {
			err = gorm.ErrRecordNotFound
		}
	} else {
		address, err = s.addressRepo.FindPrimaryByUserID(userID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Checkout blocked: no delivery address", map[string]interface{}{
				"user_id":    userID,
				"address_id": addressID,
			})
			return nil, nil, ErrNoDeliveryAddress
		}
		return nil, nil, err
	}

	serviceability := s.shipping.CheckServiceability(ctx, address.Pincode)
	if !serviceability.IsServiceable {
		logger.Warn("Checkout blocked: pincode not serviceable", map[string]interface{}{
			"user_id": userID,
			"pincode": address.Pincode,
		})
		return nil, nil, ErrNotServiceable
	}

	options, err := s.shipping.GetDeliveryOptions(ctx, address.Pincode, variantID, quantity, orderValue)
	if err != nil || options == nil {
		logger.Warn("Checkout blocked: delivery quote missing", map[string]interface{}{
			"user_id": userID,
			"pincode": address.Pincode,
		})
		return nil, nil, ErrDeliveryQuoteMissing
	}

	if method == model.PaymentMethodCOD && !options.COD.Available {
		logger.Warn("Checkout blocked: COD not available", map[string]interface{}{
			"user_id": userID,
			"pincode": address.Pincode,
		})
		return nil, nil, ErrCODUnavailable
	}

	return address, options, nil
}

// finalize initiates payment for prepaid orders and appends the first
// payment-facing event. COD orders confirm immediately.
func (s *checkoutService) finalize(ctx context.Context, order *model.Order, totals Totals) (*CheckoutResult, error) {
	result := &CheckoutResult{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		PaymentMethod: order.PaymentMethod,
		Totals:        totals,
	}

	if order.PaymentMethod == model.PaymentMethodCOD {
		if err := s.orderRepo.UpdateStatus(order.ID, model.OrderStatusConfirmed); err != nil {
			return nil, err
		}
		if err := s.orderRepo.AppendEvent(&model.OrderEvent{
			OrderID: order.ID,
			Status:  model.OrderStatusConfirmed,
			Note:    "Order confirmed, payable on delivery",
		}); err != nil {
			logger.Warn("Failed to append order event", map[string]interface{}{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
		logger.Info("COD order placed", map[string]interface{}{
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"total_amount": order.TotalAmount,
		})
		return result, nil
	}

	txnID := newTxnID()
	amountPaise := int64(order.TotalAmount*100 + 0.5)

	payResp, err := s.gateway.Pay(ctx, txnID, fmt.Sprintf("U%d", order.UserID), amountPaise)
	if err != nil {
		logger.Error("Failed to initiate prepaid payment", err, map[string]interface{}{
			"order_id": order.ID,
			"txn_id":   txnID,
		})
		s.unwindUnpaidOrder(ctx, order)
		return nil, ErrPaymentInitFailed
	}

	order.PaymentTxnID = txnID
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	result.PaymentURL = payResp.PaymentURL
	logger.Info("Prepaid order placed, awaiting payment", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"txn_id":       txnID,
		"total_amount": order.TotalAmount,
	})
	return result, nil
}

// unwindUnpaidOrder cancels an order whose payment never started: reserved
// stock goes back to the variants and cart-flow items return to the cart so
// the buyer can retry. Runs in one transaction, mirroring the reconciliation
// path for failed payments.
func (s *checkoutService) unwindUnpaidOrder(ctx context.Context, order *model.Order) {
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
		if order.Flow == model.FlowCart {
			for _, item := range items {
				variantID := item.VariantID
				if err := tx.Create(&model.CartItem{
					UserID:    order.UserID,
					ProductID: item.ProductID,
					VariantID: &variantID,
					Quantity:  item.Quantity,
				}).Error; err != nil {
					return err
				}
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
			Note:    "Payment could not be started, order cancelled",
		}).Error
	})
	if err != nil {
		logger.Error("Failed to unwind unpaid order", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return
	}

	order.PaymentStatus = model.PaymentStatusFailed
	order.Status = model.OrderStatusCancelled
	s.invalidateCartCount(ctx, order.UserID)
}

// checkoutGuard holds the redis claim for one submission attempt. Token
// claims are idempotency keys: commit keeps them set after a placed order so
// a resend of the same token is rejected until the TTL lapses. Per-user
// claims always release when the attempt finishes.
type checkoutGuard struct {
	locker    CheckoutLocker
	userID    uint
	key       string
	keepAfter bool
	committed bool
}

func (g *checkoutGuard) commit() {
	g.committed = true
}

func (g *checkoutGuard) release(ctx context.Context) {
	if g.locker == nil || g.key == "" {
		return
	}
	if g.committed && g.keepAfter {
		return
	}
	if err := g.locker.Delete(ctx, g.key); err != nil {
		logger.Warn("Failed to release checkout guard", map[string]interface{}{
			"user_id": g.userID,
			"error":   err.Error(),
		})
	}
}

// acquireGuard claims the submission slot for one checkout attempt. With a
// client token the key survives a successful placement, so double-submits of
// the same attempt fail even after the first one completed. Without a token
// only concurrent attempts by the same user are serialized.
func (s *checkoutService) acquireGuard(ctx context.Context, userID uint, token string) (*checkoutGuard, error) {
	guard := &checkoutGuard{locker: s.locker, userID: userID}
	if s.locker == nil {
		return guard, nil
	}

	if token != "" {
		guard.key = fmt.Sprintf("checkout:token:%s", token)
		guard.keepAfter = true
	} else {
		guard.key = fmt.Sprintf("checkout:lock:%d", userID)
	}

	won, err := s.locker.AcquireOnce(ctx, guard.key, checkoutLockTTL)
	if err != nil {
		logger.Warn("Checkout guard acquisition failed, proceeding unguarded", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		guard.key = ""
		return guard, nil
	}
	if !won {
		logger.Warn("Duplicate checkout submission rejected", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrCheckoutInFlight
	}
	return guard, nil
}

func (s *checkoutService) invalidateCartCount(ctx context.Context, userID uint) {
	if s.cartCache == nil {
		return
	}
	if err := s.cartCache.Delete(ctx, cartCountKey(userID)); err != nil {
		logger.Warn("Failed to invalidate cart count cache", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("VK%s%s", time.Now().Format("20060102"), suffix)
}

func newTxnID() string {
	return fmt.Sprintf("TXN%s", strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16]))
}
