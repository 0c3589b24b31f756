package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	apperrors "github.com/vastrakart/vastrakart-backend/internal/errors"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// CheckoutToken is a client-generated idempotency key. Resending the same
// token replays as a rejected duplicate instead of a second order.
type CheckoutRequest struct {
	AddressID     uint                `json:"address_id"`
	PaymentMethod model.PaymentMethod `json:"payment_method" binding:"required,oneof=cod prepaid"`
	CheckoutToken string              `json:"checkout_token" binding:"max=64"`
}

type QuickBuyRequest struct {
	ProductID     uint                `json:"product_id" binding:"required"`
	VariantID     uint                `json:"variant_id" binding:"required"`
	Quantity      int                 `json:"quantity" binding:"required,min=1,max=10"`
	AddressID     uint                `json:"address_id"`
	PaymentMethod model.PaymentMethod `json:"payment_method" binding:"required,oneof=cod prepaid"`
	CheckoutToken string              `json:"checkout_token" binding:"max=64"`
}

// Checkout submits the user's cart as an order
// POST /api/v1/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid checkout data")
		return
	}

	result, err := ctrl.checkoutService.PlaceCartOrder(c.Request.Context(), userID, service.CheckoutRequest{
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		CheckoutToken: req.CheckoutToken,
	})
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// QuickBuy submits a single-item order, bypassing the cart
// POST /api/v1/checkout/quick-buy
func (ctrl *CheckoutController) QuickBuy(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req QuickBuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid quick buy data")
		return
	}

	result, err := ctrl.checkoutService.PlaceQuickBuyOrder(c.Request.Context(), userID, service.QuickBuyRequest{
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		Quantity:      req.Quantity,
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		CheckoutToken: req.CheckoutToken,
	})
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// respondCheckoutError maps every gating failure to a typed code so the
// storefront can point the buyer at the exact blocker.
func (ctrl *CheckoutController) respondCheckoutError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrCheckoutInFlight):
		apperrors.Conflict(c, apperrors.CheckoutInFlight, "Another checkout is already in progress, please wait")
	case errors.Is(err, service.ErrNoDeliveryAddress):
		apperrors.BadRequest(c, apperrors.AddressRequired, "Please add a delivery address before checking out")
	case errors.Is(err, service.ErrNotServiceable):
		apperrors.BadRequest(c, apperrors.ShippingNotServiceable, "Sorry, we don't deliver to this pincode yet.")
	case errors.Is(err, service.ErrDeliveryQuoteMissing):
		apperrors.BadRequest(c, apperrors.ShippingQuoteMissing, "Delivery charges could not be determined, please try again")
	case errors.Is(err, service.ErrCODUnavailable):
		apperrors.BadRequest(c, apperrors.ShippingCODUnavailable, "Cash on delivery is not available for this pincode")
	case errors.Is(err, service.ErrEmptyCart):
		apperrors.BadRequest(c, apperrors.CartEmpty, "Your cart has no purchasable items")
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.CartQuantityInvalid, "Quantity must be between 1 and 10")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
	case errors.Is(err, service.ErrInvalidVariant):
		apperrors.BadRequest(c, apperrors.CartVariantInvalid, "Selected size or variant is not available")
	case errors.Is(err, service.ErrInsufficientStock):
		apperrors.Conflict(c, apperrors.OrderOutOfStock, "One or more items just went out of stock")
	case errors.Is(err, service.ErrPaymentInitFailed):
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.PaymentFailed, "Could not start the payment, please try again")
	default:
		log.Error("Checkout failed", err, nil)
		apperrors.InternalError(c, "")
	}
}
