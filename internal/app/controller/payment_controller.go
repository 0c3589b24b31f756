package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	apperrors "github.com/vastrakart/vastrakart-backend/internal/errors"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
)

type PaymentController struct {
	paymentService service.PaymentService
}

func NewPaymentController(paymentService service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

type PaymentCallbackRequest struct {
	MerchantTransactionID string `json:"merchantTransactionId" binding:"required"`
}

// GetPaymentStatus is polled by the verification page after a prepaid
// checkout redirect
// GET /api/v1/payments/status/:txnId
func (ctrl *PaymentController) GetPaymentStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	txnID := c.Param("txnId")
	if txnID == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Transaction ID is required")
		return
	}

	result, err := ctrl.paymentService.GetPaymentStatus(c.Request.Context(), userID, txnID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			apperrors.NotFound(c, apperrors.PaymentNotFound, "Payment transaction not found")
			return
		}
		log.Error("Failed to fetch payment status", err, map[string]interface{}{
			"txn_id": txnID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Callback receives the gateway's server-to-server payment notification
// POST /api/v1/payments/callback
func (ctrl *PaymentController) Callback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid callback payload")
		return
	}

	if err := ctrl.paymentService.HandleCallback(c.Request.Context(), req.MerchantTransactionID); err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			apperrors.NotFound(c, apperrors.PaymentNotFound, "Unknown transaction")
			return
		}
		log.Error("Payment callback handling failed", err, map[string]interface{}{
			"txn_id": req.MerchantTransactionID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Callback processed",
	})
}
