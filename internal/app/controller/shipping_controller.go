package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	apperrors "github.com/vastrakart/vastrakart-backend/internal/errors"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
)

type ShippingController struct {
	shippingService service.ShippingService
}

func NewShippingController(shippingService service.ShippingService) *ShippingController {
	return &ShippingController{
		shippingService: shippingService,
	}
}

// CheckServiceability reports delivery coverage for a pincode
// GET /api/v1/shipping/serviceability?pincode=400001
func (ctrl *ShippingController) CheckServiceability(c *gin.Context) {
	pincode := c.Query("pincode")
	if pincode == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Pincode is required")
		return
	}

	result := ctrl.shippingService.CheckServiceability(c.Request.Context(), pincode)
	c.JSON(http.StatusOK, result)
}

// GetDeliveryCharges quotes delivery for both payment methods
// GET /api/v1/shipping/delivery-charges?pincode=400001&variant_id=3&quantity=2&order_value=998
func (ctrl *ShippingController) GetDeliveryCharges(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	pincode := c.Query("pincode")
	if pincode == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Pincode is required")
		return
	}

	var variantID *uint
	if raw := c.Query("variant_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid variant ID")
			return
		}
		v := uint(id)
		variantID = &v
	}

	quantity, _ := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	orderValue, _ := strconv.ParseFloat(c.DefaultQuery("order_value", "0"), 64)

	options, err := ctrl.shippingService.GetDeliveryOptions(c.Request.Context(), pincode, variantID, quantity, orderValue)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVariantNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Product variant not found")
		case errors.Is(err, service.ErrDeliveryQuoteUnavailable):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.ShippingQuoteMissing, "Delivery charges are unavailable for this pincode right now")
		default:
			log.Error("Failed to fetch delivery charges", err, map[string]interface{}{
				"pincode": pincode,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, options)
}
