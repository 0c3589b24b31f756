package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
	"github.com/vastrakart/vastrakart-backend/internal/app/service"
	apperrors "github.com/vastrakart/vastrakart-backend/internal/errors"
	"github.com/vastrakart/vastrakart-backend/internal/middleware"
)

type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type AddressRequest struct {
	ReceiverName   string            `json:"receiver_name" binding:"required"`
	ReceiverMobile string            `json:"receiver_mobile" binding:"required"`
	HouseNo        string            `json:"house_no" binding:"required"`
	Area           string            `json:"area" binding:"required"`
	Landmark       string            `json:"landmark"`
	City           string            `json:"city"`
	State          string            `json:"state"`
	Pincode        string            `json:"pincode" binding:"required"`
	AddressType    model.AddressType `json:"address_type"`
	IsPrimary      bool              `json:"is_primary"`
}

func (r *AddressRequest) toModel() *model.Address {
	addressType := r.AddressType
	if addressType == "" {
		addressType = model.AddressTypeHome
	}
	return &model.Address{
		ReceiverName:   r.ReceiverName,
		ReceiverMobile: r.ReceiverMobile,
		HouseNo:        r.HouseNo,
		Area:           r.Area,
		Landmark:       r.Landmark,
		City:           r.City,
		State:          r.State,
		Pincode:        r.Pincode,
		AddressType:    addressType,
		IsPrimary:      r.IsPrimary,
	}
}

// GetAddresses lists the user's addresses, primary first
// GET /api/v1/addresses
func (ctrl *AddressController) GetAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	addresses, err := ctrl.addressService.GetUserAddresses(userID)
	if err != nil {
		log.Error("Failed to fetch addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
	})
}

// CreateAddress adds a delivery address
// POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid address data")
		return
	}

	address := req.toModel()
	if err := ctrl.addressService.CreateAddress(userID, address); err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"address": address,
	})
}

// UpdateAddress edits a delivery address
// PUT /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid address ID")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid address data")
		return
	}

	if err := ctrl.addressService.UpdateAddress(userID, uint(addressID), req.toModel()); err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address updated successfully",
	})
}

// DeleteAddress removes a delivery address
// DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid address ID")
		return
	}

	if err := ctrl.addressService.DeleteAddress(userID, uint(addressID)); err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address deleted successfully",
	})
}

// MakePrimary designates an address as the default delivery destination
// PUT /api/v1/addresses/:id/primary
func (ctrl *AddressController) MakePrimary(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid address ID")
		return
	}

	if err := ctrl.addressService.MakePrimary(userID, uint(addressID)); err != nil {
		ctrl.respondAddressError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Primary address updated",
	})
}

func (ctrl *AddressController) respondAddressError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.AddressNotFound, "Address not found")
	case errors.Is(err, service.ErrInvalidPincode):
		apperrors.BadRequest(c, apperrors.AddressInvalidPincode, "Pincode must be exactly 6 digits")
	case errors.Is(err, service.ErrInvalidMobile):
		apperrors.BadRequest(c, apperrors.AddressInvalidMobile, "Mobile number must be exactly 10 digits")
	default:
		log.Error("Address operation failed", err, nil)
		apperrors.InternalError(c, "")
	}
}
