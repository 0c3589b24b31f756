package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vastrakart/vastrakart-backend/internal/app/repository"
	"github.com/vastrakart/vastrakart-backend/pkg/courier"
	"github.com/vastrakart/vastrakart-backend/pkg/logger"
	"github.com/vastrakart/vastrakart-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrDeliveryQuoteUnavailable = errors.New("delivery quote unavailable")
	ErrVariantNotFound          = errors.New("product variant not found")
)

const (
	serviceabilityCacheTTL = 15 * time.Minute
	defaultUnitWeightGrams = 500
)

// ServiceabilityResult is the derived delivery coverage for one pincode.
// Never persisted; recomputed whenever the active pincode changes.
type ServiceabilityResult struct {
	IsServiceable  bool   `json:"isServiceable"`
	IsCODAvailable bool   `json:"isCODAvailable"`
	IsODA          bool   `json:"isODA"`
	City           string `json:"city,omitempty"`
	EstimatedDays  int    `json:"estimatedDays"`
	Message        string `json:"message"`
}

// CourierAPI is the courier client surface the shipping service consumes
type CourierAPI interface {
	PincodeServiceability(ctx context.Context, pincode string) (*courier.PostalCode, error)
	ShippingCharge(ctx context.Context, req courier.ChargeRequest) (*courier.ChargeResponse, error)
}

// ShippingCache caches serviceability lookups between requests
type ShippingCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type ShippingService interface {
	CheckServiceability(ctx context.Context, pincode string) *ServiceabilityResult
	GetDeliveryOptions(ctx context.Context, pincode string, variantID *uint, quantity int, orderValue float64) (*DeliveryOptions, error)
}

type shippingService struct {
	courier     CourierAPI
	productRepo repository.ProductRepository
	cache       ShippingCache
	originPin   string
}

func NewShippingService(
	courierClient CourierAPI,
	productRepo repository.ProductRepository,
	cache ShippingCache,
	originPin string,
) ShippingService {
	return &shippingService{
		courier:     courierClient,
		productRepo: productRepo,
		cache:       cache,
		originPin:   originPin,
	}
}

// CheckServiceability resolves delivery coverage for a pincode. It never
// returns an error: any upstream failure or malformed response resolves to a
// closed result so a bad courier response can never read as "serviceable".
func (s *shippingService) CheckServiceability(ctx context.Context, pincode string) *ServiceabilityResult {
	if !util.IsValidPincode(pincode) {
		logger.Debug("Serviceability check rejected: invalid pincode format", map[string]interface{}{
			"pincode": pincode,
		})
		return &ServiceabilityResult{Message: "Invalid pincode"}
	}

	cacheKey := fmt.Sprintf("serviceability:%s", pincode)
	if s.cache != nil {
		var cached ServiceabilityResult
		hit, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("Serviceability cache read failed", map[string]interface{}{
				"pincode": pincode,
				"error":   err.Error(),
			})
		} else if hit {
			logger.Debug("Serviceability cache hit", map[string]interface{}{
				"pincode": pincode,
			})
			return &cached
		}
	}

	pinData, err := s.courier.PincodeServiceability(ctx, pincode)
	if err != nil {
		logger.Warn("Serviceability lookup failed, failing closed", map[string]interface{}{
			"pincode": pincode,
			"error":   err.Error(),
		})
		return &ServiceabilityResult{Message: "Invalid pincode or service unavailable"}
	}

	result := buildServiceabilityResult(pinData)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, result, serviceabilityCacheTTL); err != nil {
			logger.Warn("Serviceability cache write failed", map[string]interface{}{
				"pincode": pincode,
				"error":   err.Error(),
			})
		}
	}

	logger.Info("Serviceability resolved", map[string]interface{}{
		"pincode":        pincode,
		"serviceable":    result.IsServiceable,
		"cod_available":  result.IsCODAvailable,
		"oda":            result.IsODA,
		"estimated_days": result.EstimatedDays,
	})
	return result
}

func buildServiceabilityResult(pinData *courier.PostalCode) *ServiceabilityResult {
	isServiceable := pinData.Prepaid == "Y" || pinData.COD == "Y"
	isCODAvailable := pinData.COD == "Y"
	isODA := pinData.IsODA == "Y" || pinData.IsODA == "ODA"

	estimatedDays := 5
	if isODA {
		estimatedDays = 6
	} else if pinData.SunTAT {
		estimatedDays = 4
	}

	var message string
	switch {
	case !isServiceable:
		message = "Sorry, we don't deliver to this pincode yet."
	case isODA:
		message = fmt.Sprintf("Delivery in %d days • Remote area • Prepaid only", estimatedDays)
	case isCODAvailable:
		message = fmt.Sprintf("Delivery in %d days • COD Available", estimatedDays)
	default:
		message = fmt.Sprintf("Delivery in %d days • Prepaid only", estimatedDays)
	}

	return &ServiceabilityResult{
		IsServiceable:  isServiceable,
		IsCODAvailable: isCODAvailable,
		IsODA:          isODA,
		City:           pinData.City,
		EstimatedDays:  estimatedDays,
		Message:        message,
	}
}

// GetDeliveryOptions prices delivery to a pincode as two parallel quotes,
// one per payment method. Returns an error, never a zeroed quote, when the
// courier cannot price the lane: an unknown charge must not be read as free
// delivery.
func (s *shippingService) GetDeliveryOptions(ctx context.Context, pincode string, variantID *uint, quantity int, orderValue float64) (*DeliveryOptions, error) {
	logger.Info("Fetching delivery options", map[string]interface{}{
		"pincode":    pincode,
		"variant_id": variantID,
		"quantity":   quantity,
	})

	if !util.IsValidPincode(pincode) {
		return nil, ErrDeliveryQuoteUnavailable
	}
	if quantity < 1 {
		quantity = 1
	}

	weightGrams := defaultUnitWeightGrams * quantity
	if variantID != nil {
		variant, err := s.productRepo.FindVariantByID(*variantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVariantNotFound
			}
			return nil, err
		}
		if variant.WeightGrams > 0 {
			weightGrams = variant.WeightGrams * quantity
		}
	}

	serviceability := s.CheckServiceability(ctx, pincode)
	if !serviceability.IsServiceable {
		logger.Warn("Delivery options requested for unserviceable pincode", map[string]interface{}{
			"pincode": pincode,
		})
		return nil, ErrDeliveryQuoteUnavailable
	}

	codQuote, err := s.courier.ShippingCharge(ctx, courier.ChargeRequest{
		OriginPin:      s.originPin,
		DestinationPin: pincode,
		WeightGrams:    weightGrams,
		PaymentType:    courier.PaymentTypeCOD,
		CODAmount:      orderValue,
	})
	if err != nil {
		logger.Error("Failed to fetch COD delivery quote", err, map[string]interface{}{
			"pincode": pincode,
		})
		return nil, fmt.Errorf("%w: %v", ErrDeliveryQuoteUnavailable, err)
	}

	prepaidQuote, err := s.courier.ShippingCharge(ctx, courier.ChargeRequest{
		OriginPin:      s.originPin,
		DestinationPin: pincode,
		WeightGrams:    weightGrams,
		PaymentType:    courier.PaymentTypePrepaid,
	})
	if err != nil {
		logger.Error("Failed to fetch prepaid delivery quote", err, map[string]interface{}{
			"pincode": pincode,
		})
		return nil, fmt.Errorf("%w: %v", ErrDeliveryQuoteUnavailable, err)
	}

	codAvailable := serviceability.IsCODAvailable && !serviceability.IsODA

	options := &DeliveryOptions{
		COD: DeliveryQuote{
			Available:          codAvailable,
			BaseDeliveryCharge: codQuote.GrossAmount,
			CODHandlingFee:     codQuote.CODCharge,
			Tax:                codQuote.TaxAmount,
			TotalAmount:        codQuote.TotalAmount,
		},
		Prepaid: DeliveryQuote{
			Available:          true,
			BaseDeliveryCharge: prepaidQuote.GrossAmount,
			Tax:                prepaidQuote.TaxAmount,
			TotalAmount:        prepaidQuote.TotalAmount,
		},
	}
	if savings := codQuote.TotalAmount - prepaidQuote.TotalAmount; savings > 0 {
		options.Prepaid.SavingsVsCOD = savings
	}

	logger.Info("Delivery options resolved", map[string]interface{}{
		"pincode":       pincode,
		"cod_available": codAvailable,
		"cod_total":     options.COD.TotalAmount,
		"prepaid_total": options.Prepaid.TotalAmount,
	})
	return options, nil
}
