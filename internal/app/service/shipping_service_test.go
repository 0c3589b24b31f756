package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vastrakart/vastrakart-backend/pkg/courier"
)

// fakeCourier stands in for the courier client in service tests
type fakeCourier struct {
	serviceabilityCalls int
	chargeCalls         int

	pinData *courier.PostalCode
	pinErr  error

	chargeFn func(req courier.ChargeRequest) (*courier.ChargeResponse, error)
}

func (f *fakeCourier) PincodeServiceability(ctx context.Context, pincode string) (*courier.PostalCode, error) {
	f.serviceabilityCalls++
	if f.pinErr != nil {
		return nil, f.pinErr
	}
	return f.pinData, nil
}

func (f *fakeCourier) ShippingCharge(ctx context.Context, req courier.ChargeRequest) (*courier.ChargeResponse, error) {
	f.chargeCalls++
	if f.chargeFn != nil {
		return f.chargeFn(req)
	}
	return &courier.ChargeResponse{TotalAmount: 50, GrossAmount: 40, TaxAmount: 10}, nil
}

// memCache is an in-memory stand-in for the redis cache
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.data[key]; held {
		return false, nil
	}
	m.data[key] = []byte("1")
	return true, nil
}

func TestCheckServiceability_InvalidPincodeShortCircuits(t *testing.T) {
	fc := &fakeCourier{}
	svc := NewShippingService(fc, nil, nil, "641602")

	for _, pincode := range []string{"", "1234", "1234567", "40000a", "abcdef"} {
		result := svc.CheckServiceability(context.Background(), pincode)
		assert.False(t, result.IsServiceable, "pincode %q", pincode)
		assert.Equal(t, "Invalid pincode", result.Message)
	}

	// No network call fires for malformed input
	assert.Equal(t, 0, fc.serviceabilityCalls)
}

func TestCheckServiceability_ServiceableWithCOD(t *testing.T) {
	fc := &fakeCourier{
		pinData: &courier.PostalCode{
			Pin:     400001,
			City:    "Mumbai",
			Prepaid: "Y",
			COD:     "Y",
			IsODA:   "N",
			SunTAT:  true,
		},
	}
	svc := NewShippingService(fc, nil, nil, "641602")

	result := svc.CheckServiceability(context.Background(), "400001")

	assert.True(t, result.IsServiceable)
	assert.True(t, result.IsCODAvailable)
	assert.False(t, result.IsODA)
	assert.Equal(t, 4, result.EstimatedDays)
	assert.Equal(t, "Mumbai", result.City)
	assert.Equal(t, "Delivery in 4 days • COD Available", result.Message)
}

func TestCheckServiceability_NotServiceable(t *testing.T) {
	fc := &fakeCourier{
		pinData: &courier.PostalCode{Pin: 999999, Prepaid: "N", COD: "N"},
	}
	svc := NewShippingService(fc, nil, nil, "641602")

	result := svc.CheckServiceability(context.Background(), "999999")

	assert.False(t, result.IsServiceable)
	assert.False(t, result.IsCODAvailable)
	assert.Equal(t, "Sorry, we don't deliver to this pincode yet.", result.Message)
}

func TestCheckServiceability_PrepaidOnly(t *testing.T) {
	fc := &fakeCourier{
		pinData: &courier.PostalCode{Prepaid: "Y", COD: "N", IsODA: "N"},
	}
	svc := NewShippingService(fc, nil, nil, "641602")

	result := svc.CheckServiceability(context.Background(), "560001")

	assert.True(t, result.IsServiceable)
	assert.False(t, result.IsCODAvailable)
	assert.Equal(t, 5, result.EstimatedDays)
	assert.Equal(t, "Delivery in 5 days • Prepaid only", result.Message)
}

func TestCheckServiceability_RemoteArea(t *testing.T) {
	for _, odaValue := range []string{"Y", "ODA"} {
		fc := &fakeCourier{
			pinData: &courier.PostalCode{Prepaid: "Y", COD: "Y", IsODA: odaValue},
		}
		svc := NewShippingService(fc, nil, nil, "641602")

		result := svc.CheckServiceability(context.Background(), "793001")

		assert.True(t, result.IsServiceable, "is_oda %q", odaValue)
		assert.True(t, result.IsODA, "is_oda %q", odaValue)
		assert.Equal(t, 6, result.EstimatedDays)
		assert.Equal(t, "Delivery in 6 days • Remote area • Prepaid only", result.Message)
	}
}

func TestCheckServiceability_FailsClosedOnCourierError(t *testing.T) {
	fc := &fakeCourier{pinErr: courier.ErrMalformedResponse}
	svc := NewShippingService(fc, nil, nil, "641602")

	result := svc.CheckServiceability(context.Background(), "400001")

	assert.False(t, result.IsServiceable)
	assert.False(t, result.IsCODAvailable)
	assert.Equal(t, "Invalid pincode or service unavailable", result.Message)
}

func TestCheckServiceability_CachesResult(t *testing.T) {
	fc := &fakeCourier{
		pinData: &courier.PostalCode{Prepaid: "Y", COD: "Y"},
	}
	svc := NewShippingService(fc, nil, newMemCache(), "641602")

	first := svc.CheckServiceability(context.Background(), "400001")
	second := svc.CheckServiceability(context.Background(), "400001")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fc.serviceabilityCalls)
}

func TestGetDeliveryOptions_TwoParallelQuotes(t *testing.T) {
	fc := &fakeCourier{
		pinData: &courier.PostalCode{Prepaid: "Y", COD: "Y"},
		chargeFn: func(req courier.ChargeRequest) (*courier.ChargeResponse, error) {
			if req.PaymentType == courier.PaymentTypeCOD {
				return &courier.ChargeResponse{TotalAmount: 95, GrossAmount: 60, CODCharge: 25, TaxAmount: 10}, nil
			}
			return &courier.ChargeResponse{TotalAmount: 60, GrossAmount: 50, TaxAmount: 10}, nil
		},
	}
	svc := NewShippingService(fc, nil, nil, "641602")

	options, err := svc.GetDeliveryOptions(context.Background(), "400001", nil, 1, 550)
	require.NoError(t, err)
	require.NotNil(t, options)

	assert.True(t, options.COD.Available)
	assert.Equal(t, 95.0, options.COD.TotalAmount)
	assert.Equal(t, 25.0, options.COD.CODHandlingFee)
	assert.True(t, options.Prepaid.Available)
	assert.Equal(t, 60.0, options.Prepaid.TotalAmount)
	assert.Equal(t, 0.0, options.Prepaid.CODHandlingFee)
	assert.Equal(t, 35.0, options.Prepaid.SavingsVsCOD)
}

func TestGetDeliveryOptions_CODDisabledWhenNotOffered(t *testing.T) {
	fc := &fakeCourier{
		pinData: &courier.PostalCode{Prepaid: "Y", COD: "N"},
	}
	svc := NewShippingService(fc, nil, nil, "641602")

	options, err := svc.GetDeliveryOptions(context.Background(), "560001", nil, 1, 300)
	require.NoError(t, err)

	assert.False(t, options.COD.Available)
	assert.True(t, options.Prepaid.Available)
}

func TestGetDeliveryOptions_CODDisabledForRemoteArea(t *testing.T) {
	fc := &fakeCourier{
		pinData: &courier.PostalCode{Prepaid: "Y", COD: "Y", IsODA: "Y"},
	}
	svc := NewShippingService(fc, nil, nil, "641602")

	options, err := svc.GetDeliveryOptions(context.Background(), "793001", nil, 1, 300)
	require.NoError(t, err)

	assert.False(t, options.COD.Available)
	assert.True(t, options.Prepaid.Available)
}

func TestGetDeliveryOptions_ErrorWhenQuoteFails(t *testing.T) {
	fc := &fakeCourier{
		pinData: &courier.PostalCode{Prepaid: "Y", COD: "Y"},
		chargeFn: func(req courier.ChargeRequest) (*courier.ChargeResponse, error) {
			return nil, courier.ErrCourierUnavailable
		},
	}
	svc := NewShippingService(fc, nil, nil, "641602")

	options, err := svc.GetDeliveryOptions(context.Background(), "400001", nil, 1, 550)

	// A failed quote must yield nil, never a zeroed charge
	assert.Nil(t, options)
	assert.ErrorIs(t, err, ErrDeliveryQuoteUnavailable)
}

func TestGetDeliveryOptions_UnserviceablePincode(t *testing.T) {
	fc := &fakeCourier{
		pinData: &courier.PostalCode{Prepaid: "N", COD: "N"},
	}
	svc := NewShippingService(fc, nil, nil, "641602")

	options, err := svc.GetDeliveryOptions(context.Background(), "999999", nil, 1, 100)

	assert.Nil(t, options)
	assert.ErrorIs(t, err, ErrDeliveryQuoteUnavailable)
	assert.Equal(t, 0, fc.chargeCalls)
}
