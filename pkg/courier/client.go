package courier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client represents a courier API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new courier client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 15 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// PincodeServiceability looks up delivery coverage for a destination pincode.
// The first delivery_codes entry carries the postal code record; a response
// without one is reported as ErrMalformedResponse so callers can fail closed.
func (c *Client) PincodeServiceability(ctx context.Context, pincode string) (*PostalCode, error) {
	params := url.Values{}
	params.Set("filter_codes", pincode)

	body, err := c.doGet(ctx, "/c/api/pin-codes/json/", params)
	if err != nil {
		return nil, err
	}

	var resp ServiceabilityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(resp.DeliveryCodes) == 0 || resp.DeliveryCodes[0].PostalCode == nil {
		return nil, ErrMalformedResponse
	}

	return resp.DeliveryCodes[0].PostalCode, nil
}

// ShippingCharge prices a single shipment for the given payment type
func (c *Client) ShippingCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if req.DestinationPin == "" || req.WeightGrams <= 0 {
		return nil, ErrInvalidRequest
	}
	if req.OriginPin == "" {
		req.OriginPin = c.config.OriginPin
	}

	params := url.Values{}
	params.Set("md", "S")
	params.Set("ss", "Delivered")
	params.Set("o_pin", req.OriginPin)
	params.Set("d_pin", req.DestinationPin)
	params.Set("cgm", strconv.Itoa(req.WeightGrams))
	params.Set("pt", req.PaymentType)
	if req.PaymentType == PaymentTypeCOD {
		params.Set("cod", strconv.FormatFloat(req.CODAmount, 'f', 2, 64))
	}

	body, err := c.doGet(ctx, "/api/kinko/v1/invoice/charges/.json", params)
	if err != nil {
		return nil, err
	}

	// The charge endpoint answers either a bare array or a charges envelope
	var charges []ChargeResponse
	if err := json.Unmarshal(body, &charges); err != nil {
		var envelope chargeEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		charges = envelope.Charges
	}

	if len(charges) == 0 {
		return nil, ErrMalformedResponse
	}

	quote := charges[0]
	quote.PaymentType = req.PaymentType
	return &quote, nil
}

// doGet performs an HTTP GET request against the courier API
func (c *Client) doGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.APIToken != "" {
		req.Header.Set("Authorization", "Token "+c.config.APIToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorEnvelope
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
		}

		errorMsg := fmt.Sprintf("courier API error - Status: %d, Message: %s", resp.StatusCode, errResp.Message)

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMsg)
		case resp.StatusCode >= http.StatusInternalServerError:
			return nil, fmt.Errorf("%w: %s", ErrCourierUnavailable, errorMsg)
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, errorMsg)
		}
	}

	return body, nil
}
