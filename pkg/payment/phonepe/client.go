package phonepe

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	payPath    = "/pg/v1/pay"
	statusPath = "/pg/v1/status"
)

// Client represents a PhonePe payment gateway client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new PhonePe client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
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

// Pay creates a hosted-page payment and returns the redirect URL
func (c *Client) Pay(ctx context.Context, merchantTxnID, merchantUserID string, amountPaise int64) (*PayResponse, error) {
	if merchantTxnID == "" || amountPaise <= 0 {
		return nil, ErrInvalidRequest
	}

	payload := PayRequest{
		MerchantID:            c.config.MerchantID,
		MerchantTransactionID: merchantTxnID,
		MerchantUserID:        merchantUserID,
		Amount:                amountPaise,
		RedirectURL:           fmt.Sprintf("%s?txn=%s", c.config.RedirectURL, merchantTxnID),
		RedirectMode:          "REDIRECT",
		CallbackURL:           c.config.CallbackURL,
		PaymentInstrument:     payInstrument{Type: "PAY_PAGE"},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pay request: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	reqBody, err := json.Marshal(payEnvelope{Request: encoded})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pay envelope: %w", err)
	}

	verify := c.checksum(encoded + payPath)

	resp, err := c.doRequest(ctx, http.MethodPost, payPath, reqBody, verify)
	if err != nil {
		return nil, err
	}

	if !resp.Success || resp.Data.InstrumentResponse == nil || resp.Data.InstrumentResponse.RedirectInfo == nil {
		return nil, fmt.Errorf("%w: code=%s, message=%s", ErrPaymentFailed, resp.Code, resp.Message)
	}

	return &PayResponse{
		MerchantTransactionID: resp.Data.MerchantTransactionID,
		TransactionID:         resp.Data.TransactionID,
		PaymentURL:            resp.Data.InstrumentResponse.RedirectInfo.URL,
	}, nil
}

// Status polls the state of a payment by merchant transaction id
func (c *Client) Status(ctx context.Context, merchantTxnID string) (*StatusResponse, error) {
	if merchantTxnID == "" {
		return nil, ErrInvalidTransaction
	}

	path := fmt.Sprintf("%s/%s/%s", statusPath, c.config.MerchantID, merchantTxnID)
	verify := c.checksum(path)

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, verify)
	if err != nil {
		return nil, err
	}

	return &StatusResponse{
		MerchantTransactionID: resp.Data.MerchantTransactionID,
		TransactionID:         resp.Data.TransactionID,
		State:                 resp.Data.State,
		ResponseCode:          resp.Data.ResponseCode,
		Amount:                resp.Data.Amount,
	}, nil
}

// checksum builds the X-VERIFY header: sha256(payload + saltKey) + "###" + saltIndex
func (c *Client) checksum(payload string) string {
	sum := sha256.Sum256([]byte(payload + c.config.SaltKey))
	return hex.EncodeToString(sum[:]) + "###" + c.config.SaltIndex
}

// doRequest performs an HTTP request against the PhonePe API
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte, verify string) (*apiResponse, error) {
	url := c.config.BaseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", verify)
	req.Header.Set("X-MERCHANT-ID", c.config.MerchantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: code=%s, message=%s", ErrUnauthorized, parsed.Code, parsed.Message)
	}
	if resp.StatusCode != http.StatusOK && !parsed.Success {
		return nil, fmt.Errorf("%w: status=%d, code=%s, message=%s", ErrPaymentFailed, resp.StatusCode, parsed.Code, parsed.Message)
	}

	return &parsed, nil
}
