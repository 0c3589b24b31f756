package phonepe

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPaymentFailed is returned when the payment process fails
	ErrPaymentFailed = errors.New("payment failed")

	// ErrInvalidTransaction is returned when the transaction ID is unknown
	ErrInvalidTransaction = errors.New("invalid transaction ID")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the checksum or key is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid merchant credentials")
)
