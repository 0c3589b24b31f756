package courier

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrMalformedResponse is returned when the courier response is missing
	// the expected fields
	ErrMalformedResponse = errors.New("malformed courier response")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the API token is invalid
	ErrUnauthorized = errors.New("unauthorized: invalid API token")

	// ErrCourierUnavailable is returned for upstream 5xx responses
	ErrCourierUnavailable = errors.New("courier service unavailable")
)
