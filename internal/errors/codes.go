package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The storefront maps these codes to user-facing copy.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Cart (CART_) ====================
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartEmpty           = "CART_EMPTY"
	CartQuantityInvalid = "CART_QUANTITY_INVALID"
	CartVariantInvalid  = "CART_VARIANT_INVALID"

	// ==================== Address (ADDRESS_) ====================
	AddressNotFound       = "ADDRESS_NOT_FOUND"
	AddressInvalidPincode = "ADDRESS_INVALID_PINCODE"
	AddressInvalidMobile  = "ADDRESS_INVALID_MOBILE"
	AddressRequired       = "ADDRESS_REQUIRED"

	// ==================== Shipping (SHIPPING_) ====================
	ShippingNotServiceable = "SHIPPING_NOT_SERVICEABLE"
	ShippingCODUnavailable = "SHIPPING_COD_UNAVAILABLE"
	ShippingQuoteMissing   = "SHIPPING_QUOTE_MISSING"

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutInFlight = "CHECKOUT_IN_FLIGHT"
	CheckoutBlocked  = "CHECKOUT_BLOCKED"

	// ==================== Order (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION"
	OrderOutOfStock        = "ORDER_OUT_OF_STOCK"

	// ==================== Payment (PAYMENT_) ====================
	PaymentNotFound  = "PAYMENT_NOT_FOUND"
	PaymentFailed    = "PAYMENT_FAILED"
	PaymentDeclined  = "PAYMENT_DECLINED"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
