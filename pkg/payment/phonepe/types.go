package phonepe

// Payment states reported by the status API
const (
	StatePending  = "PAYMENT_PENDING"
	StateSuccess  = "PAYMENT_SUCCESS"
	StateError    = "PAYMENT_ERROR"
	StateDeclined = "PAYMENT_DECLINED"
)

// PayRequest is the inner payload of the pay API (base64-encoded on the wire)
type PayRequest struct {
	MerchantID            string         `json:"merchantId"`
	MerchantTransactionID string         `json:"merchantTransactionId"`
	MerchantUserID        string         `json:"merchantUserId"`
	Amount                int64          `json:"amount"` // paise
	RedirectURL           string         `json:"redirectUrl"`
	RedirectMode          string         `json:"redirectMode"`
	CallbackURL           string         `json:"callbackUrl"`
	PaymentInstrument     payInstrument  `json:"paymentInstrument"`
}

type payInstrument struct {
	Type string `json:"type"`
}

type payEnvelope struct {
	Request string `json:"request"`
}

// PayResponse carries the hosted payment page URL for the user redirect
type PayResponse struct {
	MerchantTransactionID string
	TransactionID         string
	PaymentURL            string
}

// StatusResponse is the normalized result of a status poll
type StatusResponse struct {
	MerchantTransactionID string
	TransactionID         string
	State                 string
	ResponseCode          string
	Amount                int64
}

type apiResponse struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    apiResponseData `json:"data"`
}

type apiResponseData struct {
	MerchantID            string              `json:"merchantId"`
	MerchantTransactionID string              `json:"merchantTransactionId"`
	TransactionID         string              `json:"transactionId"`
	Amount                int64               `json:"amount"`
	State                 string              `json:"state"`
	ResponseCode          string              `json:"responseCode"`
	InstrumentResponse    *instrumentResponse `json:"instrumentResponse,omitempty"`
}

type instrumentResponse struct {
	Type         string        `json:"type"`
	RedirectInfo *redirectInfo `json:"redirectInfo,omitempty"`
}

type redirectInfo struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}
