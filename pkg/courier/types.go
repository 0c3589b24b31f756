package courier

// PostalCode is the per-pincode record inside a serviceability response.
// Flag fields use the courier's single-letter convention ('Y'/'N'); is_oda is
// additionally seen as the literal string "ODA" on some lanes.
type PostalCode struct {
	Pin       int    `json:"pin"`
	City      string `json:"city"`
	District  string `json:"district"`
	StateCode string `json:"state_code"`
	Prepaid   string `json:"pre_paid"`
	COD       string `json:"cod"`
	Pickup    string `json:"pickup"`
	IsODA     string `json:"is_oda"`
	SunTAT    bool   `json:"sun_tat"`
}

// DeliveryCode wraps a postal code entry
type DeliveryCode struct {
	PostalCode *PostalCode `json:"postal_code"`
}

// ServiceabilityResponse is the raw serviceability lookup response
type ServiceabilityResponse struct {
	DeliveryCodes []DeliveryCode `json:"delivery_codes"`
}

// Payment type values accepted by the charge endpoint
const (
	PaymentTypeCOD     = "COD"
	PaymentTypePrepaid = "Pre-paid"
)

// ChargeRequest describes a shipment to be priced
type ChargeRequest struct {
	OriginPin      string
	DestinationPin string
	WeightGrams    int
	PaymentType    string  // COD or Pre-paid
	CODAmount      float64 // declared order value, COD only
}

// ChargeResponse is a single priced quote from the courier
type ChargeResponse struct {
	TotalAmount    float64 `json:"total_amount"`
	GrossAmount    float64 `json:"gross_amount"`
	CODCharge      float64 `json:"charge_COD"`
	TaxAmount      float64 `json:"tax_amount"`
	ChargedWeight  float64 `json:"charged_weight"`
	Zone           string  `json:"zone"`
	PaymentType    string  `json:"payment_type"`
}

type chargeEnvelope struct {
	Charges []ChargeResponse `json:"charges"`
}

// errorEnvelope is the courier's error response body
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
