package service

import (
	"github.com/vastrakart/vastrakart-backend/internal/app/model"
)

// DeliveryQuote is one priced delivery option as shown to the buyer.
type DeliveryQuote struct {
	Available          bool    `json:"available"`
	BaseDeliveryCharge float64 `json:"base_delivery_charge"`
	CODHandlingFee     float64 `json:"cod_handling_fee"`
	Tax                float64 `json:"tax"`
	TotalAmount        float64 `json:"total_amount"`
	SavingsVsCOD       float64 `json:"savings_vs_cod,omitempty"`
}

// DeliveryOptions carries the two parallel quotes for a destination.
type DeliveryOptions struct {
	COD     DeliveryQuote `json:"cod"`
	Prepaid DeliveryQuote `json:"prepaid"`
}

// QuoteFor returns the quote matching the payment method.
func (d *DeliveryOptions) QuoteFor(method model.PaymentMethod) DeliveryQuote {
	if method == model.PaymentMethodCOD {
		return d.COD
	}
	return d.Prepaid
}

// Totals is the fully derived price breakdown for a checkout.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	Tax            float64 `json:"tax"`
	DeliveryCharge float64 `json:"delivery_charge"`
	TotalPrice     float64 `json:"total_price"`
	ItemCount      int     `json:"item_count"`
}

// ComputeCartTotals derives the price breakdown for a set of cart items.
// Pure function of its inputs: same items, options and method always yield
// the same totals.
//
// Items without a resolvable variant or price contribute nothing to the
// subtotal and the item count; they are not purchasable as-is.
//
// Tax is GST charged per item at the product's rate and is added into the
// grand total. Item prices are treated as tax-exclusive in both the cart
// and quick-buy flows so the two can never disagree.
//
// A nil options value means the delivery cost is not yet known; the charge
// is reported as zero and callers must keep order placement disabled until
// a quote arrives.
func ComputeCartTotals(items []model.CartItem, options *DeliveryOptions, method model.PaymentMethod) Totals {
	var totals Totals

	for _, item := range items {
		if !item.Purchasable() {
			continue
		}
		lineAmount := item.Variant.Price * float64(item.Quantity)
		totals.Subtotal += lineAmount
		totals.Tax += lineAmount * item.Product.GSTRate / 100
		totals.ItemCount += item.Quantity
	}

	if options != nil {
		totals.DeliveryCharge = options.QuoteFor(method).TotalAmount
	}

	totals.TotalPrice = totals.Subtotal + totals.Tax + totals.DeliveryCharge
	return totals
}

// ComputeQuickBuyTotals derives the price breakdown for a single-item
// expedited purchase. Same tax and delivery rules as the cart flow.
func ComputeQuickBuyTotals(unitPrice, gstRate float64, quantity int, options *DeliveryOptions, method model.PaymentMethod) Totals {
	var totals Totals

	if unitPrice > 0 && quantity > 0 {
		totals.Subtotal = unitPrice * float64(quantity)
		totals.Tax = totals.Subtotal * gstRate / 100
		totals.ItemCount = quantity
	}

	if options != nil {
		totals.DeliveryCharge = options.QuoteFor(method).TotalAmount
	}

	totals.TotalPrice = totals.Subtotal + totals.Tax + totals.DeliveryCharge
	return totals
}
