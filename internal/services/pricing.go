package services

import (
	"github.com/shopspring/decimal"

	"luxebites/internal/models"
)

// CurrencySymbol prefixes every displayed amount.
const CurrencySymbol = "GH₵"

// TaxRate is the 15% VAT applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.15")

// DefaultDeliveryFee is the flat fee the cart view estimates with. The delivery
// option's own fee is only applied at checkout.
var DefaultDeliveryFee = models.DeliveryStandard.Fee()

// ComputeTotals prices items. Tax is rounded half away from zero to two places and
// total is subtotal + tax + deliveryFee.
func ComputeTotals(items []models.CartItem, deliveryFee decimal.Decimal) models.PriceBreakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	tax := subtotal.Mul(TaxRate).Round(2)

	return models.PriceBreakdown{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: deliveryFee,
		Total:       subtotal.Add(tax).Add(deliveryFee),
	}
}

// FormatPrice renders an amount with the currency symbol and two decimals.
func FormatPrice(d decimal.Decimal) string {
	return CurrencySymbol + d.StringFixed(2)
}
