package services

import (
	"luxebites/internal/models"
)

const EmptyCartMessage = "Your cart is empty"

// CartRow is one rendered cart line. DecrementTo and IncrementTo are the quantities
// the −/+ controls submit.
type CartRow struct {
	Name        string `json:"name"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	DecrementTo int    `json:"decrementTo"`
	IncrementTo int    `json:"incrementTo"`
	LineTotal   string `json:"lineTotal"`
}

// CartView is the cart panel as the customer sees it.
type CartView struct {
	Empty           bool      `json:"empty"`
	EmptyMessage    string    `json:"emptyMessage,omitempty"`
	Rows            []CartRow `json:"rows"`
	Count           int       `json:"count"`
	Subtotal        string    `json:"subtotal"`
	Tax             string    `json:"tax"`
	DeliveryFee     string    `json:"deliveryFee"`
	Total           string    `json:"total"`
	ShowDeliveryFee bool      `json:"showDeliveryFee"`
}

// RenderCart builds the cart view. It depends on nothing but items.
func RenderCart(items []models.CartItem) CartView {
	totals := ComputeTotals(items, DefaultDeliveryFee)
	view := CartView{
		Rows:            make([]CartRow, 0, len(items)),
		Subtotal:        FormatPrice(totals.Subtotal),
		Tax:             FormatPrice(totals.Tax),
		DeliveryFee:     FormatPrice(totals.DeliveryFee),
		Total:           FormatPrice(totals.Total),
		ShowDeliveryFee: len(items) > 0,
	}
	if len(items) == 0 {
		view.Empty = true
		view.EmptyMessage = EmptyCartMessage
		return view
	}

	for _, item := range items {
		view.Count += item.Quantity
		view.Rows = append(view.Rows, CartRow{
			Name:        item.Name,
			UnitPrice:   FormatPrice(item.Price),
			Quantity:    item.Quantity,
			DecrementTo: item.Quantity - 1,
			IncrementTo: item.Quantity + 1,
			LineTotal:   FormatPrice(item.LineTotal()),
		})
	}
	return view
}

// OrderLine is one item in the checkout summary.
type OrderLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// CheckoutView is the checkout sidebar: items plus the breakdown for the chosen option.
type CheckoutView struct {
	Items                 []OrderLine           `json:"items"`
	DeliveryType          models.DeliveryOption `json:"deliveryType"`
	ScheduledTimeRequired bool                  `json:"scheduledTimeRequired"`
	Breakdown             models.PriceBreakdown `json:"breakdown"`
	Subtotal              string                `json:"subtotal"`
	DeliveryFee           string                `json:"deliveryFee"`
	Tax                   string                `json:"tax"`
	Total                 string                `json:"total"`
}

// RenderCheckout builds the checkout summary for items and option.
func RenderCheckout(items []models.CartItem, option models.DeliveryOption) CheckoutView {
	breakdown := ComputeTotals(items, option.Fee())
	view := CheckoutView{
		Items:                 make([]OrderLine, 0, len(items)),
		DeliveryType:          option,
		ScheduledTimeRequired: option.RequiresScheduledTime(),
		Breakdown:             breakdown,
		Subtotal:              FormatPrice(breakdown.Subtotal),
		DeliveryFee:           FormatPrice(breakdown.DeliveryFee),
		Tax:                   FormatPrice(breakdown.Tax),
		Total:                 FormatPrice(breakdown.Total),
	}
	for _, item := range items {
		view.Items = append(view.Items, OrderLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Subtotal: FormatPrice(item.LineTotal()),
		})
	}
	return view
}
