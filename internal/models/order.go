package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerDetails holds the checkout form.
type CustomerDetails struct {
	FullName            string         `json:"fullName" form:"fullName"`
	Phone               string         `json:"phone" form:"phone"`
	Email               string         `json:"email" form:"email"`
	Address             string         `json:"address" form:"address"`
	City                string         `json:"city" form:"city"`
	Area                string         `json:"area" form:"area"`
	SpecialInstructions string         `json:"specialInstructions" form:"specialInstructions"`
	DeliveryType        DeliveryOption `json:"deliveryType" form:"deliveryType"`
	ScheduledTime       string         `json:"scheduledTime" form:"scheduledTime"`
	PaymentMethod       string         `json:"paymentMethod" form:"paymentMethod"`
}

// DeliveryAddress joins address, area and city the way the confirmation shows it.
func (d CustomerDetails) DeliveryAddress() string {
	return d.Address + ", " + d.Area + ", " + d.City
}

// PriceBreakdown is derived from a cart and a delivery fee. It is never stored on its own.
type PriceBreakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// Order is created once per successful checkout and never modified afterwards.
type Order struct {
	OrderNumber       string          `json:"orderNumber"`
	OrderDate         time.Time       `json:"orderDate"`
	Customer          CustomerDetails `json:"customer"`
	Items             []CartItem      `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	DeliveryFee       decimal.Decimal `json:"deliveryFee"`
	Total             decimal.Decimal `json:"total"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
}

// Confirmation is what the customer sees once the order is placed.
type Confirmation struct {
	OrderNumber       string          `json:"orderNumber"`
	Address           string          `json:"address"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
	Total             decimal.Decimal `json:"total"`
}
