package models

import (
	"github.com/shopspring/decimal"
)

// CartItem is one distinct menu item and its quantity within a cart.
type CartItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// LineTotal returns price × quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the ordered list of items, kept in first-add order.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Find returns the index of the item named name, or -1.
func (c *Cart) Find(name string) int {
	for i, item := range c.Items {
		if item.Name == name {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQuantity sums the quantities of all items.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (c *Cart) Clone() *Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return &Cart{Items: items}
}
