package services

import (
	"github.com/shopspring/decimal"

	"luxebites/internal/models"
)

// Catalog is the menu customers add items from.
type Catalog struct {
	items  []models.MenuItem
	byName map[string]models.MenuItem
}

// NewCatalog indexes items by name, keeping their order.
func NewCatalog(items []models.MenuItem) *Catalog {
	c := &Catalog{
		items:  make([]models.MenuItem, len(items)),
		byName: make(map[string]models.MenuItem, len(items)),
	}
	copy(c.items, items)
	for _, item := range items {
		c.byName[item.Name] = item
	}
	return c
}

// DefaultMenu is served when the configuration does not list a menu.
func DefaultMenu() []models.MenuItem {
	price := decimal.RequireFromString
	return []models.MenuItem{
		{Name: "Jollof Rice", Price: price("25.00"), Category: "mains", Description: "Smoky party jollof with grilled chicken"},
		{Name: "Waakye", Price: price("20.00"), Category: "mains", Description: "Rice and beans with shito, gari and egg"},
		{Name: "Banku & Tilapia", Price: price("45.00"), Category: "mains", Description: "Grilled tilapia with banku and pepper"},
		{Name: "Chicken Wings", Price: price("18.50"), Category: "starters", Description: "Spicy glazed wings"},
		{Name: "Kelewele", Price: price("12.00"), Category: "starters", Description: "Fried spiced plantain"},
		{Name: "Sobolo", Price: price("8.00"), Category: "drinks", Description: "Chilled hibiscus drink"},
		{Name: "Fresh Coconut", Price: price("10.00"), Category: "drinks"},
		{Name: "Bofrot", Price: price("6.50"), Category: "desserts", Description: "Sweet puff-puff"},
	}
}

// Filter returns the items shown under category, in menu order. "all" shows everything.
func (c *Catalog) Filter(category string) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(c.items))
	for _, item := range c.items {
		if item.InCategory(category) {
			out = append(out, item)
		}
	}
	return out
}

// Lookup finds a menu item by name.
func (c *Catalog) Lookup(name string) (models.MenuItem, bool) {
	item, ok := c.byName[name]
	return item, ok
}

// Categories lists the distinct categories in the order they first appear.
func (c *Catalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range c.items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	return out
}
