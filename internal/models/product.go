package models

import "github.com/shopspring/decimal"

// CategoryAll matches every menu item.
const CategoryAll = "all"

// MenuItem is a purchasable dish on the menu.
type MenuItem struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Category    string          `json:"category" yaml:"category"`
}

// InCategory reports whether the item is shown under category.
func (m MenuItem) InCategory(category string) bool {
	return category == CategoryAll || category == "" || m.Category == category
}
