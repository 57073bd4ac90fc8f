package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"luxebites/internal/database"
	"luxebites/internal/models"
)

// CartService owns the cart of one session and persists it after every change.
type CartService struct {
	store database.Store
	log   *zap.SugaredLogger
	cart  *models.Cart
}

// NewCartService restores the session's cart from the store.
func NewCartService(ctx context.Context, store database.Store, log *zap.SugaredLogger) (*CartService, error) {
	cart, err := LoadCart(ctx, store, log)
	if err != nil {
		return nil, err
	}
	return &CartService{store: store, log: log, cart: cart}, nil
}

// LoadCart reads the persisted cart. A missing or unreadable value yields an empty cart.
func LoadCart(ctx context.Context, store database.Store, log *zap.SugaredLogger) (*models.Cart, error) {
	raw, err := store.Get(ctx, database.CartKey)
	if errors.Is(err, database.ErrNotFound) {
		return &models.Cart{Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warnf("LoadCart - Discarding unreadable cart: %v", err)
		return &models.Cart{Items: []models.CartItem{}}, nil
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return &models.Cart{Items: items}, nil
}

// SaveCart writes the cart as a JSON array of line items.
func SaveCart(ctx context.Context, store database.Store, cart *models.Cart) error {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := store.Set(ctx, database.CartKey, string(data)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// ParseQuantity reads the quantity field of the add-to-cart form.
// Anything that is not a positive integer counts as 1.
func ParseQuantity(raw string) int {
	quantity, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || quantity < 1 {
		return 1
	}
	return quantity
}

// commit persists next and only then makes it the current cart.
func (cs *CartService) commit(ctx context.Context, next *models.Cart) error {
	if err := SaveCart(ctx, cs.store, next); err != nil {
		return err
	}
	cs.cart = next
	return nil
}

// AddItem adds quantity units of name. An existing item has its quantity increased,
// a new one goes to the end of the cart. Quantities below 1 are coerced to 1.
// It returns the acknowledgment shown to the customer.
func (cs *CartService) AddItem(ctx context.Context, name string, unitPrice decimal.Decimal, quantity int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if unitPrice.IsNegative() {
		return "", fmt.Errorf("%w: negative price %s", ErrInvalidItem, unitPrice)
	}
	if quantity < 1 {
		cs.log.Debugf("CartService.AddItem - Coercing quantity %d to 1", quantity)
		quantity = 1
	}

	next := cs.cart.Clone()
	if i := next.Find(name); i >= 0 {
		cs.log.Debugf("CartService.AddItem - %s already in cart, quantity %d -> %d", name, next.Items[i].Quantity, next.Items[i].Quantity+quantity)
		next.Items[i].Quantity += quantity
	} else {
		next.Items = append(next.Items, models.CartItem{Name: name, Price: unitPrice, Quantity: quantity})
	}

	if err := cs.commit(ctx, next); err != nil {
		cs.log.Errorf("CartService.AddItem - Error saving cart: %v", err)
		return "", err
	}

	cs.log.Infof("CartService.AddItem - Added %d x %s, cart has %d items", quantity, name, len(cs.cart.Items))
	return fmt.Sprintf("%s added to cart!", name), nil
}

// RemoveItem deletes name from the cart. A missing item is not an error.
// Names are matched after trimming surrounding space, as AddItem stores them.
func (cs *CartService) RemoveItem(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	next := cs.cart.Clone()
	if i := next.Find(name); i >= 0 {
		next.Items = append(next.Items[:i], next.Items[i+1:]...)
	}

	if err := cs.commit(ctx, next); err != nil {
		cs.log.Errorf("CartService.RemoveItem - Error saving cart: %v", err)
		return err
	}
	cs.log.Infof("CartService.RemoveItem - Removed %s, cart has %d items", name, len(cs.cart.Items))
	return nil
}

// SetQuantity sets the quantity of name. Zero or less removes the item;
// an item that is not in the cart is left alone.
func (cs *CartService) SetQuantity(ctx context.Context, name string, quantity int) error {
	name = strings.TrimSpace(name)
	if quantity <= 0 {
		return cs.RemoveItem(ctx, name)
	}

	i := cs.cart.Find(name)
	if i < 0 {
		cs.log.Debugf("CartService.SetQuantity - %s not in cart", name)
		return nil
	}

	next := cs.cart.Clone()
	next.Items[i].Quantity = quantity
	if err := cs.commit(ctx, next); err != nil {
		cs.log.Errorf("CartService.SetQuantity - Error saving cart: %v", err)
		return err
	}
	cs.log.Infof("CartService.SetQuantity - %s quantity is now %d", name, quantity)
	return nil
}

// Clear empties the cart. The customer has to confirm first.
func (cs *CartService) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrClearNotConfirmed
	}
	if err := cs.commit(ctx, &models.Cart{Items: []models.CartItem{}}); err != nil {
		cs.log.Errorf("CartService.Clear - Error saving cart: %v", err)
		return err
	}
	cs.log.Info("CartService.Clear - Cart cleared")
	return nil
}

// Items returns a copy of the line items in cart order.
func (cs *CartService) Items() []models.CartItem {
	return cs.cart.Clone().Items
}

// Count returns the total number of units in the cart.
func (cs *CartService) Count() int {
	return cs.cart.TotalQuantity()
}

// Totals prices the cart with the flat default delivery fee.
func (cs *CartService) Totals() models.PriceBreakdown {
	return ComputeTotals(cs.cart.Items, DefaultDeliveryFee)
}

// Render projects the cart into its view.
func (cs *CartService) Render() CartView {
	return RenderCart(cs.cart.Items)
}
