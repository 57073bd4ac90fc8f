package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"luxebites/internal/database"
	"luxebites/internal/models"
)

// DefaultClearDelay is how long a placed order's cart survives before it is removed.
const DefaultClearDelay = 2 * time.Second

// CheckoutState is where a checkout is in its lifecycle.
type CheckoutState int

const (
	StateCollecting CheckoutState = iota
	StateValidating
	StateConfirmed
)

func (s CheckoutState) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateValidating:
		return "validating"
	case StateConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// OrderListener is told about every order once it has been stored.
type OrderListener interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
}

// CheckoutOptions tunes a CheckoutService. Zero values fall back to defaults.
type CheckoutOptions struct {
	ClearDelay time.Duration
	Now        func() time.Time
	Random     Random
	Scheduler  *ClearScheduler
	Listeners  []OrderListener
}

// CheckoutService drives one session's checkout: it reads the persisted cart,
// validates the form, stores the order and schedules the cart for clearing.
// It never changes line items itself.
type CheckoutService struct {
	mu    sync.Mutex
	store database.Store
	log   *zap.SugaredLogger
	opts  CheckoutOptions

	state               CheckoutState
	deliveryType        models.DeliveryOption
	confirmation        *models.Confirmation
	confirmationVisible bool
	clearTask           *Task
	lastActive          time.Time
}

// NewCheckoutService creates a checkout in the collecting state with standard delivery.
func NewCheckoutService(store database.Store, log *zap.SugaredLogger, opts CheckoutOptions) *CheckoutService {
	if opts.ClearDelay <= 0 {
		opts.ClearDelay = DefaultClearDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Random == nil {
		opts.Random = globalRandom{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewClearScheduler(log)
	}
	return &CheckoutService{
		store:        store,
		log:          log,
		opts:         opts,
		state:        StateCollecting,
		deliveryType: models.DeliveryStandard,
		lastActive:   opts.Now(),
	}
}

func (cs *CheckoutService) touch() {
	cs.lastActive = cs.opts.Now()
}

// Initialize loads the cart and returns the summary for the selected delivery
// option. An empty cart aborts the checkout with ErrEmptyCart.
func (cs *CheckoutService) Initialize(ctx context.Context) (*CheckoutView, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.touch()

	cart, err := LoadCart(ctx, cs.store, cs.log)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		cs.log.Info("CheckoutService.Initialize - Empty cart, aborting checkout")
		return nil, ErrEmptyCart
	}

	view := RenderCheckout(cart.Items, cs.deliveryType)
	return &view, nil
}

// OnDeliveryTypeChange selects option and reprices the cart with its fee.
func (cs *CheckoutService) OnDeliveryTypeChange(ctx context.Context, option models.DeliveryOption) (*CheckoutView, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.touch()

	cs.deliveryType = option
	cart, err := LoadCart(ctx, cs.store, cs.log)
	if err != nil {
		return nil, err
	}
	view := RenderCheckout(cart.Items, option)
	return &view, nil
}

// Validate checks the form without changing anything.
func (cs *CheckoutService) Validate(details models.CustomerDetails) error {
	return ValidateCustomerDetails(details)
}

// Submit places the order. On a validation failure the checkout goes back to
// collecting and nothing is stored. On success the order is written to the
// last-order slot and the cart is removed after the clear delay.
func (cs *CheckoutService) Submit(ctx context.Context, details models.CustomerDetails) (*models.Confirmation, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.touch()

	if cs.state == StateConfirmed {
		return nil, ErrCheckoutComplete
	}

	cs.state = StateValidating
	if details.DeliveryType == "" {
		details.DeliveryType = cs.deliveryType
	}
	if err := ValidateCustomerDetails(details); err != nil {
		cs.log.Infof("CheckoutService.Submit - Validation failed: %v", err)
		cs.state = StateCollecting
		return nil, err
	}

	order, err := cs.placeOrder(ctx, details)
	if err != nil {
		cs.state = StateCollecting
		return nil, err
	}

	for _, listener := range cs.opts.Listeners {
		if err := listener.OrderPlaced(ctx, order); err != nil {
			cs.log.Warnf("CheckoutService.Submit - Listener error for order %s: %v", order.OrderNumber, err)
		}
	}

	cs.state = StateConfirmed
	cs.deliveryType = details.DeliveryType
	cs.confirmation = &models.Confirmation{
		OrderNumber:       order.OrderNumber,
		Address:           details.DeliveryAddress(),
		EstimatedDelivery: order.EstimatedDelivery,
		Total:             order.Total,
	}
	cs.confirmationVisible = true
	cs.clearTask = cs.opts.Scheduler.Schedule(cs.opts.ClearDelay, cs.clearCart)

	cs.log.Infof("CheckoutService.Submit - Order placed: %s, total %s", order.OrderNumber, FormatPrice(order.Total))
	confirmation := *cs.confirmation
	return &confirmation, nil
}

func (cs *CheckoutService) placeOrder(ctx context.Context, details models.CustomerDetails) (*models.Order, error) {
	cart, err := LoadCart(ctx, cs.store, cs.log)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		cs.log.Info("CheckoutService.Submit - Empty cart, nothing to order")
		return nil, ErrEmptyCart
	}

	now := cs.opts.Now()
	breakdown := ComputeTotals(cart.Items, details.DeliveryType.Fee())
	order := &models.Order{
		OrderNumber:       GenerateOrderNumber(now, cs.opts.Random),
		OrderDate:         now,
		Customer:          details,
		Items:             cart.Clone().Items,
		Subtotal:          breakdown.Subtotal,
		Tax:               breakdown.Tax,
		DeliveryFee:       breakdown.DeliveryFee,
		Total:             breakdown.Total,
		EstimatedDelivery: EstimateDeliveryTime(details.DeliveryType, details.ScheduledTime, now, cs.opts.Random),
	}

	data, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}
	if err := cs.store.Set(ctx, database.LastOrderKey, string(data)); err != nil {
		cs.log.Errorf("CheckoutService.Submit - Error saving order: %v", err)
		return nil, fmt.Errorf("save order: %w", err)
	}
	return order, nil
}

// clearCart runs on the scheduler after the clear delay.
func (cs *CheckoutService) clearCart() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cs.store.Remove(ctx, database.CartKey); err != nil {
		cs.log.Warnf("CheckoutService.clearCart - Error removing cart: %v", err)
		return
	}
	cs.log.Debug("CheckoutService.clearCart - Cart removed")
}

// DismissConfirmation hides the confirmation. A scheduled clear still happens.
func (cs *CheckoutService) DismissConfirmation() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.touch()
	cs.confirmationVisible = false
}

// State returns the current lifecycle state.
func (cs *CheckoutService) State() CheckoutState {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state
}

// DeliveryType returns the selected delivery option.
func (cs *CheckoutService) DeliveryType() models.DeliveryOption {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.deliveryType
}

// Confirmation returns the placed order's confirmation and whether it is still shown.
func (cs *CheckoutService) Confirmation() (*models.Confirmation, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.confirmation == nil {
		return nil, false
	}
	c := *cs.confirmation
	return &c, cs.confirmationVisible
}

// LastActive is when the checkout last handled a call.
func (cs *CheckoutService) LastActive() time.Time {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.lastActive
}

// LoadLastOrder reads the last placed order of a session.
func LoadLastOrder(ctx context.Context, store database.Store) (*models.Order, error) {
	raw, err := store.Get(ctx, database.LastOrderKey)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

// IsValidationError reports whether err came from the form checks.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PendingClear returns the scheduled cart clear of the placed order, or nil.
func (cs *CheckoutService) PendingClear() *Task {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.clearTask
}
