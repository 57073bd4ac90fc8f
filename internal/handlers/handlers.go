package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"luxebites/internal/database"
	"luxebites/internal/models"
	"luxebites/internal/services"
)

const (
	sessionCookie    = "user_session"
	sessionCookieAge = 3600 * 24 * 30

	// EmptyCartNotice is shown on the menu when checkout is opened with an empty cart.
	EmptyCartNotice = "Your cart is empty. Please add items before checkout."
)

// Options tunes the per-session checkout processors and the session cookie.
type Options struct {
	ClearDelay time.Duration
	SessionTTL time.Duration
	Now        func() time.Time
	Random     services.Random
	Listeners  []services.OrderListener

	// SecureCookie marks the session cookie Secure; set when serving over TLS.
	SecureCookie bool
}

// Handler serves the storefront. Carts live in the session-scoped store; checkout
// processors are kept in memory per session because their state spans requests.
type Handler struct {
	store     database.Store
	catalog   *services.Catalog
	scheduler *services.ClearScheduler
	log       *zap.SugaredLogger
	opts      Options

	mu        sync.Mutex
	checkouts map[string]*services.CheckoutService
}

// NewHandler creates a Handler.
func NewHandler(store database.Store, catalog *services.Catalog, scheduler *services.ClearScheduler, log *zap.SugaredLogger, opts Options) *Handler {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		store:     store,
		catalog:   catalog,
		scheduler: scheduler,
		log:       log,
		opts:      opts,
		checkouts: map[string]*services.CheckoutService{},
	}
}

func generateSessionID() string {
	return uuid.New().String()
}

// session returns the caller's session id, minting a cookie on first contact.
func (h *Handler) session(c *gin.Context) string {
	sessionID, _ := c.Cookie(sessionCookie)
	if sessionID == "" {
		sessionID = generateSessionID()
		c.SetCookie(sessionCookie, sessionID, sessionCookieAge, "/", "", h.opts.SecureCookie, true)
		h.log.Debugf("Handler.session - Created new session ID: %s", sessionID)
	}
	return sessionID
}

func (h *Handler) sessionStore(sessionID string) database.Store {
	return database.Scoped(h.store, sessionID)
}

func (h *Handler) cartFor(c *gin.Context) (*services.CartService, bool) {
	sessionID := h.session(c)
	cart, err := services.NewCartService(c.Request.Context(), h.sessionStore(sessionID), h.log)
	if err != nil {
		h.log.Errorf("Handler.cartFor - Error loading cart for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not load your cart"})
		return nil, false
	}
	return cart, true
}

// checkoutFor returns the session's checkout processor. A processor whose order has
// been placed is replaced when fresh is set, so reopening checkout starts over.
func (h *Handler) checkoutFor(sessionID string, fresh bool) *services.CheckoutService {
	h.mu.Lock()
	defer h.mu.Unlock()

	co, ok := h.checkouts[sessionID]
	if ok && !(fresh && co.State() == services.StateConfirmed) {
		return co
	}
	co = services.NewCheckoutService(h.sessionStore(sessionID), h.log, services.CheckoutOptions{
		ClearDelay: h.opts.ClearDelay,
		Now:        h.opts.Now,
		Random:     h.opts.Random,
		Scheduler:  h.scheduler,
		Listeners:  h.opts.Listeners,
	})
	h.checkouts[sessionID] = co
	return co
}

// ActiveCheckouts returns the number of sessions holding a checkout processor.
func (h *Handler) ActiveCheckouts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.checkouts)
}

// CleanupIdleCheckouts drops checkout processors idle for longer than the session TTL.
// Scheduled cart clears of dropped processors still run.
func (h *Handler) CleanupIdleCheckouts() {
	cutoff := h.opts.Now().Add(-h.opts.SessionTTL)

	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, co := range h.checkouts {
		if co.LastActive().Before(cutoff) {
			delete(h.checkouts, sessionID)
			h.log.Debugf("Handler.CleanupIdleCheckouts - Dropped idle checkout for session %s", sessionID)
		}
	}
}

// RunCleanup sweeps idle checkouts every interval until ctx is done.
func (h *Handler) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.CleanupIdleCheckouts()
		}
	}
}

func wantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

// reply answers a form post. Browsers are sent back to page with notice shown
// there; API clients get body as JSON with code.
func reply(c *gin.Context, code int, page, notice string, body gin.H) {
	if wantsHTML(c) {
		target := page
		if notice != "" {
			target += "?notice=" + url.QueryEscape(notice)
		}
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	c.JSON(code, body)
}

func fail(c *gin.Context, code int, page, message string) {
	reply(c, code, page, message, gin.H{"success": false, "error": message})
}

// quantityField accepts a quantity sent as a JSON number or string.
type quantityField string

// UnmarshalJSON keeps the raw text of numbers and the value of strings.
func (q *quantityField) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*q = quantityField(s)
		return nil
	}
	*q = quantityField(strings.TrimSpace(string(b)))
	return nil
}

// Health answers liveness probes.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Menu ---

// MenuPage lists the menu, optionally filtered by ?category=.
func (h *Handler) MenuPage(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.DefaultQuery("category", models.CategoryAll)))
	items := h.catalog.Filter(category)
	notice := c.Query("notice")

	if wantsHTML(c) {
		c.HTML(http.StatusOK, "menu.html", gin.H{
			"title":      "Menu",
			"category":   category,
			"categories": h.catalog.Categories(),
			"items":      items,
			"notice":     notice,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"category":   category,
		"categories": h.catalog.Categories(),
		"items":      items,
		"notice":     notice,
	})
}

// --- Cart ---

// CartPage renders the cart panel.
func (h *Handler) CartPage(c *gin.Context) {
	cart, ok := h.cartFor(c)
	if !ok {
		return
	}
	view := cart.Render()

	if wantsHTML(c) {
		c.HTML(http.StatusOK, "cart.html", gin.H{
			"title":  "Cart",
			"cart":   view,
			"notice": c.Query("notice"),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": view})
}

// AddToCart adds a menu item at its menu price.
func (h *Handler) AddToCart(c *gin.Context) {
	var req struct {
		Name     string        `json:"name" form:"name"`
		Quantity quantityField `json:"quantity" form:"quantity"`
	}
	if err := c.ShouldBind(&req); err != nil {
		h.log.Infof("AddToCart - Bind error: %v", err)
		fail(c, http.StatusBadRequest, "/menu", "Invalid request")
		return
	}

	item, found := h.catalog.Lookup(strings.TrimSpace(req.Name))
	if !found {
		h.log.Infof("AddToCart - Menu item not found: %q", req.Name)
		fail(c, http.StatusNotFound, "/menu", "Menu item not found")
		return
	}

	cart, ok := h.cartFor(c)
	if !ok {
		return
	}
	message, err := cart.AddItem(c.Request.Context(), item.Name, item.Price, services.ParseQuantity(string(req.Quantity)))
	if err != nil {
		h.log.Errorf("AddToCart - Error adding to cart: %v", err)
		h.cartError(c, "/menu", err)
		return
	}

	reply(c, http.StatusOK, "/menu", message, gin.H{"success": true, "message": message, "count": cart.Count(), "cart": cart.Render()})
}

// UpdateCartItem sets the quantity of a cart line; zero or less removes it.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req struct {
		Name     string        `json:"name" form:"name"`
		Quantity quantityField `json:"quantity" form:"quantity"`
	}
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "/cart", "Invalid request")
		return
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(string(req.Quantity)))
	if err != nil {
		fail(c, http.StatusBadRequest, "/cart", "Invalid quantity")
		return
	}

	cart, ok := h.cartFor(c)
	if !ok {
		return
	}
	if err := cart.SetQuantity(c.Request.Context(), req.Name, quantity); err != nil {
		h.cartError(c, "/cart", err)
		return
	}

	reply(c, http.StatusOK, "/cart", "", gin.H{"success": true, "message": "Cart updated", "count": cart.Count(), "cart": cart.Render()})
}

// RemoveFromCart deletes a cart line.
func (h *Handler) RemoveFromCart(c *gin.Context) {
	var req struct {
		Name string `json:"name" form:"name"`
	}
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "/cart", "Invalid request")
		return
	}

	cart, ok := h.cartFor(c)
	if !ok {
		return
	}
	if err := cart.RemoveItem(c.Request.Context(), req.Name); err != nil {
		h.cartError(c, "/cart", err)
		return
	}

	reply(c, http.StatusOK, "/cart", "Item removed from cart", gin.H{"success": true, "message": "Item removed from cart", "count": cart.Count(), "cart": cart.Render()})
}

// ClearCart empties the cart once the customer has confirmed.
func (h *Handler) ClearCart(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm" form:"confirm"`
	}
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "/cart", "Invalid request")
		return
	}

	cart, ok := h.cartFor(c)
	if !ok {
		return
	}
	if err := cart.Clear(c.Request.Context(), req.Confirm); err != nil {
		h.cartError(c, "/cart", err)
		return
	}

	reply(c, http.StatusOK, "/cart", "Cart cleared", gin.H{"success": true, "message": "Cart cleared", "count": 0, "cart": cart.Render()})
}

// GetCartCount returns the number of units in the cart.
func (h *Handler) GetCartCount(c *gin.Context) {
	sessionID, _ := c.Cookie(sessionCookie)
	if sessionID == "" {
		c.JSON(http.StatusOK, gin.H{"count": 0})
		return
	}

	cart, ok := h.cartFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": cart.Count()})
}

func (h *Handler) cartError(c *gin.Context, page string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidItem):
		fail(c, http.StatusBadRequest, page, "Invalid cart item")
	case errors.Is(err, services.ErrClearNotConfirmed):
		fail(c, http.StatusConflict, page, "Please confirm clearing your cart")
	default:
		fail(c, http.StatusInternalServerError, page, "Could not update your cart")
	}
}

// --- Checkout ---

// CheckoutPage opens checkout. An empty cart sends the customer back to the menu.
func (h *Handler) CheckoutPage(c *gin.Context) {
	sessionID := h.session(c)
	co := h.checkoutFor(sessionID, true)

	view, err := co.Initialize(c.Request.Context())
	if errors.Is(err, services.ErrEmptyCart) {
		h.log.Infof("CheckoutPage - Empty cart for session: %s", sessionID)
		fail(c, http.StatusConflict, "/menu", EmptyCartNotice)
		return
	}
	if err != nil {
		h.log.Errorf("CheckoutPage - Error loading checkout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not load checkout"})
		return
	}

	if wantsHTML(c) {
		c.HTML(http.StatusOK, "checkout.html", gin.H{
			"title":    "Checkout",
			"checkout": view,
			"notice":   c.Query("notice"),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "checkout": view})
}

// ChangeDeliveryType selects a delivery option and reprices the checkout.
func (h *Handler) ChangeDeliveryType(c *gin.Context) {
	var req struct {
		DeliveryType string `json:"deliveryType" form:"deliveryType"`
	}
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "/checkout", "Invalid request")
		return
	}
	option, err := models.ParseDeliveryOption(req.DeliveryType)
	if err != nil {
		fail(c, http.StatusBadRequest, "/checkout", "Unknown delivery option")
		return
	}

	co := h.checkoutFor(h.session(c), false)
	view, err := co.OnDeliveryTypeChange(c.Request.Context(), option)
	if err != nil {
		h.log.Errorf("ChangeDeliveryType - Error pricing checkout: %v", err)
		fail(c, http.StatusInternalServerError, "/checkout", "Could not update delivery option")
		return
	}
	reply(c, http.StatusOK, "/checkout", "", gin.H{"success": true, "checkout": view})
}

// HandleCheckout places the order. A blank delivery type keeps the option
// selected earlier in this checkout.
func (h *Handler) HandleCheckout(c *gin.Context) {
	sessionID := h.session(c)

	var form models.CustomerDetails
	if err := c.ShouldBind(&form); err != nil {
		h.log.Infof("HandleCheckout - Form bind error: %v", err)
		fail(c, http.StatusBadRequest, "/checkout", "Invalid form data")
		return
	}
	if strings.TrimSpace(string(form.DeliveryType)) == "" {
		form.DeliveryType = ""
	} else {
		option, err := models.ParseDeliveryOption(string(form.DeliveryType))
		if err != nil {
			fail(c, http.StatusBadRequest, "/checkout", "Unknown delivery option")
			return
		}
		form.DeliveryType = option
	}

	co := h.checkoutFor(sessionID, false)
	confirmation, err := co.Submit(c.Request.Context(), form)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			reply(c, http.StatusBadRequest, "/checkout", ve.Message, gin.H{"success": false, "error": ve.Message, "field": ve.Field})
		case errors.Is(err, services.ErrEmptyCart):
			fail(c, http.StatusConflict, "/menu", EmptyCartNotice)
		case errors.Is(err, services.ErrCheckoutComplete):
			fail(c, http.StatusConflict, "/menu", "This order has already been placed")
		default:
			h.log.Errorf("HandleCheckout - Error placing order for session %s: %v", sessionID, err)
			fail(c, http.StatusInternalServerError, "/checkout", "Could not place your order")
		}
		return
	}

	h.log.Infof("HandleCheckout - Order %s placed for session %s", confirmation.OrderNumber, sessionID)
	if wantsHTML(c) {
		c.HTML(http.StatusOK, "confirmation.html", confirmation)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Order placed successfully",
		"confirmation": confirmation,
		"total":        services.FormatPrice(confirmation.Total),
	})
}

// DismissConfirmation hides the order confirmation. The cart is still cleared on schedule.
func (h *Handler) DismissConfirmation(c *gin.Context) {
	co := h.checkoutFor(h.session(c), false)
	co.DismissConfirmation()
	reply(c, http.StatusOK, "/menu", "", gin.H{"success": true})
}
