package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with every storefront route.
func NewRouter(h *Handler) (*gin.Engine, error) {
	renderer, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/menu")
	})
	r.GET("/healthz", h.Health)
	r.GET("/menu", h.MenuPage)

	r.GET("/cart", h.CartPage)
	r.POST("/cart/add", h.AddToCart)
	r.POST("/cart/update", h.UpdateCartItem)
	r.POST("/cart/remove", h.RemoveFromCart)
	r.POST("/cart/clear", h.ClearCart)
	r.GET("/cart/count", h.GetCartCount)

	r.GET("/checkout", h.CheckoutPage)
	r.POST("/checkout/delivery-type", h.ChangeDeliveryType)
	r.POST("/checkout", h.HandleCheckout)
	r.POST("/checkout/dismiss", h.DismissConfirmation)

	return r, nil
}
