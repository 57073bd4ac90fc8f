package services

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrClearNotConfirmed = errors.New("clearing the cart needs confirmation")
	ErrCheckoutComplete  = errors.New("order already placed for this checkout")
	ErrInvalidItem       = errors.New("invalid cart item")
)

// ValidationError is the first checkout field check that failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
