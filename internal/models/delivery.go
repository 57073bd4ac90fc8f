package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DeliveryOption is the delivery mode picked at checkout.
type DeliveryOption string

const (
	DeliveryStandard  DeliveryOption = "standard"
	DeliveryExpress   DeliveryOption = "express"
	DeliveryScheduled DeliveryOption = "scheduled"
)

var ErrUnknownDeliveryOption = errors.New("unknown delivery option")

var deliveryFees = map[DeliveryOption]decimal.Decimal{
	DeliveryStandard:  decimal.NewFromInt(10),
	DeliveryExpress:   decimal.NewFromInt(25),
	DeliveryScheduled: decimal.NewFromInt(15),
}

// ParseDeliveryOption maps form input to an option. Blank input selects standard.
func ParseDeliveryOption(s string) (DeliveryOption, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DeliveryStandard, nil
	}
	option := DeliveryOption(s)
	if _, ok := deliveryFees[option]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDeliveryOption, s)
	}
	return option, nil
}

// Fee returns the fixed delivery fee of the option. Unknown options cost the standard fee.
func (o DeliveryOption) Fee() decimal.Decimal {
	if fee, ok := deliveryFees[o]; ok {
		return fee
	}
	return deliveryFees[DeliveryStandard]
}

// RequiresScheduledTime reports whether the customer has to pick a delivery time.
func (o DeliveryOption) RequiresScheduledTime() bool {
	return o == DeliveryScheduled
}
