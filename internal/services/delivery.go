package services

import (
	"fmt"
	"math/rand"
	"time"

	"luxebites/internal/models"
)

// DeliveryTimeLayout is the hour:minute with meridiem shown on the confirmation.
const DeliveryTimeLayout = "03:04 PM"

// Random is the part of *rand.Rand the checkout needs.
type Random interface {
	Intn(n int) int
}

type globalRandom struct{}

func (globalRandom) Intn(n int) int { return rand.Intn(n) }

// GenerateOrderNumber returns "#LB" followed by the low six digits of the Unix
// millisecond clock and a random three-digit suffix. It is a display identifier
// and two orders may share one.
func GenerateOrderNumber(now time.Time, r Random) string {
	return fmt.Sprintf("#LB%06d%03d", now.UnixMilli()%1_000_000, r.Intn(1000))
}

// EstimateDeliveryTime returns when the order should arrive. Standard delivery
// lands 1 or 2 whole hours from now, express 30 to 44 minutes from now, and a
// scheduled delivery at the time the customer picked.
func EstimateDeliveryTime(option models.DeliveryOption, scheduledTime string, now time.Time, r Random) string {
	switch option {
	case models.DeliveryExpress:
		minutes := r.Intn(15) + 30
		return now.Add(time.Duration(minutes) * time.Minute).Format(DeliveryTimeLayout)
	case models.DeliveryScheduled:
		return scheduledTime
	default:
		hours := r.Intn(2) + 1
		return now.Add(time.Duration(hours) * time.Hour).Format(DeliveryTimeLayout)
	}
}
