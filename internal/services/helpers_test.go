package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"luxebites/internal/database"
	"luxebites/internal/models"
)

var testLog = zap.NewNop().Sugar()

// fixedRandom always returns the same value, capped to the requested range.
type fixedRandom int

func (f fixedRandom) Intn(n int) int {
	return int(f) % n
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var errStoreDown = errors.New("store down")

// failingStore fails every write.
type failingStore struct {
	database.Store
}

func (failingStore) Set(context.Context, string, string) error { return errStoreDown }
func (failingStore) Remove(context.Context, string) error      { return errStoreDown }

// recordingListener remembers the orders it was told about.
type recordingListener struct {
	orders []*models.Order
	err    error
}

func (r *recordingListener) OrderPlaced(_ context.Context, order *models.Order) error {
	r.orders = append(r.orders, order)
	return r.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func validDetails() models.CustomerDetails {
	return models.CustomerDetails{
		FullName:      "Ama Mensah",
		Phone:         "024 555 1234",
		Email:         "ama@example.com",
		Address:       "12 Oxford Street",
		City:          "Accra",
		Area:          "Osu",
		DeliveryType:  models.DeliveryStandard,
		PaymentMethod: "cash",
	}
}
