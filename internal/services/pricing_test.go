package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"luxebites/internal/models"
)

func TestComputeTotals_JollofAndWings(t *testing.T) {
	items := []models.CartItem{
		{Name: "Jollof Rice", Price: price("25.00"), Quantity: 2},
		{Name: "Chicken Wings", Price: price("18.50"), Quantity: 1},
	}

	totals := ComputeTotals(items, models.DeliveryStandard.Fee())

	assert.True(t, totals.Subtotal.Equal(price("68.50")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(price("10.28")), "tax %s", totals.Tax)
	assert.True(t, totals.DeliveryFee.Equal(price("10")), "fee %s", totals.DeliveryFee)
	assert.True(t, totals.Total.Equal(price("88.78")), "total %s", totals.Total)
	assert.Equal(t, "GH₵88.78", FormatPrice(totals.Total))
}

func TestComputeTotals_TotalIsSumOfParts(t *testing.T) {
	subtotals := []string{"0", "0.01", "0.03", "1.10", "33.33", "68.50", "999.99", "12345.67"}
	for _, s := range subtotals {
		items := []models.CartItem{{Name: "x", Price: price(s), Quantity: 1}}
		for _, option := range []models.DeliveryOption{models.DeliveryStandard, models.DeliveryExpress, models.DeliveryScheduled} {
			totals := ComputeTotals(items, option.Fee())
			assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Tax).Add(totals.DeliveryFee)), "subtotal %s", s)
			assert.True(t, totals.Tax.Equal(totals.Subtotal.Mul(TaxRate).Round(2)), "subtotal %s", s)
		}
	}
}

func TestComputeTotals_Idempotent(t *testing.T) {
	items := []models.CartItem{{Name: "Kelewele", Price: price("12.00"), Quantity: 3}}
	first := ComputeTotals(items, DefaultDeliveryFee)
	second := ComputeTotals(items, DefaultDeliveryFee)
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.DeliveryFee.Equal(second.DeliveryFee))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, DefaultDeliveryFee)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(10)))
}

func TestDeliveryFees(t *testing.T) {
	assert.True(t, models.DeliveryStandard.Fee().Equal(price("10")))
	assert.True(t, models.DeliveryExpress.Fee().Equal(price("25")))
	assert.True(t, models.DeliveryScheduled.Fee().Equal(price("15")))
}
