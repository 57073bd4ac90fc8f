package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxebites/internal/database"
	"luxebites/internal/models"
)

func newTestCart(t *testing.T, store database.Store) *CartService {
	t.Helper()
	cs, err := NewCartService(context.Background(), store, testLog)
	require.NoError(t, err)
	return cs
}

func TestAddItem_OneLinePerName(t *testing.T) {
	ctx := context.Background()
	cs := newTestCart(t, database.NewMemoryStore())

	adds := []struct {
		name string
		qty  int
	}{
		{"Jollof Rice", 2}, {"Chicken Wings", 1}, {"Jollof Rice", 3}, {"Sobolo", 1}, {"Chicken Wings", 4},
	}
	for _, a := range adds {
		_, err := cs.AddItem(ctx, a.name, price("10"), a.qty)
		require.NoError(t, err)
	}

	items := cs.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Jollof Rice", items[0].Name)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "Chicken Wings", items[1].Name)
	assert.Equal(t, 5, items[1].Quantity)
	assert.Equal(t, "Sobolo", items[2].Name)
	assert.Equal(t, 1, items[2].Quantity)
	assert.Equal(t, 11, cs.Count())
}

func TestAddItem_Acknowledges(t *testing.T) {
	cs := newTestCart(t, database.NewMemoryStore())
	ack, err := cs.AddItem(context.Background(), "Kelewele", price("12"), 1)
	require.NoError(t, err)
	assert.Equal(t, "Kelewele added to cart!", ack)
}

func TestAddItem_CoercesQuantity(t *testing.T) {
	ctx := context.Background()
	cs := newTestCart(t, database.NewMemoryStore())

	_, err := cs.AddItem(ctx, "Waakye", price("20"), 0)
	require.NoError(t, err)
	_, err = cs.AddItem(ctx, "Waakye", price("20"), -4)
	require.NoError(t, err)

	assert.Equal(t, 2, cs.Items()[0].Quantity)
}

func TestAddItem_RejectsBlankNameAndNegativePrice(t *testing.T) {
	ctx := context.Background()
	cs := newTestCart(t, database.NewMemoryStore())

	_, err := cs.AddItem(ctx, "  ", price("5"), 1)
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = cs.AddItem(ctx, "Bofrot", price("-1"), 1)
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = cs.AddItem(ctx, "Tap Water", price("0"), 1)
	assert.NoError(t, err)
	assert.Len(t, cs.Items(), 1)
}

func TestParseQuantity(t *testing.T) {
	tests := map[string]int{
		"3":   3,
		" 2 ": 2,
		"0":   1,
		"-5":  1,
		"abc": 1,
		"":    1,
		"1.5": 1,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseQuantity(raw), "raw %q", raw)
	}
}

func TestSetQuantity_NonPositiveRemoves(t *testing.T) {
	ctx := context.Background()
	for _, q := range []int{0, -1} {
		viaSet := newTestCart(t, database.NewMemoryStore())
		viaRemove := newTestCart(t, database.NewMemoryStore())
		for _, cs := range []*CartService{viaSet, viaRemove} {
			_, err := cs.AddItem(ctx, "Jollof Rice", price("25"), 2)
			require.NoError(t, err)
			_, err = cs.AddItem(ctx, "Sobolo", price("8"), 1)
			require.NoError(t, err)
		}

		require.NoError(t, viaSet.SetQuantity(ctx, "Jollof Rice", q))
		require.NoError(t, viaRemove.RemoveItem(ctx, "Jollof Rice"))

		assert.Equal(t, viaRemove.Items(), viaSet.Items())
		require.Len(t, viaSet.Items(), 1)
		assert.Equal(t, "Sobolo", viaSet.Items()[0].Name)
	}
}

func TestSetQuantity_UpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	cs := newTestCart(t, database.NewMemoryStore())
	_, _ = cs.AddItem(ctx, "Jollof Rice", price("25"), 1)
	_, _ = cs.AddItem(ctx, "Sobolo", price("8"), 1)

	require.NoError(t, cs.SetQuantity(ctx, "Jollof Rice", 4))
	require.NoError(t, cs.SetQuantity(ctx, "Missing", 4))

	items := cs.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Jollof Rice", items[0].Name)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestRemoveItem_MissingIsNoop(t *testing.T) {
	ctx := context.Background()
	cs := newTestCart(t, database.NewMemoryStore())
	_, _ = cs.AddItem(ctx, "Jollof Rice", price("25"), 1)

	require.NoError(t, cs.RemoveItem(ctx, "Waakye"))
	assert.Len(t, cs.Items(), 1)
}

func TestNamesMatchAfterTrimming(t *testing.T) {
	ctx := context.Background()
	cs := newTestCart(t, database.NewMemoryStore())

	_, err := cs.AddItem(ctx, " Kelewele ", price("12"), 1)
	require.NoError(t, err)
	require.NoError(t, cs.SetQuantity(ctx, "Kelewele  ", 3))
	require.Len(t, cs.Items(), 1)
	assert.Equal(t, "Kelewele", cs.Items()[0].Name)
	assert.Equal(t, 3, cs.Items()[0].Quantity)

	require.NoError(t, cs.RemoveItem(ctx, " Kelewele "))
	assert.Empty(t, cs.Items())
}

func TestClear_NeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	cs := newTestCart(t, store)
	_, _ = cs.AddItem(ctx, "Jollof Rice", price("25"), 1)

	assert.ErrorIs(t, cs.Clear(ctx, false), ErrClearNotConfirmed)
	assert.Len(t, cs.Items(), 1)

	require.NoError(t, cs.Clear(ctx, true))
	assert.Empty(t, cs.Items())

	raw, err := store.Get(ctx, database.CartKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestCart_RoundTripsThroughStore(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	cs := newTestCart(t, store)
	_, _ = cs.AddItem(ctx, "Jollof Rice", price("25.00"), 2)
	_, _ = cs.AddItem(ctx, "Chicken Wings", price("18.50"), 1)
	_, _ = cs.AddItem(ctx, "Bofrot", price("6.50"), 3)

	reloaded := newTestCart(t, store)
	want := cs.Items()
	got := reloaded.Items()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].Price.Equal(got[i].Price), "price of %s", want[i].Name)
	}
}

func TestLoadCart_ReadsBrowserShapedJSON(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	require.NoError(t, store.Set(ctx, database.CartKey, `[{"name":"Jollof Rice","price":25,"quantity":2}]`))

	cart, err := LoadCart(ctx, store, testLog)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Price.Equal(price("25")))
}

func TestLoadCart_UnreadableIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	require.NoError(t, store.Set(ctx, database.CartKey, `{oops`))

	cart, err := LoadCart(ctx, store, testLog)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCart_FailedWriteKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	cs := newTestCart(t, database.NewMemoryStore())
	_, err := cs.AddItem(ctx, "Jollof Rice", price("25"), 1)
	require.NoError(t, err)

	cs.store = failingStore{Store: cs.store}
	_, err = cs.AddItem(ctx, "Jollof Rice", price("25"), 1)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 1, cs.Items()[0].Quantity)
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	cs := newTestCart(t, database.NewMemoryStore())

	empty := cs.Render()
	assert.True(t, empty.Empty)
	assert.Equal(t, EmptyCartMessage, empty.EmptyMessage)
	assert.False(t, empty.ShowDeliveryFee)
	assert.Empty(t, empty.Rows)

	_, _ = cs.AddItem(ctx, "Jollof Rice", price("25"), 2)
	_, _ = cs.AddItem(ctx, "Chicken Wings", price("18.5"), 1)

	view := cs.Render()
	assert.False(t, view.Empty)
	assert.True(t, view.ShowDeliveryFee)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, CartRow{
		Name:        "Jollof Rice",
		UnitPrice:   "GH₵25.00",
		Quantity:    2,
		DecrementTo: 1,
		IncrementTo: 3,
		LineTotal:   "GH₵50.00",
	}, view.Rows[0])
	assert.Equal(t, "GH₵68.50", view.Subtotal)
	assert.Equal(t, "GH₵10.28", view.Tax)
	assert.Equal(t, "GH₵10.00", view.DeliveryFee)
	assert.Equal(t, "GH₵88.78", view.Total)
	assert.Equal(t, view, cs.Render())
}

func TestCatalogFilter(t *testing.T) {
	catalog := NewCatalog(DefaultMenu())

	assert.Len(t, catalog.Filter(models.CategoryAll), len(DefaultMenu()))
	for _, item := range catalog.Filter("drinks") {
		assert.Equal(t, "drinks", item.Category)
	}
	assert.Len(t, catalog.Filter("drinks"), 2)
	assert.Empty(t, catalog.Filter("soups"))
	assert.Equal(t, []string{"mains", "starters", "drinks", "desserts"}, catalog.Categories())

	item, ok := catalog.Lookup("Chicken Wings")
	require.True(t, ok)
	assert.True(t, item.Price.Equal(price("18.50")))
}
