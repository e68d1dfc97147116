package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartTotals(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{ID: 1, Quantity: 2, Product: Product{Name: "Keychain", Price: decimal.RequireFromString("4.50")}},
		{ID: 2, Quantity: 1, Product: Product{Name: "Frame", Price: decimal.RequireFromString("19.99")}},
	}}

	assert.Equal(t, 3, cart.TotalItems())
	assert.True(t, cart.TotalPrice().Equal(decimal.RequireFromString("28.99")))

	view := cart.View()
	assert.Len(t, view.Items, 2)
	assert.True(t, view.Items[0].Subtotal.Equal(decimal.RequireFromString("9")))
	assert.Equal(t, "Frame", view.Items[1].Name)
}

func TestEmptyCartView(t *testing.T) {
	view := Cart{ID: 7}.View()
	assert.NotNil(t, view.Items)
	assert.Equal(t, 0, view.TotalItems)
	assert.True(t, view.TotalPrice.IsZero())
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Valid())
	assert.False(t, OrderStatus("Lost").Valid())
}
