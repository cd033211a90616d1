package converter

import (
	"testing"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_ToCart(t *testing.T) {
	conv := Converter{}

	assert.Empty(t, conv.ToCart(nil).CartItems)
	assert.NotNil(t, conv.ToCart(nil).CartItems)
	assert.Empty(t, conv.ToCart([]byte(`{"cartItems":`)).CartItems)
	assert.NotNil(t, conv.ToCart([]byte(`{}`)).CartItems)

	cart := domain.ApplyCartAction(domain.Cart{}, domain.AddCartItem(domain.NewCartItem(domain.Product{ID: "p1", Price: 20}, 2)))
	raw, err := conv.FromCart(&cart)
	require.NoError(t, err)

	got := conv.ToCart(raw)
	require.Len(t, got.CartItems, 1)
	assert.Equal(t, 2, got.CartItems[0].Qty)
	assert.True(t, cart.TotalPrice.Equal(got.TotalPrice))
}
