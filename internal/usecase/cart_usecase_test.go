package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSession = "s-1"

func newCartUC(state *fakeState, api *fakeStoreAPI) *CartUseCase {
	return NewCartUC(state, state, api, logger.Nop{})
}

func TestClearCart_Idempotent(t *testing.T) {
	state := newFakeState()
	state.put(testSession, StateKeyCart, domain.ApplyCartAction(domain.Cart{}, domain.AddCartItem(domain.NewCartItem(keyboard(), 2))))
	uc := newCartUC(state, newFakeStoreAPI())
	ctx := callerCtx(testSession)

	first := uc.ClearCart(ctx)
	require.True(t, first.Success, first.Message)
	assert.Zero(t, first.CartItemsCount)
	assert.Len(t, state.dispatched, 1)

	second := uc.ClearCart(ctx)
	require.True(t, second.Success, second.Message)
	assert.Zero(t, second.CartItemsCount)
	assert.Equal(t, "Cart is already empty", second.Message)
	assert.Len(t, state.dispatched, 1)
}

func TestGetCartContents(t *testing.T) {
	state := newFakeState()
	uc := newCartUC(state, newFakeStoreAPI())
	ctx := callerCtx(testSession)

	res := uc.GetCartContents(ctx)
	require.True(t, res.Success)
	assert.Equal(t, "Cart is empty", res.Message)
	assert.NotNil(t, res.Items)

	state.records[testSession+"/"+StateKeyCart] = []byte(`{"cartItems": [`)
	res = uc.GetCartContents(ctx)
	require.True(t, res.Success)
	assert.Equal(t, "Cart is empty", res.Message)

	mouse := domain.Product{ID: "m", Name: "Mouse", Price: 19.99, CountInStock: 10}
	cart := domain.ApplyCartAction(domain.Cart{}, domain.AddCartItem(domain.NewCartItem(mouse, 2)))
	cart = domain.ApplyCartAction(cart, domain.AddCartItem(domain.NewCartItem(keyboard(), 1)))
	state.put(testSession, StateKeyCart, cart)

	res = uc.GetCartContents(ctx)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 2, res.CartItemsCount)
	assert.Equal(t, 3, res.TotalQuantity)
	assert.Equal(t, 89.97, res.Subtotal)
	assert.Equal(t, 10.0, res.ShippingPrice)
	assert.Equal(t, 13.5, res.TaxPrice)
	assert.Equal(t, 113.47, res.TotalPrice)
	assert.Equal(t, 39.98, res.Items[0].LineTotal)
}

func TestGetCartContents_RequiresSession(t *testing.T) {
	res := newCartUC(newFakeState(), newFakeStoreAPI()).GetCartContents(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, e.KindValidation, res.Kind)
	assert.NotNil(t, res.Items)
}

func TestAddToCart(t *testing.T) {
	state := newFakeState()
	uc := newCartUC(state, newFakeStoreAPI(keyboard()))
	ctx := callerCtx(testSession)

	res := uc.AddToCart(ctx, &AddToCartReq{ProductID: "p1"})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1, res.Item.Qty)
	assert.Equal(t, 1, res.CartItemsCount)

	res = uc.AddToCart(ctx, &AddToCartReq{ProductID: "p1", Quantity: ptr(3)})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1, res.CartItemsCount)
	assert.Equal(t, 149.97, res.Subtotal)

	res = uc.AddToCart(ctx, &AddToCartReq{ProductID: "p1", Quantity: ptr(4)})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, e.ErrInsufficientStock.Error())
	assert.Equal(t, e.KindValidation, res.Kind)

	res = uc.AddToCart(ctx, &AddToCartReq{ProductID: "p1", Quantity: ptr(0)})
	assert.False(t, res.Success)
	assert.Equal(t, e.KindValidation, res.Kind)

	assert.Len(t, state.dispatched, 2)
}

func TestRemoveFromCart(t *testing.T) {
	state := newFakeState()
	state.put(testSession, StateKeyCart, domain.ApplyCartAction(domain.Cart{}, domain.AddCartItem(domain.NewCartItem(keyboard(), 2))))
	uc := newCartUC(state, newFakeStoreAPI())
	ctx := callerCtx(testSession)

	res := uc.RemoveFromCart(ctx, &RemoveFromCartReq{ProductID: "other"})
	assert.False(t, res.Success)
	assert.Equal(t, e.KindNotFound, res.Kind)

	res = uc.RemoveFromCart(ctx, &RemoveFromCartReq{ProductID: "p1"})
	require.True(t, res.Success, res.Message)
	assert.Zero(t, res.CartItemsCount)
	assert.Equal(t, "Keyboard", res.Item.Name)
}
