package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
)

// CartUseCase читает корзину сессии и отправляет действия над ней в диспетчер.
type CartUseCase struct {
	state      ClientStateRepository
	dispatcher CartDispatcher
	storeAPI   StoreAPI
	logger     logger.Logger
}

func NewCartUC(state ClientStateRepository, dispatcher CartDispatcher, storeAPI StoreAPI, logger logger.Logger) *CartUseCase {
	return &CartUseCase{
		state:      state,
		dispatcher: dispatcher,
		storeAPI:   storeAPI,
		logger:     logger,
	}
}

// GetCartContents возвращает содержимое корзины с итогами. Отсутствующая или испорченная запись
// означает пустую корзину.
func (c *CartUseCase) GetCartContents(ctx context.Context) *CartContentsResult {
	const (
		op     = "CartUseCase.GetCartContents"
		action = "Failed to get cart contents"
	)

	sid, err := sessionID(ctx)
	if err != nil {
		return FailedCartContents(action, err)
	}

	cart, err := c.load(ctx, sid)
	if err != nil {
		c.logger.Warnf("Failed to read cart of session %s: %v", sid, e.Wrap(op, err))
		return FailedCartContents(action, err)
	}

	if cart.IsEmpty() {
		return &CartContentsResult{Envelope: succeed("Cart is empty", nil), Items: []CartItemView{}}
	}

	totals := cart
	totals.Recalculate()

	items := make([]CartItemView, 0, len(cart.CartItems))
	for i := range cart.CartItems {
		items = append(items, newCartItemView(&cart.CartItems[i]))
	}

	return &CartContentsResult{
		Envelope: succeed(fmt.Sprintf("Cart has %d items (%d units), subtotal $%.2f",
			len(items), cart.ItemsCount(), money(totals.ItemsPrice)), cart),
		Items:          items,
		CartItemsCount: len(items),
		TotalQuantity:  cart.ItemsCount(),
		Subtotal:       money(totals.ItemsPrice),
		ShippingPrice:  money(totals.ShippingPrice),
		TaxPrice:       money(totals.TaxPrice),
		TotalPrice:     money(totals.TotalPrice),
	}
}

// AddToCart кладёт товар в корзину. Если товар уже есть, его количество заменяется.
func (c *CartUseCase) AddToCart(ctx context.Context, req *AddToCartReq) *CartUpdateResult {
	const (
		op     = "CartUseCase.AddToCart"
		action = "Failed to add to cart"
	)

	sid, err := sessionID(ctx)
	if err != nil {
		return FailedCartUpdate(action, err)
	}

	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		return FailedCartUpdate(action, e.ErrProductIDRequired)
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty <= 0 {
		return FailedCartUpdate(action, e.ErrQuantityNotPositive)
	}

	product, err := c.storeAPI.GetProduct(ctx, id)
	if err != nil {
		c.logger.Warnf("Failed to get product %s: %v", id, e.Wrap(op, err))
		return FailedCartUpdate(action, err)
	}

	if qty > product.CountInStock {
		return FailedCartUpdate(action, fmt.Errorf("%w: %q has %d left, requested %d",
			e.ErrInsufficientStock, product.Name, product.CountInStock, qty))
	}

	item := domain.NewCartItem(*product, qty)
	cart, err := c.dispatcher.Dispatch(ctx, sid, domain.AddCartItem(item))
	if err != nil {
		c.logger.Warnf("Failed to dispatch add to cart for session %s: %v", sid, e.Wrap(op, err))
		return FailedCartUpdate(action, err)
	}

	view := newCartItemView(&item)
	return &CartUpdateResult{
		Envelope:       succeed(fmt.Sprintf("Added %d x %q to cart", qty, product.Name), cart),
		Item:           &view,
		CartItemsCount: len(cart.CartItems),
		Subtotal:       money(cart.Subtotal()),
	}
}

// RemoveFromCart убирает позицию из корзины.
func (c *CartUseCase) RemoveFromCart(ctx context.Context, req *RemoveFromCartReq) *CartUpdateResult {
	const (
		op     = "CartUseCase.RemoveFromCart"
		action = "Failed to remove from cart"
	)

	sid, err := sessionID(ctx)
	if err != nil {
		return FailedCartUpdate(action, err)
	}

	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		return FailedCartUpdate(action, e.ErrProductIDRequired)
	}

	current, err := c.load(ctx, sid)
	if err != nil {
		c.logger.Warnf("Failed to read cart of session %s: %v", sid, e.Wrap(op, err))
		return FailedCartUpdate(action, err)
	}

	var removed *domain.CartItem
	for i := range current.CartItems {
		if current.CartItems[i].ID == id {
			removed = &current.CartItems[i]
			break
		}
	}
	if removed == nil {
		return FailedCartUpdate(action, fmt.Errorf("%w: product %s is not in the cart", e.ErrNotFound, id))
	}

	cart, err := c.dispatcher.Dispatch(ctx, sid, domain.RemoveCartItem(id))
	if err != nil {
		c.logger.Warnf("Failed to dispatch remove from cart for session %s: %v", sid, e.Wrap(op, err))
		return FailedCartUpdate(action, err)
	}

	view := newCartItemView(removed)
	return &CartUpdateResult{
		Envelope:       succeed(fmt.Sprintf("Removed %q from cart", removed.Name), cart),
		Item:           &view,
		CartItemsCount: len(cart.CartItems),
		Subtotal:       money(cart.Subtotal()),
	}
}

// ClearCart очищает корзину. Пустая корзина не трогается, повторный вызов безопасен.
func (c *CartUseCase) ClearCart(ctx context.Context) *CartUpdateResult {
	const (
		op     = "CartUseCase.ClearCart"
		action = "Failed to clear cart"
	)

	sid, err := sessionID(ctx)
	if err != nil {
		return FailedCartUpdate(action, err)
	}

	current, err := c.load(ctx, sid)
	if err != nil {
		c.logger.Warnf("Failed to read cart of session %s: %v", sid, e.Wrap(op, err))
		return FailedCartUpdate(action, err)
	}

	if current.IsEmpty() {
		return &CartUpdateResult{Envelope: succeed("Cart is already empty", nil)}
	}

	cart, err := c.dispatcher.Dispatch(ctx, sid, domain.ClearCart())
	if err != nil {
		c.logger.Warnf("Failed to dispatch clear cart for session %s: %v", sid, e.Wrap(op, err))
		return FailedCartUpdate(action, err)
	}

	return &CartUpdateResult{
		Envelope:       succeed(fmt.Sprintf("Cart cleared, %d items removed", len(current.CartItems)), cart),
		CartItemsCount: len(cart.CartItems),
		Subtotal:       money(cart.Subtotal()),
	}
}

// load возвращает пустую корзину, если записи нет или она не разбирается.
func (c *CartUseCase) load(ctx context.Context, sid string) (domain.Cart, error) {
	const op = "CartUseCase.load"

	raw, err := c.state.Get(ctx, sid, StateKeyCart)
	if err != nil {
		return domain.Cart{}, err
	}
	if len(raw) == 0 {
		return domain.Cart{}, nil
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		c.logger.Warnf("Ignoring cart of session %s: %v", sid, e.Wrap(op, e.ErrMalformedState))
		return domain.Cart{}, nil
	}

	return cart, nil
}
