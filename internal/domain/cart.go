package domain

import "github.com/shopspring/decimal"

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingPrice     = decimal.NewFromInt(10)
	taxRate               = decimal.RequireFromString("0.15")
)

// Cart — корзина, сохранённая на стороне клиента. Цены хранятся строками с двумя знаками.
type Cart struct {
	CartItems       []CartItem       `json:"cartItems"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod   string           `json:"paymentMethod,omitempty"`
	ItemsPrice      decimal.Decimal  `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal  `json:"shippingPrice"`
	TaxPrice        decimal.Decimal  `json:"taxPrice"`
	TotalPrice      decimal.Decimal  `json:"totalPrice"`
}

// CartItem — поверхностная копия товара плюс количество.
type CartItem struct {
	Product
	Qty int `json:"qty"`
}

// NewCartItem копирует товар без отзывов: в корзине они не нужны.
func NewCartItem(p Product, qty int) CartItem {
	p.Reviews = nil
	return CartItem{Product: p, Qty: qty}
}

// Subtotal — сумма quantity×price по всем позициям.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.CartItems {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum.Round(2)
}

// ItemsCount — количество единиц товара в корзине.
func (c *Cart) ItemsCount() int {
	var n int
	for _, it := range c.CartItems {
		n += it.Qty
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.CartItems) == 0
}

// Recalculate пересчитывает стоимость товаров, доставки, налога и итог.
// Доставка бесплатна при сумме больше 100, иначе 10; налог 15%.
func (c *Cart) Recalculate() {
	c.ItemsPrice = c.Subtotal()

	c.ShippingPrice = flatShippingPrice
	if c.ItemsPrice.GreaterThan(freeShippingThreshold) || c.IsEmpty() {
		c.ShippingPrice = decimal.Zero
	}

	c.TaxPrice = c.ItemsPrice.Mul(taxRate).Round(2)
	c.TotalPrice = c.ItemsPrice.Add(c.ShippingPrice).Add(c.TaxPrice).Round(2)
}

// CartActionType — тип действия над корзиной.
type CartActionType string

const (
	CartAdd    CartActionType = "add"
	CartRemove CartActionType = "remove"
	CartClear  CartActionType = "clear"
)

// CartAction — действие, которое диспетчер применяет к сохранённой корзине.
type CartAction struct {
	Type      CartActionType
	Item      CartItem
	ProductID string
}

func AddCartItem(item CartItem) CartAction {
	return CartAction{Type: CartAdd, Item: item, ProductID: item.ID}
}

func RemoveCartItem(productID string) CartAction {
	return CartAction{Type: CartRemove, ProductID: productID}
}

func ClearCart() CartAction {
	return CartAction{Type: CartClear}
}

// ApplyCartAction возвращает новую корзину после действия. Исходная корзина не меняется.
// add заменяет количество у существующей позиции, иначе добавляет позицию в конец.
func ApplyCartAction(cart Cart, action CartAction) Cart {
	items := make([]CartItem, 0, len(cart.CartItems)+1)

	switch action.Type {
	case CartAdd:
		replaced := false
		for _, it := range cart.CartItems {
			if it.ID == action.Item.ID {
				items = append(items, action.Item)
				replaced = true
				continue
			}
			items = append(items, it)
		}
		if !replaced {
			items = append(items, action.Item)
		}
	case CartRemove:
		for _, it := range cart.CartItems {
			if it.ID != action.ProductID {
				items = append(items, it)
			}
		}
	case CartClear:
	default:
		items = append(items, cart.CartItems...)
	}

	cart.CartItems = items
	cart.Recalculate()
	return cart
}
