package converter

import (
	"encoding/json"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
)

// CartConverter переводит корзину между jsonb-значением и доменной моделью.
type CartConverter interface {
	ToCart(value []byte) domain.Cart
	FromCart(cart *domain.Cart) ([]byte, error)
}

type Converter struct{}

// ToCart: отсутствующее или повреждённое значение даёт пустую корзину.
func (Converter) ToCart(value []byte) domain.Cart {
	var cart domain.Cart
	if len(value) == 0 || json.Unmarshal(value, &cart) != nil {
		return domain.Cart{CartItems: []domain.CartItem{}}
	}

	if cart.CartItems == nil {
		cart.CartItems = []domain.CartItem{}
	}
	return cart
}

func (Converter) FromCart(cart *domain.Cart) ([]byte, error) {
	return json.Marshal(cart)
}

var _ CartConverter = Converter{}
