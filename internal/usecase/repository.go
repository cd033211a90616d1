package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
)

// TagProducts — тег кэша, под которым лежат все закэшированные чтения каталога.
const TagProducts = "products"

// ProductCacheRepository кэширует чтения каталога. Промах возвращает nil без ошибки.
type ProductCacheRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	GetSearch(ctx context.Context, keyword string) ([]domain.Product, bool, error)
	SetSearch(ctx context.Context, keyword string, products []domain.Product) error
	InvalidateTags(ctx context.Context, tags ...string) error
}

// Ключи записей клиентского состояния.
const (
	StateKeyCart     = "cart"
	StateKeyUserInfo = "userInfo"
)

// ClientStateRepository хранит сырые JSON-записи клиентского состояния сессии.
// Отсутствующая запись возвращается как nil без ошибки.
type ClientStateRepository interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Put(ctx context.Context, sessionID, key string, value []byte) error
}

// CartDispatcher применяет действие к сохранённой корзине сессии и возвращает результат.
type CartDispatcher interface {
	Dispatch(ctx context.Context, sessionID string, action domain.CartAction) (*domain.Cart, error)
}
