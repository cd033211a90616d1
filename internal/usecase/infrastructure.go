package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
)

// StoreAPI — клиент внешнего REST API магазина.
type StoreAPI interface {
	SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetMyOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetAllOrders(ctx context.Context) ([]domain.Order, error)
}

// EventPublisher публикует события об изменении товаров.
type EventPublisher interface {
	PublishProductChange(ctx context.Context, event *ProductChangeEvent) error
}

// ImageResolver превращает ссылку на изображение товара в URL, пригодный для показа.
type ImageResolver interface {
	ResolveImageURL(ctx context.Context, ref string) (string, error)
}

// SessionReader отдаёт текущего пользователя сессии из клиентского состояния.
type SessionReader interface {
	CurrentUser(ctx context.Context) (*domain.UserInfo, bool)
}
