package usecase

import (
	"context"
	"encoding/json"
)

type CatalogUC interface {
	SearchProducts(ctx context.Context, req *SearchProductsReq) *ProductSearchResult
	GetProductDetails(ctx context.Context, req *ProductDetailsReq) *ProductDetailsResult
	FindTopRatedLowStock(ctx context.Context, req *TopRatedLowStockReq) *TopRatedLowStockResult
	GetInventoryStatus(ctx context.Context, req *InventoryStatusReq) *InventoryStatusResult
}

type OrderUC interface {
	GetOrderHistory(ctx context.Context, req *OrderHistoryReq) *OrderHistoryResult
	GetOrderDetails(ctx context.Context, req *OrderDetailsReq) *OrderDetailsResult
	GetOrderStatistics(ctx context.Context, req *OrderStatisticsReq) *OrderStatisticsResult
	GetAllOrders(ctx context.Context, req *AllOrdersReq) *OrderHistoryResult
}

type ProductAdminUC interface {
	UpdateProductDetails(ctx context.Context, req *UpdateProductDetailsReq) *UpdateProductResult
	UpdateProductStock(ctx context.Context, req *UpdateProductStockReq) *StockUpdateResult
	BulkUpdateProducts(ctx context.Context, req *BulkUpdateProductsReq) *BulkUpdateResult
}

type CartUC interface {
	GetCartContents(ctx context.Context) *CartContentsResult
	AddToCart(ctx context.Context, req *AddToCartReq) *CartUpdateResult
	RemoveFromCart(ctx context.Context, req *RemoveFromCartReq) *CartUpdateResult
	ClearCart(ctx context.Context) *CartUpdateResult
}

type SessionUC interface {
	SessionReader
	GetUserInfo(ctx context.Context) *UserInfoResult
}

// StateSyncUC принимает записи клиентского состояния от фронтенда.
type StateSyncUC interface {
	SaveState(ctx context.Context, key string, value json.RawMessage) error
}
