package usecase

import (
	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/shopspring/decimal"
)

// newProductSummary собирает краткое представление товара. image уже разрешена.
func newProductSummary(p *domain.Product, image string, threshold int) ProductSummary {
	return ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Brand:        p.Brand,
		Category:     p.Category,
		CountInStock: p.CountInStock,
		Rating:       p.Rating,
		NumReviews:   p.NumReviews,
		Image:        image,
		StockLevel:   p.StockLevel(threshold),
	}
}

func newReviewViews(reviews []domain.Review) []ReviewView {
	res := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		res = append(res, ReviewView{
			Author:    r.Author(),
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return res
}

func newOrderSummary(o *domain.Order) OrderSummary {
	items := make([]OrderItemView, 0, len(o.OrderItems))
	for _, it := range o.OrderItems {
		items = append(items, OrderItemView{Name: it.Name, Qty: it.Qty, Price: it.Price})
	}

	return OrderSummary{
		ID:          o.ID,
		CreatedAt:   o.CreatedAt,
		Status:      o.Status(),
		TotalPrice:  o.TotalPrice,
		ItemCount:   o.ItemCount(),
		Items:       items,
		IsPaid:      o.IsPaid,
		IsDelivered: o.IsDelivered,
	}
}

func newOrderSummaries(orders []domain.Order) []OrderSummary {
	res := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		res = append(res, newOrderSummary(&orders[i]))
	}
	return res
}

func newOrderView(o *domain.Order) *OrderView {
	return &OrderView{
		OrderSummary:    newOrderSummary(o),
		UpdatedAt:       o.UpdatedAt,
		ItemsPrice:      o.ItemsPrice,
		TaxPrice:        o.TaxPrice,
		ShippingPrice:   o.ShippingPrice,
		PaidAt:          o.PaidAt,
		DeliveredAt:     o.DeliveredAt,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		User:            o.User,
	}
}

func newCartItemView(it *domain.CartItem) CartItemView {
	line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Qty)))
	return CartItemView{
		ProductID:    it.ID,
		Name:         it.Name,
		Price:        it.Price,
		Qty:          it.Qty,
		LineTotal:    money(line),
		Image:        it.Image,
		CountInStock: it.CountInStock,
	}
}

func newUserView(u *domain.UserInfo) *UserView {
	return &UserView{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin}
}

// Конструкторы ответов с ошибкой. Срезы всегда не nil, чтобы в JSON были [] а не null.

func FailedProductSearch(action string, err error) *ProductSearchResult {
	return &ProductSearchResult{Envelope: fail(action, err), Products: []ProductSummary{}}
}

func FailedProductDetails(action string, err error) *ProductDetailsResult {
	return &ProductDetailsResult{Envelope: fail(action, err), Reviews: []ReviewView{}}
}

func FailedTopRatedLowStock(action string, err error) *TopRatedLowStockResult {
	return &TopRatedLowStockResult{Envelope: fail(action, err), Products: []ProductSummary{}}
}

func FailedInventoryStatus(action string, err error) *InventoryStatusResult {
	return &InventoryStatusResult{
		Envelope:   fail(action, err),
		OutOfStock: []ProductSummary{},
		LowStock:   []ProductSummary{},
	}
}

func FailedOrderHistory(action string, err error) *OrderHistoryResult {
	return &OrderHistoryResult{Envelope: fail(action, err), Orders: []OrderSummary{}}
}

func FailedOrderDetails(action string, err error) *OrderDetailsResult {
	return &OrderDetailsResult{Envelope: fail(action, err)}
}

func FailedOrderStatistics(action string, err error) *OrderStatisticsResult {
	return &OrderStatisticsResult{
		Envelope:     fail(action, err),
		TopProducts:  []TopProduct{},
		MonthlyStats: []MonthlyStat{},
	}
}

func FailedUpdateProduct(action string, err error) *UpdateProductResult {
	return &UpdateProductResult{Envelope: fail(action, err), FieldsUpdated: []string{}, Changes: []FieldChange{}}
}

func FailedStockUpdate(action string, err error) *StockUpdateResult {
	return &StockUpdateResult{Envelope: fail(action, err)}
}

func FailedBulkUpdate(action string, err error) *BulkUpdateResult {
	return &BulkUpdateResult{Envelope: fail(action, err), Results: []BulkItemResult{}, FieldsUpdated: []string{}}
}

func FailedCartContents(action string, err error) *CartContentsResult {
	return &CartContentsResult{Envelope: fail(action, err), Items: []CartItemView{}}
}

func FailedCartUpdate(action string, err error) *CartUpdateResult {
	return &CartUpdateResult{Envelope: fail(action, err)}
}

func FailedUserInfo(action string, err error) *UserInfoResult {
	return &UserInfoResult{Envelope: fail(action, err)}
}
