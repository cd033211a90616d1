package usecase

import (
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
)

// CATALOG

// SearchProductsReq — поиск по ключевому слову на сервере плюс локальные фильтры.
type SearchProductsReq struct {
	Query     string   `json:"query"`
	MinPrice  *float64 `json:"minPrice,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
	Category  string   `json:"category,omitempty"`
	MinRating *float64 `json:"minRating,omitempty"`
}

type ProductDetailsReq struct {
	ProductID string `json:"productId"`
}

type TopRatedLowStockReq struct {
	MinRating *float64 `json:"minRating,omitempty"`
	MaxStock  *int     `json:"maxStock,omitempty"`
	Category  string   `json:"category,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

type InventoryStatusReq struct {
	Threshold *int   `json:"threshold,omitempty"`
	Category  string `json:"category,omitempty"`
}

// ProductSummary — краткое представление товара для ответа инструмента.
type ProductSummary struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Price        float64           `json:"price"`
	Brand        string            `json:"brand"`
	Category     string            `json:"category"`
	CountInStock int               `json:"countInStock"`
	Rating       float64           `json:"rating"`
	NumReviews   int               `json:"numReviews"`
	Image        string            `json:"image"`
	StockLevel   domain.StockLevel `json:"stockLevel"`
}

type ReviewView struct {
	Author    string    `json:"author"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProductView struct {
	ProductSummary
	Description string     `json:"description"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type ProductSearchResult struct {
	Envelope
	Products []ProductSummary `json:"products"`
	Count    int              `json:"count"`
}

type ProductDetailsResult struct {
	Envelope
	Product *ProductView `json:"product"`
	Reviews []ReviewView `json:"reviews"`
}

type TopRatedLowStockCriteria struct {
	MinRating float64 `json:"minRating"`
	MaxStock  int     `json:"maxStock"`
	Category  string  `json:"category,omitempty"`
}

type TopRatedLowStockResult struct {
	Envelope
	Products []ProductSummary        `json:"products"`
	Count    int                     `json:"count"`
	Criteria TopRatedLowStockCriteria `json:"criteria"`
}

type StockCounts struct {
	OutOfStock int `json:"outOfStock"`
	LowStock   int `json:"lowStock"`
	InStock    int `json:"inStock"`
}

type InventoryStatusResult struct {
	Envelope
	Threshold     int              `json:"threshold"`
	TotalProducts int              `json:"totalProducts"`
	Counts        StockCounts      `json:"counts"`
	OutOfStock    []ProductSummary `json:"outOfStock"`
	LowStock      []ProductSummary `json:"lowStock"`
}

// ORDERS

type OrderHistoryReq struct {
	Days      int    `json:"days,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Status    string `json:"status,omitempty"`
}

type OrderDetailsReq struct {
	OrderID string `json:"orderId"`
}

type OrderStatisticsReq struct {
	Period string `json:"period,omitempty"`
}

type AllOrdersReq struct {
	Days   int    `json:"days,omitempty"`
	Status string `json:"status,omitempty"`
}

type OrderItemView struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

type OrderSummary struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"createdAt"`
	Status      domain.OrderStatus `json:"status"`
	TotalPrice  float64            `json:"totalPrice"`
	ItemCount   int                `json:"itemCount"`
	Items       []OrderItemView    `json:"items"`
	IsPaid      bool               `json:"isPaid"`
	IsDelivered bool               `json:"isDelivered"`
}

type OrderView struct {
	OrderSummary
	UpdatedAt       *time.Time             `json:"updatedAt,omitempty"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	User            domain.OrderUser       `json:"user"`
}

// AppliedOrderFilters описывает, какие фильтры реально применились.
type AppliedOrderFilters struct {
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
	Status string     `json:"status,omitempty"`
}

type OrderHistoryResult struct {
	Envelope
	Orders      []OrderSummary      `json:"orders"`
	TotalOrders int                 `json:"totalOrders"`
	TotalSpent  float64             `json:"totalSpent"`
	Filters     AppliedOrderFilters `json:"filters"`
}

type OrderDetailsResult struct {
	Envelope
	Order *OrderView `json:"order"`
}

type TopProduct struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type MonthlyStat struct {
	Month  string  `json:"month"`
	Label  string  `json:"label"`
	Spent  float64 `json:"spent"`
	Orders int     `json:"orders"`
}

// StatisticsScope — чьи заказы вошли в статистику.
type StatisticsScope string

const (
	ScopeAll  StatisticsScope = "all"
	ScopeMine StatisticsScope = "mine"
)

type OrderStatisticsResult struct {
	Envelope
	Period            string          `json:"period"`
	Scope             StatisticsScope `json:"scope"`
	TotalOrders       int             `json:"totalOrders"`
	TotalSpent        float64         `json:"totalSpent"`
	AverageOrderValue float64         `json:"averageOrderValue"`
	DeliveredOrders   int             `json:"deliveredOrders"`
	PaidOrders        int             `json:"paidOrders"`
	DeliveryRate      float64         `json:"deliveryRate"`
	TopProducts       []TopProduct    `json:"topProducts"`
	MonthlyStats      []MonthlyStat   `json:"monthlyStats"`
}

// PRODUCT MUTATIONS

type UpdateProductDetailsReq struct {
	ProductID string        `json:"productId"`
	Updates   ProductUpdate `json:"updates"`
	// ExpectedUpdatedAt — updatedAt, который видел вызывающий. Если товар с тех пор менялся, запись отклоняется.
	ExpectedUpdatedAt *time.Time `json:"expectedUpdatedAt,omitempty"`
}

type UpdateProductStockReq struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
	Operation string `json:"operation,omitempty"`
}

type BulkUpdateProductsReq struct {
	ProductIDs []string      `json:"productIds"`
	Updates    ProductUpdate `json:"updates"`
}

// FieldChange — одно изменившееся поле товара.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
	Changed  bool   `json:"changed"`
}

type UpdateProductResult struct {
	Envelope
	Product       *ProductSummary `json:"product"`
	FieldsUpdated []string        `json:"fieldsUpdated"`
	Changes       []FieldChange   `json:"changes"`
}

// StockOperation — операция над остатком.
type StockOperation string

const (
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
	StockSet      StockOperation = "set"
)

type StockUpdateResult struct {
	Envelope
	ProductID     string         `json:"productId"`
	ProductName   string         `json:"productName"`
	PreviousStock int            `json:"previousStock"`
	NewStock      int            `json:"newStock"`
	Operation     StockOperation `json:"operation"`
}

type BulkItemResult struct {
	ProductID   string        `json:"productId"`
	Success     bool          `json:"success"`
	ProductName string        `json:"productName,omitempty"`
	Changes     []FieldChange `json:"changes"`
	Message     string        `json:"message"`
}

type BulkUpdateResult struct {
	Envelope
	Results        []BulkItemResult `json:"results"`
	SuccessCount   int              `json:"successCount"`
	FailureCount   int              `json:"failureCount"`
	TotalProcessed int              `json:"totalProcessed"`
	FieldsUpdated  []string         `json:"fieldsUpdated"`
}

// ProductChangeEvent публикуется после каждой успешной записи товара.
type ProductChangeEvent struct {
	EventID    string
	ProductID  string
	Operation  string
	Changes    []FieldChange
	OccurredAt time.Time
}

// CART & SESSION

type AddToCartReq struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

type RemoveFromCartReq struct {
	ProductID string `json:"productId"`
}

type CartItemView struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Qty          int     `json:"qty"`
	LineTotal    float64 `json:"lineTotal"`
	Image        string  `json:"image"`
	CountInStock int     `json:"countInStock"`
}

type CartContentsResult struct {
	Envelope
	Items          []CartItemView `json:"items"`
	CartItemsCount int            `json:"cartItemsCount"`
	TotalQuantity  int            `json:"totalQuantity"`
	Subtotal       float64        `json:"subtotal"`
	ShippingPrice  float64        `json:"shippingPrice"`
	TaxPrice       float64        `json:"taxPrice"`
	TotalPrice     float64        `json:"totalPrice"`
}

type CartUpdateResult struct {
	Envelope
	Item           *CartItemView `json:"item"`
	CartItemsCount int           `json:"cartItemsCount"`
	Subtotal       float64       `json:"subtotal"`
}

type UserView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type UserInfoResult struct {
	Envelope
	LoggedIn       bool       `json:"loggedIn"`
	User           *UserView  `json:"user"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
}
