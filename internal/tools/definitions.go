package tools

import (
	"fmt"

	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
)

// Имена инструментов, под которыми их видит LLM.
const (
	SearchProducts       = "searchProducts"
	GetProductDetails    = "getProductDetails"
	FindTopRatedLowStock = "findTopRatedLowStock"
	GetInventoryStatus   = "getInventoryStatus"
	GetOrderHistory      = "getOrderHistory"
	GetOrderDetails      = "getOrderDetails"
	GetOrderStatistics   = "getOrderStatistics"
	GetAllOrders         = "getAllOrders"
	UpdateProductDetails = "updateProductDetails"
	UpdateProductStock   = "updateProductStock"
	BulkUpdateProducts   = "bulkUpdateProducts"
	GetCartContents      = "getCartContents"
	AddToCart            = "addToCart"
	RemoveFromCart       = "removeFromCart"
	ClearCart            = "clearCart"
	GetUserInfo          = "getUserInfo"
)

// UseCases — всё, что нужно для сборки набора инструментов.
type UseCases struct {
	Catalog usecase.CatalogUC
	Orders  usecase.OrderUC
	Admin   usecase.ProductAdminUC
	Cart    usecase.CartUC
	Session usecase.SessionUC
}

// Build собирает полный набор инструментов магазина.
func Build(uc UseCases) []Tool {
	return []Tool{
		{
			Name:        SearchProducts,
			Description: "Search the product catalog by keyword and optionally filter by price range, category and minimum rating.",
			Parameters: object(map[string]any{
				"query":     str("Keyword to search for; empty returns the whole catalog"),
				"minPrice":  num("Minimum price"),
				"maxPrice":  num("Maximum price"),
				"category":  str("Exact category name, case-insensitive"),
				"minRating": num("Minimum average rating, 1 to 5"),
			}),
			invoke: bind(uc.Catalog.SearchProducts),
			fail:   failWith(usecase.FailedProductSearch),
		},
		{
			Name:        GetProductDetails,
			Description: "Get full details of a single product including its reviews.",
			Parameters: object(map[string]any{
				"productId": str("Product identifier"),
			}, "productId"),
			invoke: bind(uc.Catalog.GetProductDetails),
			fail:   failWith(usecase.FailedProductDetails),
		},
		{
			Name:        FindTopRatedLowStock,
			Description: "Find highly rated products that are running low on stock, best rated first.",
			Parameters: object(map[string]any{
				"minRating": num("Minimum rating, defaults to 4"),
				"maxStock":  integer("Maximum stock count, defaults to 10"),
				"category":  str("Restrict to a category"),
				"limit":     integer("Maximum number of products to return"),
			}),
			invoke: bind(uc.Catalog.FindTopRatedLowStock),
			fail:   failWith(usecase.FailedTopRatedLowStock),
		},
		{
			Name:        GetInventoryStatus,
			Description: "Summarize inventory: how many products are out of stock, low on stock and in stock.",
			Parameters: object(map[string]any{
				"threshold": integer("Stock count at or below which a product is low on stock, defaults to 10"),
				"category":  str("Restrict to a category"),
			}),
			AdminOnly: true,
			invoke:    bind(uc.Catalog.GetInventoryStatus),
			fail:      failWith(usecase.FailedInventoryStatus),
		},
		{
			Name:        GetOrderHistory,
			Description: "List the current user's orders, optionally filtered by the last N days, a date range or status.",
			Parameters: object(map[string]any{
				"days":      integer("Only orders from the last N days; takes precedence over the date range"),
				"startDate": str("Start date, YYYY-MM-DD"),
				"endDate":   str("End date, YYYY-MM-DD, inclusive"),
				"status":    enum("Order status", "pending", "paid", "delivered"),
			}),
			invoke: bind(uc.Orders.GetOrderHistory),
			fail:   failWith(usecase.FailedOrderHistory),
		},
		{
			Name:        GetOrderDetails,
			Description: "Get the full details of one order: items, prices, payment and delivery state, shipping address.",
			Parameters: object(map[string]any{
				"orderId": str("Order identifier"),
			}, "orderId"),
			invoke: bind(uc.Orders.GetOrderDetails),
			fail:   failWith(usecase.FailedOrderDetails),
		},
		{
			Name:        GetOrderStatistics,
			Description: "Order statistics for a period: totals, average order value, delivery rate, top products and monthly spending for the last 6 months.",
			Parameters: object(map[string]any{
				"period": enum("Period to aggregate, defaults to all", usecase.PeriodAll, usecase.Period30Days, usecase.Period90Days, usecase.PeriodYear),
			}),
			invoke: bind(uc.Orders.GetOrderStatistics),
			fail:   failWith(usecase.FailedOrderStatistics),
		},
		{
			Name:        GetAllOrders,
			Description: "List all orders in the store, optionally filtered by the last N days and status.",
			Parameters: object(map[string]any{
				"days":   integer("Only orders from the last N days"),
				"status": enum("Order status", "pending", "paid", "delivered"),
			}),
			AdminOnly: true,
			invoke:    bind(uc.Orders.GetAllOrders),
			fail:      failWith(usecase.FailedOrderHistory),
		},
		{
			Name:        UpdateProductDetails,
			Description: "Update fields of a product. Only name, price, description, image, brand, category and countInStock can be changed.",
			Parameters: object(map[string]any{
				"productId":         str("Product identifier"),
				"updates":           productUpdates(),
				"expectedUpdatedAt": str("updatedAt of the product as last seen, RFC3339; the update is rejected if the product changed since"),
			}, "productId", "updates"),
			AdminOnly: true,
			invoke:    bind(uc.Admin.UpdateProductDetails),
			fail:      failWith(usecase.FailedUpdateProduct),
		},
		{
			Name:        UpdateProductStock,
			Description: "Change the stock count of a product: add to it, subtract from it (never below zero) or set it.",
			Parameters: object(map[string]any{
				"productId": str("Product identifier"),
				"quantity":  integer("Amount to add, subtract or set"),
				"operation": enum("Stock operation, defaults to set", string(usecase.StockAdd), string(usecase.StockSubtract), string(usecase.StockSet)),
			}, "productId", "quantity"),
			AdminOnly: true,
			invoke:    bind(uc.Admin.UpdateProductStock),
			fail:      failWith(usecase.FailedStockUpdate),
		},
		{
			Name:        BulkUpdateProducts,
			Description: "Apply the same field updates to several products. Each product is processed independently.",
			Parameters: object(map[string]any{
				"productIds": map[string]any{
					"type":        "array",
					"description": "Product identifiers",
					"items":       map[string]any{"type": "string"},
					"minItems":    1,
				},
				"updates": productUpdates(),
			}, "productIds", "updates"),
			AdminOnly: true,
			invoke:    bind(uc.Admin.BulkUpdateProducts),
			fail:      failWith(usecase.FailedBulkUpdate),
		},
		{
			Name:        GetCartContents,
			Description: "Show what is in the shopping cart with subtotal, shipping, tax and total.",
			Parameters:  object(map[string]any{}),
			invoke:      bind(noArgs(uc.Cart.GetCartContents)),
			fail:        failWith(usecase.FailedCartContents),
		},
		{
			Name:        AddToCart,
			Description: "Add a product to the cart, or change its quantity if it is already there.",
			Parameters: object(map[string]any{
				"productId": str("Product identifier"),
				"quantity":  integer("Quantity, defaults to 1"),
			}, "productId"),
			invoke: bind(uc.Cart.AddToCart),
			fail:   failWith(usecase.FailedCartUpdate),
		},
		{
			Name:        RemoveFromCart,
			Description: "Remove a product from the cart.",
			Parameters: object(map[string]any{
				"productId": str("Product identifier"),
			}, "productId"),
			invoke: bind(uc.Cart.RemoveFromCart),
			fail:   failWith(usecase.FailedCartUpdate),
		},
		{
			Name:        ClearCart,
			Description: "Remove everything from the cart.",
			Parameters:  object(map[string]any{}),
			invoke:      bind(noArgs(uc.Cart.ClearCart)),
			fail:        failWith(usecase.FailedCartUpdate),
		},
		{
			Name:        GetUserInfo,
			Description: "Tell who is logged in and whether they are an administrator.",
			Parameters:  object(map[string]any{}),
			invoke:      bind(noArgs(uc.Session.GetUserInfo)),
			fail:        failWith(usecase.FailedUserInfo),
		},
	}
}

var updateFieldSchemas = map[string]map[string]any{
	usecase.FieldName:         str("Product name"),
	usecase.FieldPrice:        num("Price"),
	usecase.FieldDescription:  str("Description"),
	usecase.FieldImage:        str("Image reference"),
	usecase.FieldBrand:        str("Brand"),
	usecase.FieldCategory:     str("Category"),
	usecase.FieldCountInStock: integer("Stock count"),
}

// productUpdates строит схему updates по разрешённому списку полей.
func productUpdates() map[string]any {
	properties := make(map[string]any, len(updateFieldSchemas))
	for _, field := range usecase.AllowedUpdateFields() {
		schema, ok := updateFieldSchemas[field]
		if !ok {
			panic(fmt.Sprintf("no schema for update field %q", field))
		}
		properties[field] = schema
	}

	return map[string]any{
		"type":                 "object",
		"description":          "Fields to change; omitted fields keep their current value",
		"properties":           properties,
		"additionalProperties": false,
	}
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func num(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func integer(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}
