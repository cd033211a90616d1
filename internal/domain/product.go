package domain

import (
	"strings"
	"time"
)

// Product описывает товар в том виде, в каком его отдаёт API магазина.
type Product struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	Price        float64    `json:"price"`
	Description  string     `json:"description"`
	Image        string     `json:"image"`
	Brand        string     `json:"brand"`
	Category     string     `json:"category"`
	CountInStock int        `json:"countInStock"`
	Rating       float64    `json:"rating"`
	NumReviews   int        `json:"numReviews"`
	Reviews      []Review   `json:"reviews,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// StockLevel — классификация остатка товара.
type StockLevel string

const (
	OutOfStock StockLevel = "out_of_stock"
	LowStock   StockLevel = "low_stock"
	InStock    StockLevel = "in_stock"
)

// DefaultLowStockThreshold — порог, начиная с которого остаток считается низким.
const DefaultLowStockThreshold = 10

// ClassifyStock относит остаток к одному из трёх классов; threshold включительно считается низким остатком.
func ClassifyStock(count, threshold int) StockLevel {
	switch {
	case count <= 0:
		return OutOfStock
	case count <= threshold:
		return LowStock
	default:
		return InStock
	}
}

// StockLevel возвращает класс остатка товара.
func (p *Product) StockLevel(threshold int) StockLevel {
	return ClassifyStock(p.CountInStock, threshold)
}

// InCategory сравнивает категорию без учёта регистра.
func (p *Product) InCategory(category string) bool {
	return strings.EqualFold(strings.TrimSpace(p.Category), strings.TrimSpace(category))
}
