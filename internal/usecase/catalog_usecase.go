package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
)

const (
	defaultTopMinRating = 4.0
	defaultTopMaxStock  = 10
)

// CatalogUseCase реализует инструменты чтения каталога: поиск, карточку товара и выборки по остаткам.
type CatalogUseCase struct {
	storeAPI StoreAPI
	cache    ProductCacheRepository
	images   ImageResolver
	logger   logger.Logger
}

func NewCatalogUC(storeAPI StoreAPI, cache ProductCacheRepository, images ImageResolver, logger logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		storeAPI: storeAPI,
		cache:    cache,
		images:   images,
		logger:   logger,
	}
}

// SearchProducts ищет товары по ключевому слову на сервере и фильтрует результат локально.
func (c *CatalogUseCase) SearchProducts(ctx context.Context, req *SearchProductsReq) *ProductSearchResult {
	const (
		op     = "CatalogUseCase.SearchProducts"
		action = "Failed to search products"
	)

	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return FailedProductSearch(action, fmt.Errorf("%w: minPrice is greater than maxPrice", e.ErrInvalidArguments))
	}

	products, err := c.searchFiltered(ctx, req.Query, productCriteria{
		minPrice:  req.MinPrice,
		maxPrice:  req.MaxPrice,
		category:  strings.TrimSpace(req.Category),
		minRating: req.MinRating,
	})
	if err != nil {
		c.logger.Warnf("Failed to search products: %v", e.Wrap(op, err))
		return FailedProductSearch(action, err)
	}

	summaries := c.summaries(ctx, products, domain.DefaultLowStockThreshold)

	msg := fmt.Sprintf("Found %d products", len(summaries))
	if q := strings.TrimSpace(req.Query); q != "" {
		msg = fmt.Sprintf("Found %d products matching %q", len(summaries), q)
	}

	return &ProductSearchResult{
		Envelope: succeed(msg, products),
		Products: summaries,
		Count:    len(summaries),
	}
}

// GetProductDetails возвращает карточку товара с отзывами. Чтение идёт через кэш.
func (c *CatalogUseCase) GetProductDetails(ctx context.Context, req *ProductDetailsReq) *ProductDetailsResult {
	const (
		op     = "CatalogUseCase.GetProductDetails"
		action = "Failed to get product details"
	)

	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		return FailedProductDetails(action, e.ErrProductIDRequired)
	}

	product, err := c.product(ctx, id)
	if err != nil {
		c.logger.Warnf("Failed to get product %s: %v", id, e.Wrap(op, err))
		return FailedProductDetails(action, err)
	}

	view := &ProductView{
		ProductSummary: newProductSummary(product, c.resolveImage(ctx, product.Image), domain.DefaultLowStockThreshold),
		Description:    product.Description,
		UpdatedAt:      product.UpdatedAt,
	}

	return &ProductDetailsResult{
		Envelope: succeed(fmt.Sprintf("Product %q: %d reviews", product.Name, len(product.Reviews)), product),
		Product:  view,
		Reviews:  newReviewViews(product.Reviews),
	}
}

// FindTopRatedLowStock находит хорошо оценённые товары, которые заканчиваются на складе.
// Результат отсортирован по рейтингу по убыванию, равные рейтинги сохраняют порядок сервера.
func (c *CatalogUseCase) FindTopRatedLowStock(ctx context.Context, req *TopRatedLowStockReq) *TopRatedLowStockResult {
	const (
		op     = "CatalogUseCase.FindTopRatedLowStock"
		action = "Failed to find top rated low stock products"
	)

	criteria := TopRatedLowStockCriteria{
		MinRating: defaultTopMinRating,
		MaxStock:  defaultTopMaxStock,
		Category:  strings.TrimSpace(req.Category),
	}
	if req.MinRating != nil {
		criteria.MinRating = *req.MinRating
	}
	if req.MaxStock != nil {
		criteria.MaxStock = *req.MaxStock
	}

	failed := func(err error) *TopRatedLowStockResult {
		res := FailedTopRatedLowStock(action, err)
		res.Criteria = criteria
		return res
	}

	if criteria.MaxStock < 0 {
		return failed(e.ErrNegativeStock)
	}
	if req.Limit < 0 {
		return failed(fmt.Errorf("%w: limit cannot be negative", e.ErrInvalidArguments))
	}

	products, err := c.searchFiltered(ctx, "", productCriteria{
		category:  criteria.Category,
		minRating: &criteria.MinRating,
	})
	if err != nil {
		c.logger.Warnf("Failed to find top rated low stock products: %v", e.Wrap(op, err))
		return failed(err)
	}

	lowStock := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.CountInStock <= criteria.MaxStock {
			lowStock = append(lowStock, p)
		}
	}

	sort.SliceStable(lowStock, func(i, j int) bool {
		return lowStock[i].Rating > lowStock[j].Rating
	})

	if req.Limit > 0 && len(lowStock) > req.Limit {
		lowStock = lowStock[:req.Limit]
	}

	summaries := c.summaries(ctx, lowStock, criteria.MaxStock)

	return &TopRatedLowStockResult{
		Envelope: succeed(fmt.Sprintf("Found %d products rated %.1f+ with stock at or below %d",
			len(summaries), criteria.MinRating, criteria.MaxStock), lowStock),
		Products: summaries,
		Count:    len(summaries),
		Criteria: criteria,
	}
}

// GetInventoryStatus раскладывает каталог по классам остатка.
func (c *CatalogUseCase) GetInventoryStatus(ctx context.Context, req *InventoryStatusReq) *InventoryStatusResult {
	const (
		op     = "CatalogUseCase.GetInventoryStatus"
		action = "Failed to get inventory status"
	)

	threshold := domain.DefaultLowStockThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 {
		return FailedInventoryStatus(action, e.ErrNegativeStock)
	}

	products, err := c.searchFiltered(ctx, "", productCriteria{category: strings.TrimSpace(req.Category)})
	if err != nil {
		c.logger.Warnf("Failed to get inventory status: %v", e.Wrap(op, err))
		return FailedInventoryStatus(action, err)
	}

	res := &InventoryStatusResult{
		Threshold:     threshold,
		TotalProducts: len(products),
		OutOfStock:    []ProductSummary{},
		LowStock:      []ProductSummary{},
	}

	for i := range products {
		p := &products[i]
		switch p.StockLevel(threshold) {
		case domain.OutOfStock:
			res.Counts.OutOfStock++
			res.OutOfStock = append(res.OutOfStock, newProductSummary(p, c.resolveImage(ctx, p.Image), threshold))
		case domain.LowStock:
			res.Counts.LowStock++
			res.LowStock = append(res.LowStock, newProductSummary(p, c.resolveImage(ctx, p.Image), threshold))
		default:
			res.Counts.InStock++
		}
	}

	res.Envelope = succeed(fmt.Sprintf("%d products: %d out of stock, %d low on stock",
		res.TotalProducts, res.Counts.OutOfStock, res.Counts.LowStock), res.Counts)

	return res
}

// searchFiltered — поиск на сервере (через кэш) плюс локальные фильтры.
func (c *CatalogUseCase) searchFiltered(ctx context.Context, query string, criteria productCriteria) ([]domain.Product, error) {
	products, err := c.search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	return filterProducts(products, criteria), nil
}

func (c *CatalogUseCase) search(ctx context.Context, keyword string) ([]domain.Product, error) {
	const op = "CatalogUseCase.search"

	cached, ok, err := c.cache.GetSearch(ctx, keyword)
	if err != nil {
		c.logger.Warnf("Failed to read search cache: %v", e.Wrap(op, err))
	} else if ok {
		return cached, nil
	}

	products, err := c.storeAPI.SearchProducts(ctx, keyword)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetSearch(ctx, keyword, products); err != nil {
		c.logger.Warnf("Failed to cache search results: %v", e.Wrap(op, err))
	}

	return products, nil
}

func (c *CatalogUseCase) product(ctx context.Context, id string) (*domain.Product, error) {
	const op = "CatalogUseCase.product"

	cached, err := c.cache.GetProduct(ctx, id)
	if err != nil {
		c.logger.Warnf("Failed to read product cache: %v", e.Wrap(op, err))
	} else if cached != nil {
		return cached, nil
	}

	product, err := c.storeAPI.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetProduct(ctx, product); err != nil {
		c.logger.Warnf("Failed to cache product %s: %v", id, e.Wrap(op, err))
	}

	return product, nil
}

func (c *CatalogUseCase) summaries(ctx context.Context, products []domain.Product, threshold int) []ProductSummary {
	res := make([]ProductSummary, 0, len(products))
	for i := range products {
		res = append(res, newProductSummary(&products[i], c.resolveImage(ctx, products[i].Image), threshold))
	}
	return res
}

// resolveImage при ошибке оставляет исходную ссылку.
func (c *CatalogUseCase) resolveImage(ctx context.Context, ref string) string {
	const op = "CatalogUseCase.resolveImage"

	url, err := c.images.ResolveImageURL(ctx, ref)
	if err != nil {
		c.logger.Warnf("Failed to resolve image %q: %v", ref, e.Wrap(op, err))
		return ref
	}
	return url
}
