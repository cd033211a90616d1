package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/google/uuid"
)

// Операции в событиях изменения товара.
const (
	OperationUpdateDetails = "update_details"
	OperationUpdateStock   = "update_stock"
	OperationBulkUpdate    = "bulk_update"
)

// ProductAdminUseCase реализует изменяющие инструменты каталога: правку полей, остатков и массовое обновление.
// Каждая запись идёт по схеме «прочитать, наложить изменения, записать целиком».
type ProductAdminUseCase struct {
	storeAPI  StoreAPI
	cache     ProductCacheRepository
	publisher EventPublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewProductAdminUC(storeAPI StoreAPI, cache ProductCacheRepository, publisher EventPublisher, logger logger.Logger) *ProductAdminUseCase {
	return &ProductAdminUseCase{
		storeAPI:  storeAPI,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// UpdateProductDetails применяет частичное обновление к товару и сообщает, какие поля реально изменились.
func (p *ProductAdminUseCase) UpdateProductDetails(ctx context.Context, req *UpdateProductDetailsReq) *UpdateProductResult {
	const (
		op     = "ProductAdminUseCase.UpdateProductDetails"
		action = "Failed to update product"
	)

	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		return FailedUpdateProduct(action, e.ErrProductIDRequired)
	}

	// Валидация до любых сетевых вызовов
	if err := req.Updates.Validate(); err != nil {
		return FailedUpdateProduct(action, err)
	}

	before, saved, err := p.apply(ctx, id, &req.Updates, req.ExpectedUpdatedAt)
	if err != nil {
		p.logger.Warnf("Failed to update product %s: %v", id, e.Wrap(op, err))
		return FailedUpdateProduct(action, err)
	}

	changes := req.Updates.Diff(*before, req.Updates.Merge(*before))
	p.afterMutation(ctx, OperationUpdateDetails, id, changes)

	summary := newProductSummary(saved, saved.Image, domain.DefaultLowStockThreshold)

	msg := fmt.Sprintf("Product %q updated: %d of %d fields changed", saved.Name, len(changes), len(req.Updates.Fields()))
	if len(changes) == 0 {
		msg = fmt.Sprintf("Product %q saved, values were already up to date", saved.Name)
	}

	return &UpdateProductResult{
		Envelope:      succeed(msg, saved),
		Product:       &summary,
		FieldsUpdated: req.Updates.Fields(),
		Changes:       changes,
	}
}

// UpdateProductStock меняет остаток: add прибавляет, subtract вычитает не ниже нуля, set задаёт значение.
func (p *ProductAdminUseCase) UpdateProductStock(ctx context.Context, req *UpdateProductStockReq) *StockUpdateResult {
	const (
		op     = "ProductAdminUseCase.UpdateProductStock"
		action = "Failed to update stock"
	)

	id := strings.TrimSpace(req.ProductID)
	failed := func(err error) *StockUpdateResult {
		res := FailedStockUpdate(action, err)
		res.ProductID = id
		return res
	}

	if id == "" {
		return failed(e.ErrProductIDRequired)
	}

	if req.Quantity == nil {
		return failed(e.ErrQuantityRequired)
	}
	quantity := *req.Quantity
	if quantity < 0 {
		return failed(e.ErrNegativeQuantity)
	}

	current, err := p.storeAPI.GetProduct(ctx, id)
	if err != nil {
		p.logger.Warnf("Failed to get product %s: %v", id, e.Wrap(op, err))
		return failed(err)
	}

	newStock, operation := applyStockOperation(current.CountInStock, quantity, req.Operation)

	next := *current
	next.CountInStock = newStock
	saved, err := p.storeAPI.UpdateProduct(ctx, &next)
	if err != nil {
		p.logger.Warnf("Failed to save stock of product %s: %v", id, e.Wrap(op, err))
		return failed(err)
	}
	if saved == nil {
		saved = &next
	}

	changes := make([]FieldChange, 0, 1)
	if current.CountInStock != newStock {
		changes = append(changes, FieldChange{Field: FieldCountInStock, OldValue: current.CountInStock, NewValue: newStock, Changed: true})
	}
	p.afterMutation(ctx, OperationUpdateStock, id, changes)

	return &StockUpdateResult{
		Envelope: succeed(fmt.Sprintf("Stock of %q changed from %d to %d (%s %d)",
			saved.Name, current.CountInStock, newStock, operation, quantity), saved),
		ProductID:     id,
		ProductName:   saved.Name,
		PreviousStock: current.CountInStock,
		NewStock:      newStock,
		Operation:     operation,
	}
}

// BulkUpdateProducts применяет одно и то же обновление к списку товаров по очереди.
// Ошибка по одному товару не прерывает обработку остальных.
func (p *ProductAdminUseCase) BulkUpdateProducts(ctx context.Context, req *BulkUpdateProductsReq) *BulkUpdateResult {
	const (
		op     = "ProductAdminUseCase.BulkUpdateProducts"
		action = "Failed to update products"
	)

	if len(req.ProductIDs) == 0 {
		return FailedBulkUpdate(action, e.ErrProductIDsRequired)
	}

	if err := req.Updates.Validate(); err != nil {
		return FailedBulkUpdate(action, err)
	}

	res := &BulkUpdateResult{
		Results:       make([]BulkItemResult, 0, len(req.ProductIDs)),
		FieldsUpdated: req.Updates.Fields(),
	}

	var lastErr error
	for _, rawID := range req.ProductIDs {
		id := strings.TrimSpace(rawID)
		item := BulkItemResult{ProductID: rawID, Changes: []FieldChange{}}

		var (
			before, saved *domain.Product
			err           error
		)
		if id == "" {
			err = e.ErrProductIDRequired
		} else {
			before, saved, err = p.apply(ctx, id, &req.Updates, nil)
		}

		if err != nil {
			p.logger.Warnf("Bulk update: product %q failed: %v", rawID, e.Wrap(op, err))
			lastErr = err
			item.Message = err.Error()
			res.FailureCount++
			res.Results = append(res.Results, item)
			continue
		}

		item.Success = true
		item.ProductName = saved.Name
		item.Changes = req.Updates.Diff(*before, req.Updates.Merge(*before))
		item.Message = fmt.Sprintf("%d fields changed", len(item.Changes))
		res.SuccessCount++
		res.Results = append(res.Results, item)

		p.publish(ctx, OperationBulkUpdate, id, item.Changes)
	}
	res.TotalProcessed = len(res.Results)

	if res.SuccessCount == 0 {
		res.Envelope = fail(action, fmt.Errorf("all %d updates failed: %w", res.FailureCount, lastErr))
		return res
	}

	p.invalidate(ctx)

	res.Envelope = succeed(fmt.Sprintf("Updated %d of %d products (%d failed)",
		res.SuccessCount, res.TotalProcessed, res.FailureCount), res.Results)
	return res
}

// apply читает товар, проверяет маркер конкурентного изменения, накладывает обновление и записывает.
// Возвращает состояние до записи и сохранённый товар.
func (p *ProductAdminUseCase) apply(
	ctx context.Context,
	id string,
	update *ProductUpdate,
	expectedUpdatedAt *time.Time,
) (*domain.Product, *domain.Product, error) {
	current, err := p.storeAPI.GetProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if expectedUpdatedAt != nil {
		if current.UpdatedAt == nil || !current.UpdatedAt.Equal(*expectedUpdatedAt) {
			return nil, nil, fmt.Errorf("%w: expected updatedAt %s", e.ErrConflict, expectedUpdatedAt.Format(time.RFC3339))
		}
	}

	merged := update.Merge(*current)
	saved, err := p.storeAPI.UpdateProduct(ctx, &merged)
	if err != nil {
		return nil, nil, err
	}
	if saved == nil {
		saved = &merged
	}

	return current, saved, nil
}

// afterMutation сбрасывает кэш каталога и публикует событие. Ошибки только логируются.
func (p *ProductAdminUseCase) afterMutation(ctx context.Context, operation, productID string, changes []FieldChange) {
	p.invalidate(ctx)
	p.publish(ctx, operation, productID, changes)
}

func (p *ProductAdminUseCase) invalidate(ctx context.Context) {
	const op = "ProductAdminUseCase.invalidate"

	if err := p.cache.InvalidateTags(ctx, TagProducts); err != nil {
		p.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, err))
	}
}

func (p *ProductAdminUseCase) publish(ctx context.Context, operation, productID string, changes []FieldChange) {
	const op = "ProductAdminUseCase.publish"

	event := &ProductChangeEvent{
		EventID:    uuid.NewString(),
		ProductID:  productID,
		Operation:  operation,
		Changes:    changes,
		OccurredAt: p.now().UTC(),
	}

	if err := p.publisher.PublishProductChange(ctx, event); err != nil {
		p.logger.Warnf("Failed to publish product change event %s: %v", event.EventID, e.Wrap(op, err))
	}
}
