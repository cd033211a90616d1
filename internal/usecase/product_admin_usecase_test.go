package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminUC(api *fakeStoreAPI) (*ProductAdminUseCase, *fakeCache, *fakePublisher) {
	cache := newFakeCache()
	pub := &fakePublisher{}
	return NewProductAdminUC(api, cache, pub, logger.Nop{}), cache, pub
}

func keyboard() domain.Product {
	return domain.Product{ID: "p1", Name: "Keyboard", Price: 49.99, Brand: "Keys", Category: "Electronics", CountInStock: 3}
}

func decodeUpdate(t *testing.T, raw string) ProductUpdate {
	t.Helper()
	var u ProductUpdate
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	return u
}

func TestUpdateProductStock_SubtractClampsAtZero(t *testing.T) {
	api := newFakeStoreAPI(keyboard())
	uc, cache, pub := newAdminUC(api)

	res := uc.UpdateProductStock(context.Background(), &UpdateProductStockReq{ProductID: "p1", Quantity: ptr(10), Operation: "subtract"})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 3, res.PreviousStock)
	assert.Equal(t, 0, res.NewStock)
	assert.Equal(t, StockSubtract, res.Operation)
	assert.Equal(t, 0, api.products["p1"].CountInStock)
	assert.Len(t, cache.invalidated, 1)
	require.Len(t, pub.events, 1)
	assert.Equal(t, OperationUpdateStock, pub.events[0].Operation)
}

func TestUpdateProductStock_Operations(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		quantity  int
		want      int
		wantOp    StockOperation
	}{
		{"add", "add", 4, 7, StockAdd},
		{"set", "set", 12, 12, StockSet},
		{"default is set", "", 5, 5, StockSet},
		{"unknown acts as set", "multiply", 2, 2, StockSet},
		{"subtract within stock", "SUBTRACT", 2, 1, StockSubtract},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, _ := newAdminUC(newFakeStoreAPI(keyboard()))

			res := uc.UpdateProductStock(context.Background(), &UpdateProductStockReq{ProductID: "p1", Quantity: ptr(tt.quantity), Operation: tt.operation})

			require.True(t, res.Success, res.Message)
			assert.Equal(t, tt.want, res.NewStock)
			assert.Equal(t, tt.wantOp, res.Operation)
		})
	}
}

func TestUpdateProductStock_Validation(t *testing.T) {
	api := newFakeStoreAPI(keyboard())
	uc, _, _ := newAdminUC(api)

	res := uc.UpdateProductStock(context.Background(), &UpdateProductStockReq{ProductID: "p1", Quantity: ptr(-1)})
	assert.False(t, res.Success)
	assert.Equal(t, e.KindValidation, res.Kind)

	res = uc.UpdateProductStock(context.Background(), &UpdateProductStockReq{Quantity: ptr(1)})
	assert.False(t, res.Success)
	assert.Equal(t, e.KindValidation, res.Kind)

	res = uc.UpdateProductStock(context.Background(), &UpdateProductStockReq{ProductID: "missing", Quantity: ptr(1)})
	assert.False(t, res.Success)
	assert.Equal(t, e.KindNotFound, res.Kind)

	assert.Empty(t, api.updates)
}

func TestUpdateProductStock_QuantityRequired(t *testing.T) {
	api := newFakeStoreAPI(keyboard())
	uc, cache, pub := newAdminUC(api)

	var req UpdateProductStockReq
	require.NoError(t, json.Unmarshal([]byte(`{"productId":"p1","operation":"set"}`), &req))

	res := uc.UpdateProductStock(context.Background(), &req)

	assert.False(t, res.Success)
	assert.Equal(t, e.KindValidation, res.Kind)
	assert.Contains(t, res.Message, e.ErrQuantityRequired.Error())
	assert.Equal(t, 3, api.products["p1"].CountInStock)
	assert.Empty(t, api.updates)
	assert.Empty(t, cache.invalidated)
	assert.Empty(t, pub.events)

	res = uc.UpdateProductStock(context.Background(), &UpdateProductStockReq{ProductID: "p1", Quantity: ptr(0)})
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 0, res.NewStock)
}

func TestUpdateProductDetails_RejectsUnknownFieldsBeforeWrite(t *testing.T) {
	api := newFakeStoreAPI(keyboard())
	uc, cache, pub := newAdminUC(api)

	res := uc.UpdateProductDetails(context.Background(), &UpdateProductDetailsReq{
		ProductID: "p1",
		Updates:   decodeUpdate(t, `{"price": 10, "sku": "X1", "color": "red"}`),
	})

	require.False(t, res.Success)
	assert.Equal(t, e.KindValidation, res.Kind)
	assert.Contains(t, res.Message, "invalid update fields: color, sku (allowed:")
	assert.Empty(t, api.updates)
	assert.Empty(t, cache.invalidated)
	assert.Empty(t, pub.events)
	assert.NotNil(t, res.FieldsUpdated)
	assert.NotNil(t, res.Changes)
}

func TestUpdateProductDetails_EqualValueNotInChanges(t *testing.T) {
	api := newFakeStoreAPI(keyboard())
	uc, _, pub := newAdminUC(api)

	res := uc.UpdateProductDetails(context.Background(), &UpdateProductDetailsReq{
		ProductID: "p1",
		Updates:   decodeUpdate(t, `{"price": 49.99, "brand": "NewKeys"}`),
	})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{FieldPrice, FieldBrand}, res.FieldsUpdated)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, FieldChange{Field: FieldBrand, OldValue: "Keys", NewValue: "NewKeys", Changed: true}, res.Changes[0])

	require.Len(t, api.updates, 1)
	saved := api.updates[0]
	assert.Equal(t, "NewKeys", saved.Brand)
	assert.Equal(t, "Keyboard", saved.Name)
	assert.Equal(t, 3, saved.CountInStock)

	require.Len(t, pub.events, 1)
	assert.Equal(t, res.Changes, pub.events[0].Changes)
	assert.NotEmpty(t, pub.events[0].EventID)
}

func TestUpdateProductDetails_ConflictToken(t *testing.T) {
	seen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := keyboard()
	p.UpdatedAt = ptr(seen.Add(time.Minute))

	api := newFakeStoreAPI(p)
	uc, _, _ := newAdminUC(api)

	res := uc.UpdateProductDetails(context.Background(), &UpdateProductDetailsReq{
		ProductID:         "p1",
		Updates:           decodeUpdate(t, `{"name": "Board"}`),
		ExpectedUpdatedAt: &seen,
	})

	require.False(t, res.Success)
	assert.Equal(t, e.KindConflict, res.Kind)
	assert.Empty(t, api.updates)

	res = uc.UpdateProductDetails(context.Background(), &UpdateProductDetailsReq{
		ProductID:         "p1",
		Updates:           decodeUpdate(t, `{"name": "Board"}`),
		ExpectedUpdatedAt: p.UpdatedAt,
	})
	require.True(t, res.Success, res.Message)
}

func TestUpdateProductDetails_SideEffectFailuresAreSwallowed(t *testing.T) {
	api := newFakeStoreAPI(keyboard())
	uc, cache, pub := newAdminUC(api)
	cache.err = errors.New("redis down")
	pub.err = errors.New("kafka down")

	res := uc.UpdateProductDetails(context.Background(), &UpdateProductDetailsReq{
		ProductID: "p1",
		Updates:   decodeUpdate(t, `{"name": "Board"}`),
	})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "Board", res.Product.Name)
}

func TestBulkUpdateProducts_PartialFailure(t *testing.T) {
	api := newFakeStoreAPI(keyboard())
	uc, cache, pub := newAdminUC(api)

	res := uc.BulkUpdateProducts(context.Background(), &BulkUpdateProductsReq{
		ProductIDs: []string{"p1", "missing"},
		Updates:    decodeUpdate(t, `{"category": "Peripherals"}`),
	})

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	assert.Equal(t, 2, res.TotalProcessed)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "p1", res.Results[0].ProductID)
	assert.True(t, res.Results[0].Success)
	assert.Equal(t, "missing", res.Results[1].ProductID)
	assert.False(t, res.Results[1].Success)
	assert.Len(t, cache.invalidated, 1)
	assert.Len(t, pub.events, 1)
}

func TestBulkUpdateProducts_AllFailed(t *testing.T) {
	uc, cache, _ := newAdminUC(newFakeStoreAPI())

	res := uc.BulkUpdateProducts(context.Background(), &BulkUpdateProductsReq{
		ProductIDs: []string{"a", "b"},
		Updates:    decodeUpdate(t, `{"brand": "X"}`),
	})

	assert.False(t, res.Success)
	assert.Equal(t, e.KindNotFound, res.Kind)
	assert.Equal(t, 2, res.FailureCount)
	assert.Len(t, res.Results, 2)
	assert.Empty(t, cache.invalidated)
}

func TestBulkUpdateProducts_ValidatesOnce(t *testing.T) {
	api := newFakeStoreAPI(keyboard())
	uc, _, _ := newAdminUC(api)

	res := uc.BulkUpdateProducts(context.Background(), &BulkUpdateProductsReq{
		ProductIDs: []string{"p1"},
		Updates:    decodeUpdate(t, `{"rating": 5}`),
	})
	assert.False(t, res.Success)
	assert.Equal(t, e.KindValidation, res.Kind)
	assert.Empty(t, res.Results)
	assert.Empty(t, api.updates)

	res = uc.BulkUpdateProducts(context.Background(), &BulkUpdateProductsReq{Updates: decodeUpdate(t, `{"brand": "X"}`)})
	assert.False(t, res.Success)
	assert.Equal(t, e.KindValidation, res.Kind)
}
