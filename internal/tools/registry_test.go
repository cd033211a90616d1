package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

// stubUC реализует все usecase-интерфейсы и запоминает последний вызов.
type stubUC struct {
	users    map[string]*domain.UserInfo
	lastCall string
	lastCtx  context.Context
	lastReq  any
}

func (s *stubUC) record(ctx context.Context, name string, req any) {
	s.lastCall, s.lastCtx, s.lastReq = name, ctx, req
}

func (s *stubUC) CurrentUser(ctx context.Context) (*domain.UserInfo, bool) {
	caller, ok := usecase.CallerFromCtx(ctx)
	if !ok {
		return nil, false
	}
	u, ok := s.users[caller.SessionID]
	return u, ok
}

func (s *stubUC) SearchProducts(ctx context.Context, req *usecase.SearchProductsReq) *usecase.ProductSearchResult {
	s.record(ctx, SearchProducts, req)
	return &usecase.ProductSearchResult{Envelope: usecase.Envelope{Success: true, Message: "ok"}, Products: []usecase.ProductSummary{}}
}

func (s *stubUC) GetProductDetails(ctx context.Context, req *usecase.ProductDetailsReq) *usecase.ProductDetailsResult {
	s.record(ctx, GetProductDetails, req)
	return &usecase.ProductDetailsResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) FindTopRatedLowStock(ctx context.Context, req *usecase.TopRatedLowStockReq) *usecase.TopRatedLowStockResult {
	s.record(ctx, FindTopRatedLowStock, req)
	return &usecase.TopRatedLowStockResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) GetInventoryStatus(ctx context.Context, req *usecase.InventoryStatusReq) *usecase.InventoryStatusResult {
	s.record(ctx, GetInventoryStatus, req)
	return &usecase.InventoryStatusResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) GetOrderHistory(ctx context.Context, req *usecase.OrderHistoryReq) *usecase.OrderHistoryResult {
	s.record(ctx, GetOrderHistory, req)
	return &usecase.OrderHistoryResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) GetOrderDetails(ctx context.Context, req *usecase.OrderDetailsReq) *usecase.OrderDetailsResult {
	s.record(ctx, GetOrderDetails, req)
	return &usecase.OrderDetailsResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) GetOrderStatistics(ctx context.Context, req *usecase.OrderStatisticsReq) *usecase.OrderStatisticsResult {
	s.record(ctx, GetOrderStatistics, req)
	return &usecase.OrderStatisticsResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) GetAllOrders(ctx context.Context, req *usecase.AllOrdersReq) *usecase.OrderHistoryResult {
	s.record(ctx, GetAllOrders, req)
	return &usecase.OrderHistoryResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) UpdateProductDetails(ctx context.Context, req *usecase.UpdateProductDetailsReq) *usecase.UpdateProductResult {
	s.record(ctx, UpdateProductDetails, req)
	return &usecase.UpdateProductResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) UpdateProductStock(ctx context.Context, req *usecase.UpdateProductStockReq) *usecase.StockUpdateResult {
	s.record(ctx, UpdateProductStock, req)
	return &usecase.StockUpdateResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) BulkUpdateProducts(ctx context.Context, req *usecase.BulkUpdateProductsReq) *usecase.BulkUpdateResult {
	s.record(ctx, BulkUpdateProducts, req)
	return &usecase.BulkUpdateResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) GetCartContents(ctx context.Context) *usecase.CartContentsResult {
	s.record(ctx, GetCartContents, nil)
	return &usecase.CartContentsResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) AddToCart(ctx context.Context, req *usecase.AddToCartReq) *usecase.CartUpdateResult {
	s.record(ctx, AddToCart, req)
	return &usecase.CartUpdateResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) RemoveFromCart(ctx context.Context, req *usecase.RemoveFromCartReq) *usecase.CartUpdateResult {
	s.record(ctx, RemoveFromCart, req)
	return &usecase.CartUpdateResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) ClearCart(ctx context.Context) *usecase.CartUpdateResult {
	s.record(ctx, ClearCart, nil)
	return &usecase.CartUpdateResult{Envelope: usecase.Envelope{Success: true}}
}

func (s *stubUC) GetUserInfo(ctx context.Context) *usecase.UserInfoResult {
	s.record(ctx, GetUserInfo, nil)
	return &usecase.UserInfoResult{Envelope: usecase.Envelope{Success: true}}
}

func newTestRegistry(t *testing.T) (*Registry, *stubUC) {
	t.Helper()

	stub := &stubUC{users: map[string]*domain.UserInfo{
		"admin": {ID: "a", IsAdmin: true, Token: "admin-token"},
		"user":  {ID: "u", Token: "user-token"},
	}}
	reg, err := NewRegistry(stub, logger.Nop{}, Build(UseCases{
		Catalog: stub,
		Orders:  stub,
		Admin:   stub,
		Cart:    stub,
		Session: stub,
	})...)
	require.NoError(t, err)
	return reg, stub
}

func TestRegistry_Declarations(t *testing.T) {
	reg, _ := newTestRegistry(t)

	decls := reg.Declarations()
	require.Len(t, decls, 16)
	assert.Equal(t, SearchProducts, decls[0].Name)
	assert.Equal(t, GetUserInfo, decls[len(decls)-1].Name)

	admin := map[string]bool{}
	for _, d := range decls {
		assert.NotEmpty(t, d.Description, d.Name)
		assert.Equal(t, "object", d.Parameters["type"], d.Name)
		if d.AdminOnly {
			admin[d.Name] = true
		}
	}
	assert.Equal(t, map[string]bool{
		GetInventoryStatus:   true,
		GetAllOrders:         true,
		UpdateProductDetails: true,
		UpdateProductStock:   true,
		BulkUpdateProducts:   true,
	}, admin)

	_, err := json.Marshal(decls)
	assert.NoError(t, err)
}

func TestRegistry_DuplicateTool(t *testing.T) {
	stub := &stubUC{}
	tools := Build(UseCases{Catalog: stub, Orders: stub, Admin: stub, Cart: stub, Session: stub})

	_, err := NewRegistry(stub, logger.Nop{}, append(tools, tools[0])...)
	assert.Error(t, err)
}

func TestRegistry_UnknownTool(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res, err := reg.Invoke(context.Background(), usecase.Caller{SessionID: "user"}, "dropDatabase", nil)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, e.ErrUnknownTool)
}

func TestRegistry_DecodesArguments(t *testing.T) {
	reg, stub := newTestRegistry(t)

	res, err := reg.Invoke(context.Background(), usecase.Caller{SessionID: "user"}, SearchProducts,
		json.RawMessage(`{"query": "phone", "minPrice": 10}`))
	require.NoError(t, err)
	assert.True(t, res.Outcome().Success)

	req, ok := stub.lastReq.(*usecase.SearchProductsReq)
	require.True(t, ok)
	assert.Equal(t, "phone", req.Query)
	require.NotNil(t, req.MinPrice)
	assert.Equal(t, 10.0, *req.MinPrice)

	res, err = reg.Invoke(context.Background(), usecase.Caller{SessionID: "user"}, ClearCart, nil)
	require.NoError(t, err)
	assert.True(t, res.Outcome().Success)
	assert.Equal(t, ClearCart, stub.lastCall)
}

func TestRegistry_MalformedArguments(t *testing.T) {
	reg, stub := newTestRegistry(t)

	res, err := reg.Invoke(context.Background(), usecase.Caller{SessionID: "user"}, SearchProducts, json.RawMessage(`{"query": 5`))
	require.NoError(t, err)

	out := res.Outcome()
	assert.False(t, out.Success)
	assert.Equal(t, e.KindValidation, out.Kind)
	assert.Empty(t, stub.lastCall)

	typed, ok := res.(*usecase.ProductSearchResult)
	require.True(t, ok)
	assert.NotNil(t, typed.Products)
}

func TestRegistry_WrongUpdateTypeIsValidation(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res, err := reg.Invoke(context.Background(), usecase.Caller{SessionID: "admin"}, UpdateProductDetails,
		json.RawMessage(`{"productId": "p1", "updates": {"price": "free"}}`))
	require.NoError(t, err)
	assert.Equal(t, e.KindValidation, res.Outcome().Kind)
}

func TestRegistry_AdminOnly(t *testing.T) {
	reg, stub := newTestRegistry(t)
	args := json.RawMessage(`{"productId": "p1", "quantity": 3}`)

	res, err := reg.Invoke(context.Background(), usecase.Caller{SessionID: "user"}, UpdateProductStock, args)
	require.NoError(t, err)
	assert.Equal(t, e.KindAuth, res.Outcome().Kind)
	assert.Empty(t, stub.lastCall)

	res, err = reg.Invoke(context.Background(), usecase.Caller{SessionID: "anonymous"}, GetAllOrders, nil)
	require.NoError(t, err)
	assert.Equal(t, e.KindAuth, res.Outcome().Kind)

	res, err = reg.Invoke(context.Background(), usecase.Caller{SessionID: "admin"}, UpdateProductStock, args)
	require.NoError(t, err)
	assert.True(t, res.Outcome().Success)
	assert.Equal(t, UpdateProductStock, stub.lastCall)
}

func TestRegistry_TokenFallback(t *testing.T) {
	reg, stub := newTestRegistry(t)

	_, err := reg.Invoke(context.Background(), usecase.Caller{SessionID: "user"}, GetOrderHistory, nil)
	require.NoError(t, err)
	caller, ok := usecase.CallerFromCtx(stub.lastCtx)
	require.True(t, ok)
	assert.Equal(t, "user-token", caller.Token)

	_, err = reg.Invoke(context.Background(), usecase.Caller{SessionID: "user", Token: "header-token"}, GetOrderHistory, nil)
	require.NoError(t, err)
	caller, _ = usecase.CallerFromCtx(stub.lastCtx)
	assert.Equal(t, "header-token", caller.Token)
}

func TestRegistry_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	reg, _ := newTestRegistry(t)
	_, err := reg.Invoke(context.Background(), usecase.Caller{SessionID: "user"}, UpdateProductStock, nil)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "tool."+UpdateProductStock, spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("tool.status", string(e.KindAuth)))
}

func TestRegistry_UnknownArgumentIsValidation(t *testing.T) {
	reg, stub := newTestRegistry(t)

	res, err := reg.Invoke(context.Background(), usecase.Caller{SessionID: "admin"}, UpdateProductStock,
		json.RawMessage(`{"productId": "p1", "qty": 3}`))
	require.NoError(t, err)
	assert.False(t, res.Outcome().Success)
	assert.Equal(t, e.KindValidation, res.Outcome().Kind)
	assert.Contains(t, res.Outcome().Message, "qty")
	assert.Empty(t, stub.lastCall)

	res, err = reg.Invoke(context.Background(), usecase.Caller{SessionID: "user"}, SearchProducts,
		json.RawMessage(`{"query": "phone"} {"query": "tv"}`))
	require.NoError(t, err)
	assert.Equal(t, e.KindValidation, res.Outcome().Kind)
	assert.Empty(t, stub.lastCall)
}

func TestDeclarations_UpdatesSchemaFollowsAllowList(t *testing.T) {
	reg, _ := newTestRegistry(t)

	for _, d := range reg.Declarations() {
		if d.Name != UpdateProductDetails && d.Name != BulkUpdateProducts {
			continue
		}

		props, ok := d.Parameters["properties"].(map[string]any)
		require.True(t, ok)
		updates, ok := props["updates"].(map[string]any)
		require.True(t, ok)
		fields, ok := updates["properties"].(map[string]any)
		require.True(t, ok)

		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, usecase.AllowedUpdateFields(), keys, d.Name)
	}
}
