package storeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/cfg"
	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(&cfg.StoreAPICfg{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

func TestClient_SearchProducts(t *testing.T) {
	var gotQuery, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		gotQuery = r.URL.Query().Get("keyword")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"products":[{"_id":"p1","name":"Phone","price":199.99,"countInStock":3}],"page":1,"pages":1}`))
	})

	ctx := usecase.WithCaller(context.Background(), usecase.Caller{SessionID: "s1", Token: "tkn"})
	products, err := client.SearchProducts(ctx, "smart phone")

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, 199.99, products[0].Price)
	assert.Equal(t, "smart phone", gotQuery)
	assert.Equal(t, "Bearer tkn", gotAuth)
}

func TestClient_SearchProductsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	})

	products, err := client.SearchProducts(context.Background(), "")

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestClient_UpdateProductSendsWritableFields(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/products/p1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"_id":"p1","name":"New","price":5,"countInStock":0}`))
	})

	updated, err := client.UpdateProduct(context.Background(), &domain.Product{
		ID:       "p1",
		Name:     "New",
		Price:    5,
		Rating:   4.5,
		Category: "Electronics",
	})

	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "p1", body["productId"])
	assert.Equal(t, "Electronics", body["category"])
	assert.Equal(t, 0.0, body["countInStock"])
	assert.NotContains(t, body, "rating")
	assert.NotContains(t, body, "_id")
}

func TestClient_Orders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/orders/mine":
			_, _ = w.Write([]byte(`[{"_id":"o1","user":"u1","totalPrice":10,"isPaid":true,"createdAt":"2026-01-02T10:00:00Z"}]`))
		case "/api/orders":
			_, _ = w.Write([]byte(`null`))
		case "/api/orders/o1":
			_, _ = w.Write([]byte(`{"_id":"o1","user":{"_id":"u1","name":"Ann"},"orderItems":[{"name":"A","qty":2,"price":5}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	mine, err := client.GetMyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "u1", mine[0].User.ID)
	assert.Equal(t, domain.StatusPaid, mine[0].Status())

	all, err := client.GetAllOrders(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)

	order, err := client.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", order.User.Name)
	assert.Equal(t, 2, order.ItemCount())
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		msg    string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Product not found"}`, want: e.ErrNotFound, msg: "Product not found"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"Not authorized, no token"}`, want: e.ErrUnauthorized, msg: "no token"},
		{name: "forbidden", status: http.StatusForbidden, body: ``, want: e.ErrUnauthorized, msg: "Forbidden"},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, want: e.ErrUpstream, msg: "status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetProduct(context.Background(), "p1")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"_id":`))
	})

	_, err := client.GetProduct(context.Background(), "p1")

	assert.ErrorIs(t, err, e.ErrUpstream)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(&cfg.StoreAPICfg{BaseURL: srv.URL})

	_, err := client.GetMyOrders(context.Background())

	assert.ErrorIs(t, err, e.ErrUpstream)
}
