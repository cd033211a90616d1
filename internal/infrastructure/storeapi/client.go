package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/DRSN-tech/storefront-assistant/internal/cfg"
	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	productsPath  = "/api/products"
	myOrdersPath  = "/api/orders/mine"
	ordersPath    = "/api/orders"
	maxErrorBytes = 4 << 10
)

// Client — клиент REST API магазина. Токен вызывающего берётся из контекста.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *cfg.StoreAPICfg) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type searchResponse struct {
	Products []domain.Product `json:"products"`
}

// updateRequest — тело PUT: идентификатор и все записываемые поля.
type updateRequest struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	CountInStock int     `json:"countInStock"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error) {
	const op = "Client.SearchProducts"

	path := productsPath + "?keyword=" + url.QueryEscape(keyword)

	var res searchResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, e.Wrap(op, err)
	}

	if res.Products == nil {
		res.Products = []domain.Product{}
	}
	return res.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const op = "Client.GetProduct"

	var product domain.Product
	if err := c.do(ctx, http.MethodGet, productsPath+"/"+url.PathEscape(id), nil, &product); err != nil {
		return nil, e.Wrap(op, err)
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	const op = "Client.UpdateProduct"

	body := updateRequest{
		ProductID:    product.ID,
		Name:         product.Name,
		Price:        product.Price,
		Description:  product.Description,
		Image:        product.Image,
		Brand:        product.Brand,
		Category:     product.Category,
		CountInStock: product.CountInStock,
	}

	var updated domain.Product
	if err := c.do(ctx, http.MethodPut, productsPath+"/"+url.PathEscape(product.ID), body, &updated); err != nil {
		return nil, e.Wrap(op, err)
	}
	return &updated, nil
}

func (c *Client) GetMyOrders(ctx context.Context) ([]domain.Order, error) {
	const op = "Client.GetMyOrders"

	orders, err := c.orders(ctx, myOrdersPath)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	const op = "Client.GetOrder"

	var order domain.Order
	if err := c.do(ctx, http.MethodGet, ordersPath+"/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, e.Wrap(op, err)
	}
	return &order, nil
}

func (c *Client) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	const op = "Client.GetAllOrders"

	orders, err := c.orders(ctx, ordersPath)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	return orders, nil
}

func (c *Client) orders(ctx context.Context, path string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}

	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// do выполняет запрос и декодирует JSON-ответ в out. Повторов нет.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", e.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller, ok := usecase.CallerFromCtx(ctx); ok && caller.Token != "" {
		req.Header.Set("Authorization", "Bearer "+caller.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", e.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", e.ErrUpstream, err)
	}
	return nil
}

// statusError переводит код ответа в ошибку из pkg/e, добавляя сообщение API, если оно есть.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))

	msg := http.StatusText(resp.StatusCode)
	var apiErr errorResponse
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = e.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = e.ErrUnauthorized
	default:
		kind = e.ErrUpstream
	}

	return fmt.Errorf("%w (status %d): %s", kind, resp.StatusCode, msg)
}

var _ usecase.StoreAPI = (*Client)(nil)
