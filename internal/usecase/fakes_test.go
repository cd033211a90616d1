package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
)

type fakeStoreAPI struct {
	mu sync.Mutex

	products  map[string]domain.Product
	order     []string
	myOrders  []domain.Order
	allOrders []domain.Order
	err       error

	updates       []domain.Product
	myOrderCalls  int
	allOrderCalls int
}

func newFakeStoreAPI(products ...domain.Product) *fakeStoreAPI {
	f := &fakeStoreAPI{products: make(map[string]domain.Product)}
	for _, p := range products {
		f.products[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return f
}

func (f *fakeStoreAPI) SearchProducts(_ context.Context, _ string) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	res := make([]domain.Product, 0, len(f.order))
	for _, id := range f.order {
		res = append(res, f.products[id])
	}
	return res, nil
}

func (f *fakeStoreAPI) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, e.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStoreAPI) UpdateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return nil, e.ErrNotFound
	}
	f.products[product.ID] = *product
	f.updates = append(f.updates, *product)
	saved := *product
	return &saved, nil
}

func (f *fakeStoreAPI) GetMyOrders(context.Context) ([]domain.Order, error) {
	f.myOrderCalls++
	return f.myOrders, f.err
}

func (f *fakeStoreAPI) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, o := range append(f.myOrders, f.allOrders...) {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, e.ErrNotFound
}

func (f *fakeStoreAPI) GetAllOrders(context.Context) ([]domain.Order, error) {
	f.allOrderCalls++
	return f.allOrders, f.err
}

type fakeCache struct {
	products    map[string]domain.Product
	searches    map[string][]domain.Product
	invalidated [][]string
	err         error
}

func newFakeCache() *fakeCache {
	return &fakeCache{products: map[string]domain.Product{}, searches: map[string][]domain.Product{}}
}

func (c *fakeCache) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := c.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (c *fakeCache) SetProduct(_ context.Context, p *domain.Product) error {
	c.products[p.ID] = *p
	return nil
}

func (c *fakeCache) GetSearch(_ context.Context, keyword string) ([]domain.Product, bool, error) {
	p, ok := c.searches[keyword]
	return p, ok, nil
}

func (c *fakeCache) SetSearch(_ context.Context, keyword string, products []domain.Product) error {
	c.searches[keyword] = products
	return nil
}

func (c *fakeCache) InvalidateTags(_ context.Context, tags ...string) error {
	c.invalidated = append(c.invalidated, tags)
	if c.err != nil {
		return c.err
	}
	c.products = map[string]domain.Product{}
	c.searches = map[string][]domain.Product{}
	return nil
}

type fakePublisher struct {
	events []*ProductChangeEvent
	err    error
}

func (p *fakePublisher) PublishProductChange(_ context.Context, event *ProductChangeEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type passthroughImages struct{}

func (passthroughImages) ResolveImageURL(_ context.Context, ref string) (string, error) {
	return ref, nil
}

type fakeSession struct {
	user *domain.UserInfo
}

func (s fakeSession) CurrentUser(context.Context) (*domain.UserInfo, bool) {
	return s.user, s.user != nil
}

// fakeState — хранилище состояния в памяти, заодно диспетчер корзины.
type fakeState struct {
	records    map[string][]byte
	dispatched []domain.CartAction
}

func newFakeState() *fakeState {
	return &fakeState{records: map[string][]byte{}}
}

func (s *fakeState) put(sid, key string, v any) {
	raw, _ := json.Marshal(v)
	s.records[sid+"/"+key] = raw
}

func (s *fakeState) Get(_ context.Context, sid, key string) ([]byte, error) {
	return s.records[sid+"/"+key], nil
}

func (s *fakeState) Put(_ context.Context, sid, key string, value []byte) error {
	s.records[sid+"/"+key] = value
	return nil
}

func (s *fakeState) Dispatch(ctx context.Context, sid string, action domain.CartAction) (*domain.Cart, error) {
	s.dispatched = append(s.dispatched, action)

	var cart domain.Cart
	if raw, _ := s.Get(ctx, sid, StateKeyCart); len(raw) > 0 {
		_ = json.Unmarshal(raw, &cart)
	}
	next := domain.ApplyCartAction(cart, action)
	s.put(sid, StateKeyCart, next)
	return &next, nil
}

func callerCtx(sid string) context.Context {
	return WithCaller(context.Background(), Caller{SessionID: sid})
}

func ptr[T any](v T) *T {
	return &v
}
