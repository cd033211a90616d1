package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/storefront-assistant/internal/cfg"
	"github.com/DRSN-tech/storefront-assistant/internal/domain"
	"github.com/DRSN-tech/storefront-assistant/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/clients"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/DRSN-tech/storefront-assistant/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует чтения каталога. Каждый ключ регистрируется в множестве тега,
// инвалидация тега удаляет все его ключи разом.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProductConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProduct возвращает товар из кэша или nil при промахе.
func (c *CacheRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	key := productKey(id)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.ProductRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(ctx, key)
		return nil, nil
	}

	if model.ID != id {
		c.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", id, model.ID)
		c.drop(ctx, key)
		return nil, nil
	}

	return c.conv.ToDomain(&model), nil
}

func (c *CacheRepo) SetProduct(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(c.conv.ToRedisModel(product))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return c.setTagged(ctx, productKey(product.ID), data)
}

// GetSearch возвращает закэшированный результат поиска. ok=false означает промах.
func (c *CacheRepo) GetSearch(ctx context.Context, keyword string) ([]domain.Product, bool, error) {
	key := searchKey(keyword)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []converter.ProductRedisModel
	if err := json.Unmarshal(data, &models); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(ctx, key)
		return nil, false, nil
	}

	return c.conv.ToArrDomain(models), true, nil
}

func (c *CacheRepo) SetSearch(ctx context.Context, keyword string, products []domain.Product) error {
	data, err := json.Marshal(c.conv.ToArrRedisModel(products))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return c.setTagged(ctx, searchKey(keyword), data)
}

// InvalidateTags удаляет все ключи, записанные под указанными тегами, и сами множества тегов.
func (c *CacheRepo) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tk := tagKey(tag)

		keys, err := c.client.Client.SMembers(ctx, tk).Result()
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}

		if err := c.client.Client.Del(ctx, append(keys, tk)...).Err(); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return nil
}

// setTagged атомарно пишет значение с TTL и регистрирует ключ в теге товаров.
func (c *CacheRepo) setTagged(ctx context.Context, key string, data []byte) error {
	tk := tagKey(usecase.TagProducts)

	pipeline := c.client.Client.TxPipeline()
	pipeline.Set(ctx, key, data, c.cfg.ProductTTL)
	pipeline.SAdd(ctx, tk, key)
	pipeline.Expire(ctx, tk, c.cfg.ProductTTL)

	if _, err := pipeline.Exec(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) drop(ctx context.Context, key string) {
	if err := c.client.Client.Del(ctx, key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func searchKey(keyword string) string {
	return fmt.Sprintf("search:%s", strings.ToLower(strings.TrimSpace(keyword)))
}

func tagKey(tag string) string {
	return fmt.Sprintf("tag:%s", tag)
}

var _ usecase.ProductCacheRepository = (*CacheRepo)(nil)
