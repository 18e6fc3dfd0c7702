package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-orders/models"
)

const productsAllKey = "products:all"

// CachedProductRepository keeps the menu listing in redis. Redis failures are
// logged and the call falls through to the wrapped store.
type CachedProductRepository struct {
	realRepo ProductStore
	redis    *redis.Client
	ttl      time.Duration
	log      logrus.FieldLogger
}

func NewCachedProductRepository(realRepo ProductStore, rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    rdb,
		ttl:      ttl,
		log:      log,
	}
}

func (c *CachedProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	data, err := c.redis.Get(ctx, productsAllKey).Bytes()

	switch {
	case err == nil:
		var products []models.Product
		if err := json.Unmarshal(data, &products); err != nil {
			c.log.WithError(err).Warn("failed to unmarshal cached products, continuing with DB")
			break
		}
		return products, nil

	case errors.Is(err, redis.Nil):

	default:
		c.log.WithError(err).Warn("redis error, continuing with DB")
	}

	products, err := c.realRepo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(products)
	if err != nil {
		c.log.WithError(err).Warn("failed to marshal products")
		return products, nil
	}
	if err := c.redis.Set(ctx, productsAllKey, jsonData, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("failed to cache products")
	}

	return products, nil
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	return c.realRepo.GetByID(ctx, id)
}

func (c *CachedProductRepository) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) (*models.Product, error) {
	product, err := c.realRepo.UpdatePrice(ctx, id, price)
	if err != nil {
		return nil, err
	}
	c.Invalidate(ctx)
	return product, nil
}

// Invalidate drops the cached listing.
func (c *CachedProductRepository) Invalidate(ctx context.Context) {
	if err := c.redis.Del(ctx, productsAllKey).Err(); err != nil {
		c.log.WithError(err).WithField("key", productsAllKey).Warn("failed to delete product cache")
	}
}

// NewRedisClient pings addr before handing the client out.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return rdb, nil
}
