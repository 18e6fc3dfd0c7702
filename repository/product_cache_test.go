package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/repository"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestCachedProductRepository_ReadThrough(t *testing.T) {
	db := setupSeededDB(t)
	mr, rdb := setupCache(t)
	log, _ := test.NewNullLogger()
	ctx := context.Background()

	cached := repository.NewCachedProductRepository(repository.NewProductRepository(db), rdb, time.Minute, log)

	first, err := cached.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, first, 5)
	assert.True(t, mr.Exists("products:all"))
	assert.Equal(t, time.Minute, mr.TTL("products:all"))

	// Served from redis: a row written behind the cache's back stays invisible.
	require.NoError(t, db.Create(&models.Product{Name: "Suco", Price: decimal.NewFromInt(7), Available: true}).Error)
	second, err := cached.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 5)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.True(t, first[0].Price.Equal(second[0].Price))

	cached.Invalidate(ctx)
	third, err := cached.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 6)
}

func TestCachedProductRepository_UpdatePriceInvalidates(t *testing.T) {
	db := setupSeededDB(t)
	mr, rdb := setupCache(t)
	log, _ := test.NewNullLogger()
	ctx := context.Background()
	cached := repository.NewCachedProductRepository(repository.NewProductRepository(db), rdb, 0, log)

	_, err := cached.ListProducts(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("products:all"))

	burger := productByName(t, db, "X-Burger")
	_, err = cached.UpdatePrice(ctx, burger.ID, decimal.RequireFromString("20"))
	require.NoError(t, err)
	assert.False(t, mr.Exists("products:all"))

	products, err := cached.ListProducts(ctx)
	require.NoError(t, err)
	for _, p := range products {
		if p.ID == burger.ID {
			assert.True(t, p.Price.Equal(decimal.NewFromInt(20)))
		}
	}
}

func TestCachedProductRepository_RedisDownFallsThrough(t *testing.T) {
	db := setupSeededDB(t)
	mr, rdb := setupCache(t)
	log, hook := test.NewNullLogger()
	cached := repository.NewCachedProductRepository(repository.NewProductRepository(db), rdb, time.Minute, log)

	mr.Close()

	products, err := cached.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 5)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := repository.NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	rdb.Close()

	mr.Close()
	_, err = repository.NewRedisClient(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}
