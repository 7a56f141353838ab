package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/austerelabs/stockfinder/internal/config"
)

// PriceCache keeps recently fetched prices in Redis so notifier ticks
// inside the TTL window reuse the cached quote instead of hitting the
// provider again. Cache failures degrade to a miss; the provider is
// always the fallback.
type PriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a price cache from configuration
func New(cfg config.RedisConfig) *PriceCache {
	return &PriceCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr}),
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}
}

func key(symbol string) string {
	return "price:" + symbol
}

// Get returns the cached price for a symbol, or false on a miss
func (c *PriceCache) Get(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	val, err := c.client.Get(ctx, key(symbol)).Result()
	if err == redis.Nil {
		return decimal.Zero, false
	}
	if err != nil {
		log.Printf("Error reading price cache for %s: %v", symbol, err)
		return decimal.Zero, false
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}

// Set stores a price under the configured TTL
func (c *PriceCache) Set(ctx context.Context, symbol string, price decimal.Decimal) {
	if err := c.client.Set(ctx, key(symbol), price.String(), c.ttl).Err(); err != nil {
		log.Printf("Error writing price cache for %s: %v", symbol, err)
	}
}

// Close releases the Redis connection
func (c *PriceCache) Close() error {
	return c.client.Close()
}
