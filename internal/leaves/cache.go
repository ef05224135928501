package leaves

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis based caching for leave balances. All methods tolerate a
// nil receiver so callers can run without Redis in tests.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func balanceKey(employeeID string, year int) string {
	return strings.Join([]string{"leaves", "balance", employeeID, strconv.Itoa(year)}, ":")
}

// FetchBalance loads a cached balance or populates it using the loader.
func (c *Cache) FetchBalance(ctx context.Context, employeeID string, year int, loader func(context.Context) (*Balance, error)) (*Balance, error) {
	if loader == nil {
		return nil, errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key := balanceKey(employeeID, year)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var balance Balance
		if err := json.Unmarshal(payload, &balance); err == nil {
			return &balance, nil
		}
	} else if err != redis.Nil {
		return nil, err
	}
	balance, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(balance)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, err
	}
	return balance, nil
}

// InvalidateBalance drops the cached balance after a status change.
func (c *Cache) InvalidateBalance(ctx context.Context, employeeID string, year int) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, balanceKey(employeeID, year)).Err()
}
