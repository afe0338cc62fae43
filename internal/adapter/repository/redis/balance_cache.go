package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DefaultBalanceTTL bounds how long a cached balance may be served.
const DefaultBalanceTTL = 30 * time.Second

// BalanceCache implements usecase.BalanceCache using Redis.
// Balances are stored as decimal strings under "balance:<id>".
type BalanceCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewBalanceCache creates a new BalanceCache. A non-positive ttl falls back to DefaultBalanceTTL.
func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	if ttl <= 0 {
		ttl = DefaultBalanceTTL
	}

	return &BalanceCache{
		client: client,
		prefix: "balance:",
		ttl:    ttl,
	}
}

// Get returns the cached balance. ok is false on a miss.
func (c *BalanceCache) Get(ctx context.Context, accountID int64) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.key(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("get cached balance: %w", err)
	}

	balance, err := decimal.NewFromString(val)
	if err != nil {
		// Drop the corrupt entry so the next read repopulates it.
		_ = c.client.Del(ctx, c.key(accountID)).Err()
		return decimal.Zero, false, fmt.Errorf("decode cached balance %q: %w", val, err)
	}

	return balance, true, nil
}

// Set stores a balance with the configured TTL.
func (c *BalanceCache) Set(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	if err := c.client.Set(ctx, c.key(accountID), balance.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached balance: %w", err)
	}

	return nil
}

// Invalidate removes the cached balances of the given accounts.
func (c *BalanceCache) Invalidate(ctx context.Context, accountIDs ...int64) error {
	if len(accountIDs) == 0 {
		return nil
	}

	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = c.key(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cached balances: %w", err)
	}

	return nil
}

func (c *BalanceCache) key(accountID int64) string {
	return c.prefix + strconv.FormatInt(accountID, 10)
}
