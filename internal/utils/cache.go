package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key building
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache is a JSON read-through cache on Redis. A nil *Cache is valid and
// never hits, so handlers work unchanged without Redis.
type Cache struct {
	rdb *redis.Client // Redis client
	ttl time.Duration // Lifetime of cached entries
}

// NewCache wraps rdb; a nil client yields a nil Cache
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 60 * time.Second // Same default lifetime as before
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil // No cache configured
	}
	val, err := c.rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// Set stores value in Redis with the cache TTL
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err() // Set value in Redis with TTL
}

// Delete removes keys from Redis
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// DeletePrefix removes every key starting with prefix. Paginated entries
// share a prefix, so one call drops all their pages.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) error {
	if c == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator() // Walk matching keys in batches
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.Delete(ctx, keys...)
}

// Cache key builders shared by handlers that read and invalidate
const (
	balancePrefix  = "wallet:user:"
	historyPrefix  = "history:user:"
	adminUsersKey  = "admin:users:"
	adminLedgerKey = "admin:history:"
	gamesKey       = "games:all"
)

// BalanceKey is the cache key of an account balance
func BalanceKey(userID uint) string {
	return balancePrefix + strconv.FormatUint(uint64(userID), 10)
}

// HistoryPrefix prefixes every cached history page of an account
func HistoryPrefix(userID uint) string {
	return historyPrefix + strconv.FormatUint(uint64(userID), 10) + ":"
}

// HistoryKey is the cache key of one history page of an account
func HistoryKey(userID uint, kind string, page, pageSize int) string {
	return HistoryPrefix(userID) + "kind=" + kind + ":page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
}

// AdminUsersKey is the cache key of one page of the admin user list
func AdminUsersKey(page, pageSize int) string {
	return adminUsersKey + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
}

// AdminLedgerKey is the cache key of one page of the admin ledger view;
// userID 0 means all accounts.
func AdminLedgerKey(userID uint, page, pageSize int) string {
	return adminLedgerKey + "user=" + strconv.FormatUint(uint64(userID), 10) + ":page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
}

// GamesKey is the cache key of the public game catalog
func GamesKey() string {
	return gamesKey
}

// InvalidateAccount drops every cached view that includes userID's balance
// or ledger.
func (c *Cache) InvalidateAccount(ctx context.Context, userID uint) error {
	if c == nil {
		return nil
	}
	if err := c.Delete(ctx, BalanceKey(userID)); err != nil {
		return err
	}
	for _, prefix := range []string{HistoryPrefix(userID), adminUsersKey, adminLedgerKey} {
		if err := c.DeletePrefix(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}
