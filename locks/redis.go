package locks

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ Cache = (*RedisCache)(nil)

var ErrAddrMissing = errors.New("redis addresses must be specified")

// incrExisting increments KEYS[1] only when it exists, keeping the TTL set by Add.
var incrExisting = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("INCR", KEYS[1])
end
return 0
`)

type RedisOption func(*RedisCache)

// RedisCache is a Cache shared by every server instance pointing at the same redis.
type RedisCache struct {
	addrs    []string
	password string
	db       int
	prefix   string
	client   redis.UniversalClient
}

// WithAddr sets a comma separated list of redis addresses
func WithAddr(addrs string) RedisOption {
	return func(c *RedisCache) {
		c.addrs = strings.Split(addrs, ",")
	}
}

func WithPassword(password string) RedisOption {
	return func(c *RedisCache) {
		c.password = password
	}
}

func WithDatabase(db int) RedisOption {
	return func(c *RedisCache) {
		c.db = db
	}
}

// WithKeyPrefix namespaces every key, so several apps can share one redis
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *RedisCache) {
		c.prefix = prefix
	}
}

// WithClient uses an existing client instead of dialing the configured addresses
func WithClient(client redis.UniversalClient) RedisOption {
	return func(c *RedisCache) {
		c.client = client
	}
}

func NewRedisCache(options ...RedisOption) (*RedisCache, error) {
	c := &RedisCache{}
	for _, opt := range options {
		opt(c)
	}

	if c.client != nil {
		return c, nil
	}
	if len(c.addrs) == 0 || c.addrs[0] == "" {
		return nil, ErrAddrMissing
	}
	c.client = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    c.addrs,
		Password: c.password,
		DB:       c.db,
	})
	return c, nil
}

// Ping returns the redis server liveliness response
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Add(ctx context.Context, key string, value int64, ttl time.Duration) (bool, error) {
	added, err := c.client.SetNX(ctx, c.prefix+key, value, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "RedisCache.Add")
	}
	return added, nil
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	count, err := incrExisting.Run(ctx, c.client, []string{c.prefix + key}).Int64()
	if err != nil {
		return 0, errors.Wrap(err, "RedisCache.Incr")
	}
	return count, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return errors.Wrap(err, "RedisCache.Delete")
	}
	return nil
}
