package cache

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a shared redis instance, for multi-replica
// deployments where every replica should see the same registry view.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

var _ Cache = &Redis{}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", cfg.Addr))
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "vigil:registry"
	}

	return &Redis{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

func (c *Redis) key(key string) string {
	return c.keyPrefix + ":" + key
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, goerr.Wrap(err, "failed to get cache entry", goerr.V("key", key))
	}
	return value, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return goerr.Wrap(err, "failed to set cache entry", goerr.V("key", key))
	}
	return nil
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return goerr.Wrap(err, "failed to delete cache entry", goerr.V("key", key))
	}
	return nil
}

func (c *Redis) Close() error {
	return c.client.Close()
}
