package persist

import (
	"context"
	stderrors "errors"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/cardspace/pkg/errors"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis stores each key as a Redis string.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and pings it.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "redis backend needs an address")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "redis: ping %s", cfg.Addr)
	}
	return &Redis{client: client}, nil
}

// NewRedisClient wraps an existing client.
func NewRedisClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Name returns "redis".
func (r *Redis) Name() string { return "redis" }

// Get reads key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, backendErr(r.Name(), Retryable(err), "get")
	}
	return data, true, nil
}

// Set stores key without expiry.
func (r *Redis) Set(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return backendErr(r.Name(), Retryable(err), "set")
	}
	return nil
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return backendErr(r.Name(), Retryable(err), "del")
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }

var _ Backend = (*Redis)(nil)
