package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// socketTimeout bounds dialing and every read/write on the connection.
	socketTimeout = 5 * time.Second
	// maxRetries lets the client retry once on a timeout or network error.
	maxRetries = 1
)

var _ Service = (*Redis)(nil)

// Option configures the Redis adapter.
type Option func(*redis.Options)

// WithPoolSize caps the number of pooled connections behind the client.
func WithPoolSize(n int) Option {
	return func(o *redis.Options) { o.PoolSize = n }
}

// Redis implements Service on top of a single go-redis client.
type Redis struct {
	client *redis.Client
	cfg    Config
}

// New opens the client described by cfg and verifies it with PING.
// If the store does not answer, the client is closed and the returned error
// matches ErrStoreUnavailable.
func New(ctx context.Context, cfg Config, opts ...Option) (*Redis, error) {
	ro := &redis.Options{
		Addr:         cfg.Addr(),
		DB:           cfg.DB,
		DialTimeout:  socketTimeout,
		ReadTimeout:  socketTimeout,
		WriteTimeout: socketTimeout,
		MaxRetries:   maxRetries,
	}
	for _, o := range opts {
		o(ro)
	}

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return &Redis{client: client, cfg: cfg}, nil
}

// Config returns the configuration the adapter was opened with.
func (r *Redis) Config() Config { return r.cfg }

func (r *Redis) Put(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return opError(OpPut, key, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, opError(OpGet, key, err)
	}
	return value, true, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	// DEL replies with the number of removed keys; zero is still success.
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return opError(OpDelete, key, err)
	}
	return nil
}

func (r *Redis) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, opError(OpListKeys, pattern, err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
