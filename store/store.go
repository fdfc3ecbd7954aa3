package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Operation names carried by OperationError.
const (
	OpPut      = "set"
	OpGet      = "get"
	OpDelete   = "delete"
	OpListKeys = "list_keys"
)

// DefaultPattern matches every key.
const DefaultPattern = "*"

var (
	// ErrStoreUnavailable indicates the store could not be reached at startup.
	ErrStoreUnavailable = errors.New("redis connection failed")

	// ErrOperationFailed matches any *OperationError.
	ErrOperationFailed = errors.New("store operation failed")
)

// Config addresses the store. It is not modified after New.
type Config struct {
	Host string `env:"REDIS_HOST" envDefault:"localhost"`
	Port int    `env:"REDIS_PORT" envDefault:"6379"`
	DB   int    `env:"REDIS_DB"   envDefault:"0"`
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Service is the key-value surface exposed to tools.
type Service interface {
	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key, value string) error

	// Get returns the value under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Delete removes key. Removing an absent key succeeds.
	Delete(ctx context.Context, key string) error

	// ListKeys returns the keys matching a glob pattern, possibly none.
	ListKeys(ctx context.Context, pattern string) ([]string, error)

	// Ping checks that the store answers.
	Ping(ctx context.Context) error
}

// OperationError reports a failed store round trip.
type OperationError struct {
	Op  string
	Key string
	Err error
}

func (e *OperationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Is makes every OperationError match ErrOperationFailed.
func (e *OperationError) Is(target error) bool {
	return target == ErrOperationFailed
}

func opError(op, key string, err error) error {
	return &OperationError{Op: op, Key: key, Err: err}
}
