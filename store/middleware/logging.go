package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/petasbytes/redis-mcp/store"
)

var _ store.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    store.Service
}

// LoggingMiddleware logs every store operation with its duration.
// Failed operations are logged at Warn with the error.
func LoggingMiddleware(svc store.Service, logger *slog.Logger) store.Service {
	return &loggingMiddleware{logger: logger, svc: svc}
}

func (lm *loggingMiddleware) Put(ctx context.Context, key, value string) (err error) {
	defer func(begin time.Time) {
		lm.log(ctx, "Set key", begin, err, slog.String("key", key), slog.Int("value_size", len(value)))
	}(time.Now())
	return lm.svc.Put(ctx, key, value)
}

func (lm *loggingMiddleware) Get(ctx context.Context, key string) (value string, found bool, err error) {
	defer func(begin time.Time) {
		lm.log(ctx, "Get key", begin, err, slog.String("key", key), slog.Bool("found", found))
	}(time.Now())
	return lm.svc.Get(ctx, key)
}

func (lm *loggingMiddleware) Delete(ctx context.Context, key string) (err error) {
	defer func(begin time.Time) {
		lm.log(ctx, "Delete key", begin, err, slog.String("key", key))
	}(time.Now())
	return lm.svc.Delete(ctx, key)
}

func (lm *loggingMiddleware) ListKeys(ctx context.Context, pattern string) (keys []string, err error) {
	defer func(begin time.Time) {
		lm.log(ctx, "List keys", begin, err, slog.String("pattern", pattern), slog.Int("count", len(keys)))
	}(time.Now())
	return lm.svc.ListKeys(ctx, pattern)
}

func (lm *loggingMiddleware) Ping(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		lm.log(ctx, "Ping", begin, err)
	}(time.Now())
	return lm.svc.Ping(ctx)
}

func (lm *loggingMiddleware) log(ctx context.Context, op string, begin time.Time, err error, attrs ...any) {
	args := append([]any{slog.String("duration", time.Since(begin).String())}, attrs...)
	if err != nil {
		args = append(args, slog.Any("error", err))
		lm.logger.WarnContext(ctx, op+" failed", args...)
		return
	}
	lm.logger.DebugContext(ctx, op+" completed successfully", args...)
}
