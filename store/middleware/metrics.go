package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/petasbytes/redis-mcp/store"
)

var _ store.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     store.Service
}

// MetricsMiddleware counts store operations and observes their latency in
// microseconds, labelled by method.
func MetricsMiddleware(svc store.Service, counter metrics.Counter, latency metrics.Histogram) store.Service {
	return &metricsMiddleware{counter: counter, latency: latency, svc: svc}
}

func (mm *metricsMiddleware) Put(ctx context.Context, key, value string) error {
	defer mm.observe(store.OpPut, time.Now())
	return mm.svc.Put(ctx, key, value)
}

func (mm *metricsMiddleware) Get(ctx context.Context, key string) (string, bool, error) {
	defer mm.observe(store.OpGet, time.Now())
	return mm.svc.Get(ctx, key)
}

func (mm *metricsMiddleware) Delete(ctx context.Context, key string) error {
	defer mm.observe(store.OpDelete, time.Now())
	return mm.svc.Delete(ctx, key)
}

func (mm *metricsMiddleware) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	defer mm.observe(store.OpListKeys, time.Now())
	return mm.svc.ListKeys(ctx, pattern)
}

func (mm *metricsMiddleware) Ping(ctx context.Context) error {
	defer mm.observe("ping", time.Now())
	return mm.svc.Ping(ctx)
}

func (mm *metricsMiddleware) observe(method string, begin time.Time) {
	mm.counter.With("method", method).Add(1)
	mm.latency.With("method", method).Observe(float64(time.Since(begin).Microseconds()))
}
