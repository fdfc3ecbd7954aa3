package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-kit/kit/metrics"
	"github.com/petasbytes/redis-mcp/store"
	"github.com/petasbytes/redis-mcp/store/middleware"
	"github.com/petasbytes/redis-mcp/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logLine struct {
	Level    string `json:"level"`
	Msg      string `json:"msg"`
	Key      string `json:"key"`
	Pattern  string `json:"pattern"`
	Found    *bool  `json:"found"`
	Duration string `json:"duration"`
	Error    string `json:"error"`
}

func readLines(t *testing.T, buf *bytes.Buffer) []logLine {
	t.Helper()
	var out []logLine
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var l logLine
		require.NoError(t, json.Unmarshal([]byte(raw), &l))
		out = append(out, l)
	}
	return out
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inner := mocks.NewService()
	svc := middleware.LoggingMiddleware(inner, logger)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, "k", "v"))
	_, found, err := svc.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	_, err = svc.ListKeys(ctx, "k*")
	require.NoError(t, err)

	inner.Err = errors.New("connection reset")
	require.Error(t, svc.Delete(ctx, "k"))

	lines := readLines(t, &buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "DEBUG", lines[0].Level)
	assert.Equal(t, "Set key completed successfully", lines[0].Msg)
	assert.Equal(t, "k", lines[0].Key)
	assert.NotEmpty(t, lines[0].Duration)

	require.NotNil(t, lines[1].Found)
	assert.True(t, *lines[1].Found)
	assert.Equal(t, "k*", lines[2].Pattern)

	assert.Equal(t, "WARN", lines[3].Level)
	assert.Equal(t, "Delete key failed", lines[3].Msg)
	assert.Contains(t, lines[3].Error, "connection reset")
}

func TestLoggingMiddleware_DoesNotLogValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := middleware.LoggingMiddleware(mocks.NewService(), logger)

	secret := "__SECRET_VALUE__"
	require.NoError(t, svc.Put(context.Background(), "k", secret))
	assert.NotContains(t, buf.String(), secret)
}

type fakeCounter struct {
	lvs    []string
	counts map[string]float64
}

func (c *fakeCounter) With(lvs ...string) metrics.Counter {
	return &fakeCounter{lvs: lvs, counts: c.counts}
}

func (c *fakeCounter) Add(delta float64) { c.counts[strings.Join(c.lvs, "=")] += delta }

type fakeHistogram struct {
	lvs []string
	obs map[string][]float64
}

func (h *fakeHistogram) With(lvs ...string) metrics.Histogram {
	return &fakeHistogram{lvs: lvs, obs: h.obs}
}

func (h *fakeHistogram) Observe(v float64) {
	k := strings.Join(h.lvs, "=")
	h.obs[k] = append(h.obs[k], v)
}

func TestMetricsMiddleware(t *testing.T) {
	counter := &fakeCounter{counts: map[string]float64{}}
	latency := &fakeHistogram{obs: map[string][]float64{}}
	inner := mocks.NewService()
	svc := middleware.MetricsMiddleware(inner, counter, latency)
	ctx := context.Background()

	require.NoError(t, svc.Put(ctx, "a", "1"))
	require.NoError(t, svc.Put(ctx, "b", "2"))
	_, _, _ = svc.Get(ctx, "a")
	_ = svc.Delete(ctx, "a")
	_, _ = svc.ListKeys(ctx, "*")
	_ = svc.Ping(ctx)

	// Failures are counted too.
	inner.Err = errors.New("boom")
	_ = svc.Put(ctx, "c", "3")

	assert.Equal(t, float64(3), counter.counts["method="+store.OpPut])
	assert.Equal(t, float64(1), counter.counts["method="+store.OpGet])
	assert.Equal(t, float64(1), counter.counts["method="+store.OpDelete])
	assert.Equal(t, float64(1), counter.counts["method="+store.OpListKeys])
	assert.Equal(t, float64(1), counter.counts["method=ping"])
	assert.Len(t, latency.obs["method="+store.OpPut], 3)
	for _, v := range latency.obs["method="+store.OpPut] {
		assert.GreaterOrEqual(t, v, float64(0))
	}
}
