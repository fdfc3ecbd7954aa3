// Package telemetry appends tool execution events to a JSONL file.
//
// Events carry sizes, durations and error codes only. Tool inputs and outputs
// are never written.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Emitter writes one JSON object per line to path. A nil Emitter, or one
// with an empty path, discards events.
type Emitter struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewEmitter returns an Emitter appending to path.
func NewEmitter(path string, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{path: path, logger: logger}
}

// Enabled reports whether events are written.
func (e *Emitter) Enabled() bool {
	return e != nil && e.path != ""
}

// Emit augments fields with RFC3339Nano time and the event name and appends
// them as a single line. Write failures are logged, never returned.
func (e *Emitter) Emit(name string, fields map[string]any) {
	if !e.Enabled() {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		e.logger.Warn("telemetry: marshal event", slog.String("event", name), slog.Any("error", err))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.append(append(b, '\n')); err != nil {
		e.logger.Warn("telemetry: write event", slog.String("path", e.path), slog.Any("error", err))
	}
}

func (e *Emitter) append(line []byte) error {
	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(line)
	return err
}
