package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/petasbytes/redis-mcp/internal/telemetry"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithEmitter records a tool_exec event for every invocation.
func WithEmitter(e *telemetry.Emitter) Option {
	return func(d *Dispatcher) { d.events = e }
}

// Dispatcher routes invocations by tool name. It is immutable after
// NewDispatcher and safe for concurrent use.
type Dispatcher struct {
	defs   []ToolDefinition
	byName map[string]int
	logger *slog.Logger
	events *telemetry.Emitter
}

// NewDispatcher builds the name table. Names must be unique and non-empty
// and every definition needs a Function.
func NewDispatcher(defs []ToolDefinition, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		defs:   append([]ToolDefinition(nil), defs...),
		byName: make(map[string]int, len(defs)),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	for i, def := range d.defs {
		switch {
		case def.Name == "":
			return nil, fmt.Errorf("tool %d: empty name", i)
		case def.Function == nil:
			return nil, fmt.Errorf("tool %q: nil function", def.Name)
		}
		if _, dup := d.byName[def.Name]; dup {
			return nil, fmt.Errorf("tool %q registered twice", def.Name)
		}
		d.byName[def.Name] = i
	}
	return d, nil
}

// Definitions returns the registered tools in registration order.
func (d *Dispatcher) Definitions() []ToolDefinition {
	return append([]ToolDefinition(nil), d.defs...)
}

// Lookup returns the definition registered under name.
func (d *Dispatcher) Lookup(name string) (ToolDefinition, bool) {
	i, ok := d.byName[name]
	if !ok {
		return ToolDefinition{}, false
	}
	return d.defs[i], true
}

// Invoke runs the named tool. Any failure is returned as a ToolError.
func (d *Dispatcher) Invoke(ctx context.Context, name string, input json.RawMessage) (string, error) {
	start := time.Now()

	def, ok := d.Lookup(name)
	if !ok {
		err := ToolError{Code: CodeUnknownTool, Message: fmt.Sprintf("tool %q not found", name)}
		d.logger.WarnContext(ctx, "Unknown tool", slog.String("tool", name))
		d.emit(ctx, name, start, len(input), 0, err)
		return "", err
	}

	out, err := def.Function(ctx, input)
	if err != nil {
		te := AsToolError(err)
		if !errors.As(err, new(ToolError)) {
			d.logger.ErrorContext(ctx, "Tool failed", slog.String("tool", name), slog.Any("error", err))
		}
		d.emit(ctx, name, start, len(input), 0, te)
		return "", te
	}
	d.emit(ctx, name, start, len(input), len(out), nil)
	return out, nil
}

// emit records sizes and the error code only; payloads stay out of telemetry.
func (d *Dispatcher) emit(ctx context.Context, name string, start time.Time, inSize, outSize int, err error) {
	if !d.events.Enabled() {
		return
	}
	callID, _ := telemetry.CallIDFromContext(ctx)
	fields := map[string]any{
		"tool_name":   name,
		"duration_ms": time.Since(start).Milliseconds(),
		"input_size":  inSize,
		"output_size": outSize,
		"call_id":     callID,
		"error":       nil,
	}
	var te ToolError
	if errors.As(err, &te) {
		fields["error"] = te.Code
	}
	d.events.Emit("tool_exec", fields)
}
