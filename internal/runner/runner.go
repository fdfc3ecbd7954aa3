package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/petasbytes/redis-mcp/internal/telemetry"
	"github.com/petasbytes/redis-mcp/internal/windowing"
	"github.com/petasbytes/redis-mcp/tools"
)

const defaultMaxTokens = 1024

type Runner struct {
	Client     *anthropic.Client
	Dispatcher *tools.Dispatcher
	MaxTokens  int64

	// TokenBudget bounds the estimated size of the messages sent. Zero
	// sends the whole conversation.
	TokenBudget int
	// Out receives assistant text. Defaults to stdout.
	Out         io.Writer
}

func New(client *anthropic.Client, d *tools.Dispatcher) *Runner {
	return &Runner{Client: client, Dispatcher: d, MaxTokens: defaultMaxTokens, Out: os.Stdout}
}

func (r *Runner) anthropicTools() []anthropic.ToolUnionParam {
	defs := r.Dispatcher.Definitions()
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, t := range defs {
		schema := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}
		if t.InputSchema != nil {
			if t.InputSchema.Properties != nil {
				schema.Properties = t.InputSchema.Properties
			}
			schema.Required = t.InputSchema.Required
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		}})
	}
	return out
}

// RunOneStep sends the conversation, prints any text and returns the tool
// results to append as the next user message. No results means the assistant
// turn is over.
func (r *Runner) RunOneStep(ctx context.Context, model anthropic.Model, conv []anthropic.MessageParam) (*anthropic.Message, []anthropic.ContentBlockParamUnion, error) {
	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	window := conv
	if r.TokenBudget > 0 {
		var stats windowing.Stats
		window, stats = windowing.Fit(conv, r.TokenBudget)
		switch {
		case stats.NewestTooLarge:
			return nil, nil, fmt.Errorf("newest turn exceeds token budget %d", r.TokenBudget)
		case len(window) == 0 && len(conv) > 0:
			return nil, nil, fmt.Errorf("no user turn fits token budget %d", r.TokenBudget)
		}
	}

	msg, err := r.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  window,
		Tools:     r.anthropicTools(),
	})
	if err != nil {
		return nil, nil, err
	}

	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	toolResults := []anthropic.ContentBlockParamUnion{}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			fmt.Fprintf(out, "\u001b[93mClaude\u001b[0m: %s\n", v.Text)
		case anthropic.ToolUseBlock:
			input := json.RawMessage(v.JSON.Input.Raw())
			toolResults = append(toolResults, r.execTool(ctx, v.ID, v.Name, input))
		}
	}
	return msg, toolResults, nil
}

// execTool runs one tool_use. Failures, unknown tools included, become
// is_error results carrying the ToolError body.
func (r *Runner) execTool(ctx context.Context, id, name string, input json.RawMessage) anthropic.ContentBlockParamUnion {
	ctx = telemetry.WithCallID(ctx, id)
	resp, err := r.Dispatcher.Invoke(ctx, name, input)
	if err != nil {
		return anthropic.NewToolResultBlock(id, err.Error(), true)
	}
	return anthropic.NewToolResultBlock(id, resp, false)
}
