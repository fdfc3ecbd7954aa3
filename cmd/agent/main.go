// Command agent is a local chat loop that lets an Anthropic model drive the
// Redis key tools directly, without an MCP host.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/petasbytes/redis-mcp/internal/config"
	mcplog "github.com/petasbytes/redis-mcp/internal/logger"
	"github.com/petasbytes/redis-mcp/internal/provider"
	"github.com/petasbytes/redis-mcp/internal/runner"
	"github.com/petasbytes/redis-mcp/internal/telemetry"
	"github.com/petasbytes/redis-mcp/memory"
	"github.com/petasbytes/redis-mcp/store"
	"github.com/petasbytes/redis-mcp/store/middleware"
	"github.com/petasbytes/redis-mcp/tools"
)

func main() {
	cfg, err := config.LoadAgent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load agent configuration: %s\n", err)
		os.Exit(1)
	}
	if cfg.APIKey == "" {
		fmt.Println("Missing ANTHROPIC_API_KEY; export it before running.")
		os.Exit(1)
	}

	logger, err := mcplog.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %s\n", err)
		os.Exit(1)
	}

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rs, err := store.New(ctx, cfg.Store)
	if err != nil {
		logger.Error("Failed to connect to Redis", slog.String("addr", cfg.Store.Addr()), slog.Any("error", err))
		os.Exit(1)
	}
	defer rs.Close()
	svc := middleware.LoggingMiddleware(rs, logger)

	d, err := tools.NewDispatcher(
		tools.Registry(svc, logger),
		tools.WithLogger(logger),
		tools.WithEmitter(telemetry.NewEmitter(cfg.EventsPath, logger)),
	)
	if err != nil {
		logger.Error("Failed to build tool registry", slog.Any("error", err))
		os.Exit(1)
	}

	// Load prior conversation if any
	persisted, err := memory.LoadConversation(ctx, rs, cfg.ConversationKey)
	if err != nil {
		logger.Warn("Failed to load persisted conversation", slog.String("key", cfg.ConversationKey), slog.Any("error", err))
	}

	r := runner.New(provider.NewAnthropicClient(cfg.APIKey), d)
	r.MaxTokens = cfg.MaxTokens
	r.TokenBudget = cfg.TokenBudget
	model := provider.Model(cfg.Model)

	// Build SDK conversation from persisted messages text
	conv := make([]anthropic.MessageParam, 0, len(persisted))
	for _, m := range persisted {
		if m.Role == "user" {
			conv = append(conv, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Text)))
		} else {
			conv = append(conv, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Text)))
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Chat with Claude about your Redis keys (Ctrl-C to quit)")

	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

outer:
	for {
		fmt.Print("\u001b[94mYou\u001b[0m: ")
		var (
			user string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Println("\nExiting...")
			break outer
		case user, ok = <-inputCh:
			if !ok {
				break outer
			}
		}
		conv = append(conv, anthropic.NewUserMessage(anthropic.NewTextBlock(user)))

		var assistantText []string
		for {
			msg, toolResults, err := r.RunOneStep(ctx, model, conv)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				break
			}
			conv = append(conv, msg.ToParam())
			for _, b := range msg.Content {
				if tb, ok := b.AsAny().(anthropic.TextBlock); ok && tb.Text != "" {
					assistantText = append(assistantText, tb.Text)
				}
			}
			if len(toolResults) == 0 {
				break
			}
			conv = append(conv, anthropic.NewUserMessage(toolResults...))
		}

		persisted = append(persisted, memory.Message{Role: "user", Text: user})
		if text := strings.TrimSpace(strings.Join(assistantText, "\n")); text != "" {
			persisted = append(persisted, memory.Message{Role: "assistant", Text: text})
		}
		if err := memory.SaveConversation(ctx, rs, cfg.ConversationKey, persisted); err != nil {
			logger.Warn("Failed to save conversation", slog.String("key", cfg.ConversationKey), slog.Any("error", err))
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("stdin read error", slog.Any("error", err))
	}
}
