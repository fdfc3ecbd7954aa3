// Package mcpserver exposes a tools.Dispatcher over the Model Context Protocol.
//
// Every registered tool becomes an MCP tool with the same name and JSON input
// schema. Tool failures are returned as isError results carrying the
// ToolError body, so no Go error crosses into the transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/petasbytes/redis-mcp/internal/config"
	"github.com/petasbytes/redis-mcp/internal/telemetry"
	"github.com/petasbytes/redis-mcp/tools"
)

const shutdownTimeout = 5 * time.Second

// Server binds a dispatcher to an MCP server.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *tools.Dispatcher
	logger     *slog.Logger
	calls      atomic.Uint64
}

// New registers every dispatcher tool with a new MCP server.
func New(d *tools.Dispatcher, logger *slog.Logger, name, version string) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcp:        server.NewMCPServer(name, version, server.WithToolCapabilities(false), server.WithRecovery()),
		dispatcher: d,
		logger:     logger,
	}
	for _, def := range d.Definitions() {
		schema, err := def.RawInputSchema()
		if err != nil {
			return nil, fmt.Errorf("tool %q schema: %w", def.Name, err)
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(def.Name, def.Description, schema), s.handle(def.Name))
	}
	return s, nil
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

func (s *Server) handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := json.Marshal(req.GetArguments())
		if err != nil {
			te := tools.ToolError{Code: tools.CodeInvalidInput, Message: err.Error()}
			return mcp.NewToolResultError(te.Error()), nil
		}

		ctx = telemetry.WithCallID(ctx, fmt.Sprintf("call-%d-%d", time.Now().UnixNano(), s.calls.Add(1)))
		out, err := s.dispatcher.Invoke(ctx, name, input)
		if err != nil {
			return mcp.NewToolResultError(tools.AsToolError(err).Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// Serve runs the chosen transport until ctx is done or the transport stops.
// stdio reads requests from stdin and writes responses to stdout; sse and
// http listen on addr.
func (s *Server) Serve(ctx context.Context, transport, addr string, stdin io.Reader, stdout io.Writer) error {
	s.logger.Info("Starting Redis MCP server", slog.String("transport", transport))
	switch transport {
	case config.TransportStdio, "":
		stdio := server.NewStdioServer(s.mcp)
		stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
		err := stdio.Listen(ctx, stdin, stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio transport: %w", err)
		}
		return nil
	case config.TransportSSE:
		sse := server.NewSSEServer(s.mcp)
		return s.serveHTTP(ctx, addr, sse.Start, sse.Shutdown)
	case config.TransportHTTP:
		h := server.NewStreamableHTTPServer(s.mcp)
		return s.serveHTTP(ctx, addr, h.Start, h.Shutdown)
	default:
		return fmt.Errorf("unsupported transport %q", transport)
	}
}

func (s *Server) serveHTTP(ctx context.Context, addr string, start func(string) error, shutdown func(context.Context) error) error {
	s.logger.Info("Listening", slog.String("addr", addr))
	errCh := make(chan error, 1)
	go func() { errCh <- start(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return shutdown(shutdownCtx)
	}
}
