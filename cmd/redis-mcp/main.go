// Command redis-mcp serves Redis key operations as MCP tools.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/petasbytes/redis-mcp/internal/config"
	mcplog "github.com/petasbytes/redis-mcp/internal/logger"
	"github.com/petasbytes/redis-mcp/internal/mcpserver"
	"github.com/petasbytes/redis-mcp/internal/metrics"
	"github.com/petasbytes/redis-mcp/internal/telemetry"
	"github.com/petasbytes/redis-mcp/store"
	"github.com/petasbytes/redis-mcp/store/middleware"
	"github.com/petasbytes/redis-mcp/tools"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	svcName    = "RedisServer"
	svcVersion = "0.1.0"
	namespace  = "redis_mcp"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var transport, addr string

	cmd := &cobra.Command{
		Use:           "redis-mcp",
		Short:         "Serve Redis key operations as MCP tools",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(stderr, "failed to load %s configuration: %s\n", svcName, err)
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.Transport = transport
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintln(stderr, err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, stdin, stdout, stderr)
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", config.TransportStdio, "MCP transport: stdio, sse or http")
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8000", "Listen address for the sse and http transports")
	return cmd
}

func run(ctx context.Context, cfg config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	// stdout carries MCP framing on stdio, so logs always go to stderr.
	logger, err := mcplog.New(stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "failed to init logger: %s\n", err)
		return err
	}

	var opts []store.Option
	if cfg.PoolSize > 0 {
		opts = append(opts, store.WithPoolSize(cfg.PoolSize))
	}
	rs, err := store.New(ctx, cfg.Store, opts...)
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("Server stopped by user")
			return nil
		}
		logger.Error("Failed to connect to Redis",
			slog.String("addr", cfg.Store.Addr()),
			slog.Int("db", cfg.Store.DB),
			slog.Any("error", err))
		return err
	}
	defer rs.Close()
	logger.Info("Connected to Redis", slog.String("addr", rs.Config().Addr()), slog.Int("db", rs.Config().DB))

	var svc store.Service = rs
	counter, latency := metrics.MakeMetrics(namespace, "store")
	svc = middleware.MetricsMiddleware(svc, counter, latency)
	svc = middleware.LoggingMiddleware(svc, logger)

	d, err := tools.NewDispatcher(
		tools.Registry(svc, logger),
		tools.WithLogger(logger),
		tools.WithEmitter(telemetry.NewEmitter(cfg.EventsPath, logger)),
	)
	if err != nil {
		logger.Error("Failed to build tool registry", slog.Any("error", err))
		return err
	}

	srv, err := mcpserver.New(d, logger, svcName, svcVersion)
	if err != nil {
		logger.Error("Failed to register tools", slog.Any("error", err))
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			logger.Info("Serving metrics", slog.String("addr", cfg.MetricsAddr))
			return metrics.Serve(ctx, cfg.MetricsAddr)
		})
	}
	g.Go(func() error {
		// stdio ends on EOF; stop the metrics listener with it.
		defer cancel()
		return srv.Serve(ctx, cfg.Transport, cfg.Addr, stdin, stdout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped", slog.Any("error", err))
		return err
	}
	logger.Info("Shutting down")
	return nil
}
