package tools

import (
	"log/slog"

	"github.com/petasbytes/redis-mcp/store"
)

// Registry returns all tool definitions bound to svc.
func Registry(svc store.Service, logger *slog.Logger) []ToolDefinition {
	if logger == nil {
		logger = slog.Default()
	}
	return keyTools{svc: svc, logger: logger}.definitions()
}
