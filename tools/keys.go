package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/petasbytes/redis-mcp/store"
)

// Tool names. They are part of the external contract.
const (
	SetKeyName    = "set_redis_key"
	GetKeyName    = "get_redis_key"
	DeleteKeyName = "delete_redis_key"
	ListKeysName  = "list_redis_keys"
)

type SetKeyInput struct {
	Key   string `json:"key" jsonschema_description:"Key to write. Must be non-empty."`
	Value string `json:"value" jsonschema_description:"Value to store; replaces any existing value."`
}

type GetKeyInput struct {
	Key string `json:"key" jsonschema_description:"Key to read. Must be non-empty."`
}

type DeleteKeyInput struct {
	Key string `json:"key" jsonschema_description:"Key to delete. Deleting a missing key succeeds."`
}

type ListKeysInput struct {
	Pattern string `json:"pattern,omitempty" jsonschema:"default=*" jsonschema_description:"Glob pattern (*, ?, [...]); defaults to *."`
}

var (
	SetKeyInputSchema    = GenerateSchema[SetKeyInput]()
	GetKeyInputSchema    = GenerateSchema[GetKeyInput]()
	DeleteKeyInputSchema = GenerateSchema[DeleteKeyInput]()
	ListKeysInputSchema  = GenerateSchema[ListKeysInput]()
)

// keyTools binds the Redis tools to a store.
type keyTools struct {
	svc    store.Service
	logger *slog.Logger
}

func (kt keyTools) definitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        SetKeyName,
			Description: "Set a key-value pair in Redis. Existing values are overwritten.",
			InputSchema: SetKeyInputSchema,
			Function:    kt.SetKey,
		},
		{
			Name:        GetKeyName,
			Description: "Retrieve a value from Redis by key. Reports when the key does not exist.",
			InputSchema: GetKeyInputSchema,
			Function:    kt.GetKey,
		},
		{
			Name:        DeleteKeyName,
			Description: "Delete a key from Redis. Succeeds whether or not the key existed.",
			InputSchema: DeleteKeyInputSchema,
			Function:    kt.DeleteKey,
		},
		{
			Name:        ListKeysName,
			Description: "List all keys in Redis matching a glob pattern (default *).",
			InputSchema: ListKeysInputSchema,
			Function:    kt.ListKeys,
		},
	}
}

func (kt keyTools) SetKey(ctx context.Context, input json.RawMessage) (string, error) {
	var in SetKeyInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	if in.Key == "" {
		return "", invalidInput("key must not be empty")
	}

	if err := kt.svc.Put(ctx, in.Key, in.Value); err != nil {
		return "", kt.failure(ctx, SetKeyName, fmt.Sprintf("set key '%s'", in.Key), err)
	}
	kt.logger.InfoContext(ctx, "Successfully set key", slog.String("key", in.Key))
	return fmt.Sprintf("Key '%s' set to '%s'", in.Key, in.Value), nil
}

func (kt keyTools) GetKey(ctx context.Context, input json.RawMessage) (string, error) {
	var in GetKeyInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	if in.Key == "" {
		return "", invalidInput("key must not be empty")
	}

	value, found, err := kt.svc.Get(ctx, in.Key)
	if err != nil {
		return "", kt.failure(ctx, GetKeyName, fmt.Sprintf("get key '%s'", in.Key), err)
	}
	if !found {
		kt.logger.WarnContext(ctx, "Key not found", slog.String("key", in.Key))
		return fmt.Sprintf("Key '%s' not found", in.Key), nil
	}
	kt.logger.InfoContext(ctx, "Successfully retrieved key", slog.String("key", in.Key))
	return fmt.Sprintf("Value for '%s': %s", in.Key, value), nil
}

func (kt keyTools) DeleteKey(ctx context.Context, input json.RawMessage) (string, error) {
	var in DeleteKeyInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	if in.Key == "" {
		return "", invalidInput("key must not be empty")
	}

	if err := kt.svc.Delete(ctx, in.Key); err != nil {
		return "", kt.failure(ctx, DeleteKeyName, fmt.Sprintf("delete key '%s'", in.Key), err)
	}
	kt.logger.InfoContext(ctx, "Successfully deleted key", slog.String("key", in.Key))
	return fmt.Sprintf("Key '%s' deleted", in.Key), nil
}

func (kt keyTools) ListKeys(ctx context.Context, input json.RawMessage) (string, error) {
	var in ListKeysInput
	if err := decode(input, &in); err != nil {
		return "", err
	}
	pattern := in.Pattern
	if pattern == "" {
		pattern = store.DefaultPattern
	}

	keys, err := kt.svc.ListKeys(ctx, pattern)
	if err != nil {
		return "", kt.failure(ctx, ListKeysName, fmt.Sprintf("list keys matching pattern '%s'", pattern), err)
	}
	if len(keys) == 0 {
		kt.logger.InfoContext(ctx, "No keys found", slog.String("pattern", pattern))
		return fmt.Sprintf("No keys found matching pattern '%s'", pattern), nil
	}
	// Store enumeration order is arbitrary; sort for stable output.
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	kt.logger.InfoContext(ctx, "Successfully listed keys", slog.String("pattern", pattern), slog.Int("count", len(sorted)))
	return "Keys in Redis: " + strings.Join(sorted, ", "), nil
}

// failure logs a store failure at error severity and converts it into the
// uniform ToolError.
func (kt keyTools) failure(ctx context.Context, tool, what string, err error) error {
	cause := err
	var opErr *store.OperationError
	if errors.As(err, &opErr) && opErr.Err != nil {
		cause = opErr.Err
	}
	kt.logger.ErrorContext(ctx, "Store operation failed",
		slog.String("tool", tool),
		slog.String("operation", what),
		slog.Any("error", cause),
	)
	return ToolError{Code: CodeStoreOperation, Message: fmt.Sprintf("failed to %s: %v", what, cause)}
}

// decode treats empty input as an empty object.
func decode(input json.RawMessage, v any) error {
	if len(strings.TrimSpace(string(input))) == 0 {
		input = json.RawMessage("{}")
	}
	if err := json.Unmarshal(input, v); err != nil {
		return invalidInput(fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}
