// Package tools defines the Redis tool contracts and their dispatcher.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Redis tools: set_redis_key, get_redis_key, delete_redis_key, list_redis_keys.
//   - Dispatcher: name -> handler table built once at startup.
//
// Every handler returns either a human-readable string or a ToolError. A
// missing key or an empty match is a successful result, not an error.
package tools
