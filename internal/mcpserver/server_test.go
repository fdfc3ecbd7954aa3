package mcpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/petasbytes/redis-mcp/internal/logger"
	"github.com/petasbytes/redis-mcp/internal/mcpserver"
	"github.com/petasbytes/redis-mcp/store/mocks"
	"github.com/petasbytes/redis-mcp/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type callResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

func newServer(t *testing.T) (*mcpserver.Server, *mocks.Service) {
	t.Helper()
	svc := mocks.NewService()
	d, err := tools.NewDispatcher(tools.Registry(svc, logger.NewMock()), tools.WithLogger(logger.NewMock()))
	require.NoError(t, err)
	s, err := mcpserver.New(d, logger.NewMock(), "RedisServer", "test")
	require.NoError(t, err)

	initReq := `{"jsonrpc":"2.0","id":0,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`
	resp := roundTrip(t, s, initReq)
	require.Nil(t, resp.Error)
	return s, svc
}

func roundTrip(t *testing.T, s *mcpserver.Server, req string) rpcResponse {
	t.Helper()
	msg := s.MCP().HandleMessage(context.Background(), json.RawMessage(req))
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	var resp rpcResponse
	require.NoError(t, json.Unmarshal(b, &resp), "raw=%s", b)
	return resp
}

func callTool(t *testing.T, s *mcpserver.Server, name string, args map[string]any) callResult {
	t.Helper()
	params, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	require.NoError(t, err)
	resp := roundTrip(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":`+string(params)+`}`)
	require.Nil(t, resp.Error, "tool failures must be results, not protocol errors")

	var res callResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	return res
}

func TestToolsList(t *testing.T) {
	s, _ := newServer(t)
	resp := roundTrip(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Nil(t, resp.Error)

	var res struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema struct {
				Type       string                     `json:"type"`
				Properties map[string]json.RawMessage `json:"properties"`
				Required   []string                   `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &res))

	names := map[string][]string{}
	for _, tool := range res.Tools {
		assert.Equal(t, "object", tool.InputSchema.Type)
		assert.NotEmpty(t, tool.Description)
		names[tool.Name] = tool.InputSchema.Required
	}
	assert.Equal(t, map[string][]string{
		"set_redis_key":    {"key", "value"},
		"get_redis_key":    {"key"},
		"delete_redis_key": {"key"},
		"list_redis_keys":  nil,
	}, names)
}

func TestToolsCall_Scenario(t *testing.T) {
	s, _ := newServer(t)

	res := callTool(t, s, "set_redis_key", map[string]any{"key": "session:42", "value": "active"})
	assert.False(t, res.IsError)
	assert.Equal(t, "Key 'session:42' set to 'active'", res.Content[0].Text)

	res = callTool(t, s, "get_redis_key", map[string]any{"key": "session:42"})
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "active")

	res = callTool(t, s, "delete_redis_key", map[string]any{"key": "session:42"})
	assert.False(t, res.IsError)
	assert.Equal(t, "Key 'session:42' deleted", res.Content[0].Text)

	res = callTool(t, s, "get_redis_key", map[string]any{"key": "session:42"})
	assert.False(t, res.IsError, "not found is a successful result")
	assert.Equal(t, "Key 'session:42' not found", res.Content[0].Text)

	res = callTool(t, s, "list_redis_keys", map[string]any{"pattern": "session:*"})
	assert.False(t, res.IsError)
	assert.Equal(t, "No keys found matching pattern 'session:*'", res.Content[0].Text)
}

func TestToolsCall_ListDefaultsToStar(t *testing.T) {
	s, _ := newServer(t)
	for _, k := range []string{"a", "b", "c"} {
		callTool(t, s, "set_redis_key", map[string]any{"key": k, "value": "1"})
	}
	res := callTool(t, s, "list_redis_keys", nil)
	assert.False(t, res.IsError)
	assert.Equal(t, "Keys in Redis: a, b, c", res.Content[0].Text)
}

func TestToolsCall_StoreFailureIsErrorResult(t *testing.T) {
	s, svc := newServer(t)
	svc.Err = errors.New("i/o timeout")

	res := callTool(t, s, "set_redis_key", map[string]any{"key": "k", "value": "v"})
	assert.True(t, res.IsError)

	var te tools.ToolError
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &te))
	assert.Equal(t, tools.CodeStoreOperation, te.Code)
	assert.Equal(t, "failed to set key 'k': i/o timeout", te.Message)
}

func TestToolsCall_InvalidInputIsErrorResult(t *testing.T) {
	s, svc := newServer(t)
	res := callTool(t, s, "get_redis_key", map[string]any{"key": ""})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, tools.CodeInvalidInput)
	assert.Empty(t, svc.Calls())
}

func TestServe_UnsupportedTransport(t *testing.T) {
	s, _ := newServer(t)
	err := s.Serve(context.Background(), "carrier-pigeon", ":0", strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport")
}

func TestServe_StdioStopsOnCancel(t *testing.T) {
	s, _ := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// An already cancelled context ends the stdio loop cleanly.
	err := s.Serve(ctx, "stdio", "", strings.NewReader(""), &bytes.Buffer{})
	assert.NoError(t, err)
}
