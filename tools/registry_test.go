package tools_test

import (
	"encoding/json"
	"testing"

	"github.com/petasbytes/redis-mcp/internal/logger"
	"github.com/petasbytes/redis-mcp/store/mocks"
	"github.com/petasbytes/redis-mcp/tools"
)

func TestRegistry_ToolNames(t *testing.T) {
	defs := tools.Registry(mocks.NewService(), logger.NewMock())
	want := map[string]struct{}{
		"set_redis_key":    {},
		"get_redis_key":    {},
		"delete_redis_key": {},
		"list_redis_keys":  {},
	}
	if len(defs) != len(want) {
		t.Fatalf("unexpected number of tools: got %d want %d", len(defs), len(want))
	}

	got := map[string]struct{}{}
	for _, d := range defs {
		if _, ok := want[d.Name]; !ok {
			t.Errorf("unexpected tool in registry: %q", d.Name)
		}
		if d.Description == "" || d.InputSchema == nil || d.Function == nil {
			t.Errorf("tool %q is incomplete", d.Name)
		}
		got[d.Name] = struct{}{}
	}
	for name := range want {
		if _, ok := got[name]; !ok {
			t.Errorf("missing expected tool: %q", name)
		}
	}
}

func TestRegistry_InputSchemas(t *testing.T) {
	tests := []struct {
		tool     string
		props    []string
		required []string
	}{
		{"set_redis_key", []string{"key", "value"}, []string{"key", "value"}},
		{"get_redis_key", []string{"key"}, []string{"key"}},
		{"delete_redis_key", []string{"key"}, []string{"key"}},
		{"list_redis_keys", []string{"pattern"}, nil},
	}

	byName := map[string]tools.ToolDefinition{}
	for _, d := range tools.Registry(mocks.NewService(), nil) {
		byName[d.Name] = d
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			raw, err := byName[tt.tool].RawInputSchema()
			if err != nil {
				t.Fatalf("schema: %v", err)
			}
			var s struct {
				Type       string                     `json:"type"`
				Properties map[string]json.RawMessage `json:"properties"`
				Required   []string                   `json:"required"`
				Schema     string                     `json:"$schema"`
			}
			if err := json.Unmarshal(raw, &s); err != nil {
				t.Fatalf("invalid schema JSON: %v; raw=%s", err, raw)
			}
			if s.Type != "object" {
				t.Errorf("type: want object, got %q", s.Type)
			}
			if s.Schema != "" {
				t.Errorf("unexpected $schema envelope: %q", s.Schema)
			}
			if len(s.Properties) != len(tt.props) {
				t.Errorf("properties: want %v, got %s", tt.props, raw)
			}
			for _, p := range tt.props {
				if _, ok := s.Properties[p]; !ok {
					t.Errorf("missing property %q", p)
				}
			}
			if len(s.Required) != len(tt.required) {
				t.Fatalf("required: want %v, got %v", tt.required, s.Required)
			}
			for i := range tt.required {
				if s.Required[i] != tt.required[i] {
					t.Errorf("required[%d]: want %q, got %q", i, tt.required[i], s.Required[i])
				}
			}
		})
	}
}

func TestRawInputSchema_EmptyStruct(t *testing.T) {
	d := tools.ToolDefinition{Name: "noop", InputSchema: tools.GenerateSchema[struct{}]()}
	raw, err := d.RawInputSchema()
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["properties"].(map[string]any); !ok {
		t.Fatalf("expected properties object, got %s", raw)
	}
	if _, ok := m["required"]; ok {
		t.Fatalf("unexpected required list: %s", raw)
	}
}
