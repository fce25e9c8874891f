package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gowick"
)

type countingObserver struct {
	ok, failed int
}

func (c *countingObserver) ToolCall(_ string, failed bool) {
	if failed {
		c.failed++
	} else {
		c.ok++
	}
}

func call(t *testing.T, s *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := s.handler(name)(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "want text content, got %T", res.Content[0])
	return tc.Text
}

func TestDefinition(t *testing.T) {
	for _, spec := range gowick.ToolSchemas() {
		tool := Definition(spec)
		assert.Equal(t, spec.Name, tool.Name)
		assert.Len(t, tool.InputSchema.Properties, len(spec.Properties), spec.Name)
		assert.ElementsMatch(t, spec.Required, tool.InputSchema.Required, spec.Name)
	}
}

func TestHandler_Contract(t *testing.T) {
	obs := &countingObserver{}
	s := New(gowick.NewSession(gowick.WithSingleThreaded(true)), nil, obs)

	call(t, s, "add_space", map[string]interface{}{"label": "o", "type": "occupied", "indices": []interface{}{"i", "j", "k"}})
	call(t, s, "add_space", map[string]interface{}{"label": "v", "type": "unoccupied", "indices": []interface{}{"a", "b", "c"}})

	res := call(t, s, "contract", map[string]interface{}{
		"expr": map[string]interface{}{"product": []interface{}{
			map[string]interface{}{"op": map[string]interface{}{"label": "f", "components": []interface{}{"o+ v"}}},
			map[string]interface{}{"op": map[string]interface{}{"label": "t", "components": []interface{}{"v+ o"}}},
		}},
		"min_rank": float64(0),
		"max_rank": float64(0),
	})
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "f^{v0}_{o0} t^{o0}_{v0}")
	assert.Equal(t, 3, obs.ok)
}

func TestHandler_Error(t *testing.T) {
	obs := &countingObserver{}
	s := New(gowick.NewSession(), nil, obs)

	res := call(t, s, "add_space", map[string]interface{}{"label": "o", "type": "full", "indices": []interface{}{"i"}})
	assert.True(t, res.IsError)
	assert.Equal(t, 1, obs.failed)
}

func TestHandler_StringOnly(t *testing.T) {
	s := New(gowick.NewSession(), nil, nil)
	res := call(t, s, "mcp_spec", nil)
	assert.Contains(t, text(t, res), `"tools"`)
}
