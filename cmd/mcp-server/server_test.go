package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gowick"
	"github.com/njchilds90/gowick/internal/config"
	"github.com/njchilds90/gowick/internal/logging"
	"github.com/njchilds90/gowick/internal/metrics"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newMux(config.Default(), logging.Nop(), metrics.New()))
	t.Cleanup(srv.Close)
	return srv
}

func postTool(t *testing.T, url, body string) (*http.Response, gowick.ToolResponse) {
	t.Helper()
	resp, err := http.Post(url+"/tool", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out gowick.ToolResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestTool_SessionFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, out := postTool(t, srv.URL, `{"tool":"add_space","params":{"label":"o","type":"occupied","indices":["i","j","k"]}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, out.Error)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	_, out = postTool(t, srv.URL, `{"tool":"add_space","params":{"label":"v","type":"unoccupied","indices":["a","b","c"]}}`)
	require.Empty(t, out.Error)

	_, out = postTool(t, srv.URL, `{"tool":"contract","params":{
		"expr":{"product":[{"op":{"label":"f","components":["o+ v"]}},{"op":{"label":"t","components":["v+ o"]}}]},
		"min_rank":0,"max_rank":0}}`)
	require.Empty(t, out.Error)
	assert.Equal(t, "f^{v0}_{o0} t^{o0}_{v0}", out.String)
}

func TestTool_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `{"tool":"spaces","extra":1}`},
		{"trailing data", `{"tool":"spaces"} {"tool":"spaces"}`},
		{"not json", `tool=spaces`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postTool(t, srv.URL, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestTool_UnknownTool(t *testing.T) {
	srv := newTestServer(t)
	_, out := postTool(t, srv.URL, `{"tool":"integrate","params":{}}`)
	assert.Contains(t, out.Error, "unknown tool")
}

func TestTool_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/tool")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSchemaHealthMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	var schema map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&schema))
	resp.Body.Close()
	assert.Len(t, schema["tools"], len(gowick.ToolSchemas()))

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])

	postTool(t, srv.URL, `{"tool":"spaces","params":{}}`)
	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var b strings.Builder
	_, _ = io.Copy(&b, resp.Body)
	assert.Contains(t, b.String(), `wick_tool_calls_total{result="ok",tool="spaces"} 1`)
}
