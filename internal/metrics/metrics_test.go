package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gowick"
)

var _ gowick.Observer = (*Metrics)(nil)

func TestContractionDone(t *testing.T) {
	m := New()
	m.ContractionDone(2, 5, 3, 10*time.Millisecond)
	m.ContractionDone(1, 1, 1, time.Millisecond)

	assert.Equal(t, 6.0, testutil.ToFloat64(m.contractions))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.terms))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestToolCall(t *testing.T) {
	m := New()
	m.ToolCall("contract", false)
	m.ToolCall("contract", true)
	m.ToolCall("contract", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("contract", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("contract", "error")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.CacheHit()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wick_canonical_cache_hits_total 1")
}

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.CacheHit()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.cacheHits))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.cacheHits))
}
