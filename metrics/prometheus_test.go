package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecorderCounts verifies each observer method updates its metric.
func TestRecorderCounts(t *testing.T) {
	r := NewRecorder("contractops")

	r.CacheHit("memory")
	r.CacheHit("memory")
	r.CacheHit("file")
	r.CacheMiss()
	r.RemoteLookup("ethereum", "success")
	r.ObserveOperation("call", "ethereum", "success", 50*time.Millisecond)
	r.QueueChanged(1)
	r.QueueChanged(1)
	r.QueueChanged(-1)
	r.ObserveSubmission("sepolia", 21000)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheHits.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheHits.WithLabelValues("file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.remoteLookups.WithLabelValues("ethereum", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("call", "ethereum", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.queueDepth))
	assert.Equal(t, 21000.0, testutil.ToFloat64(r.gasUsed))
}

// TestNilRecorder verifies a nil Recorder can be used as an observer.
func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.CacheHit("memory")
		r.CacheMiss()
		r.RemoteLookup("ethereum", "error")
		r.ObserveOperation("send", "ethereum", "failure", time.Second)
		r.QueueChanged(1)
		r.ObserveSubmission("ethereum", 1)
	})
}

// TestHandlerExposesMetrics verifies the handler serves the registry.
func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder("contractops")
	r.CacheMiss()

	server := httptest.NewServer(r.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "contractops_abi_cache_misses_total 1")
}
