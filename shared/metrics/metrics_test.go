package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := New("qtrack")
	r := gin.New()
	r.Use(reg.GinMiddleware())
	r.GET("/api/jobs/:job_id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.httpRequests.WithLabelValues("/api/jobs/:job_id", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.httpRequests.WithLabelValues("unmatched", "GET", "404")))
}

func TestObserveUpstream(t *testing.T) {
	reg := New("qtrack")
	reg.ObserveUpstream("list_jobs", http.StatusOK, 20*time.Millisecond)
	reg.ObserveUpstream("list_jobs", 0, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.upstreamRequests.WithLabelValues("list_jobs", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.upstreamRequests.WithLabelValues("list_jobs", "0")))
}

func TestHandler(t *testing.T) {
	reg := New("qtrack")
	reg.EventPublished()
	reg.EventProcessed("ack")
	reg.TransitionStored()
	reg.RateLimited()

	w := httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, name := range []string{
		"qtrack_status_events_published_total 1",
		`qtrack_status_events_processed_total{outcome="ack"} 1`,
		"qtrack_status_transitions_stored_total 1",
		"qtrack_rate_limit_blocks_total 1",
		"go_goroutines",
	} {
		assert.True(t, strings.Contains(body, name), "missing %q", name)
	}
}
