package monitoring

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequestUpdatesSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordHTTPRequest("GET", "/api/items", "200", 10*time.Millisecond, 512)
	m.RecordHTTPRequest("POST", "/api/items", "500", 20*time.Millisecond, 64)

	snap := m.CurrentSnapshot()
	assert.EqualValues(t, 2, snap.TotalRequests)
	assert.EqualValues(t, 1, snap.TotalErrors)
	assert.InDelta(t, 15, snap.AvgDurationMS, 0.5)
}

func TestCountersAndGauges(t *testing.T) {
	m := NewMetrics()

	m.RecordMutation("move")
	m.RecordMutation("move")
	m.SetItemsStored(7)
	m.RecordTaskStarted("upload")
	m.SetTasksActive(1)
	m.IncWSConnections()
	m.IncWSConnections()
	m.DecWSConnections()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ItemMutations.WithLabelValues("move")))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.ItemsStored))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TasksTotal.WithLabelValues("upload")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WSConnections))
}

func TestIndependentRegistries(t *testing.T) {
	// Two collectors must not collide on metric registration.
	a := NewMetrics()
	b := NewMetrics()
	require.NotSame(t, a.Registry, b.Registry)
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/api/items", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/items", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	snap := m.CurrentSnapshot()
	assert.EqualValues(t, 1, snap.TotalRequests)
	assert.EqualValues(t, 0, snap.TotalErrors)
}
