package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.Operation("join", "ok")
	r.Operation("join", "ok")
	r.Operation("join", "conflict")
	r.Moved("deposit", 250)
	r.Moved("deposit", -5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("join", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("join", "conflict")))
	assert.Equal(t, 250.0, testutil.ToFloat64(r.moved.WithLabelValues("deposit")))

	var nilRecorder *Recorder
	nilRecorder.Operation("join", "ok")
	nilRecorder.Moved("deposit", 1)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New()
	router := gin.New()
	router.Use(r.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", gin.WrapH(r.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `battlezone_http_request_duration_seconds_count{method="GET",route="/ping",status="200"} 1`)
}
