package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStoreOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(storeOperations.WithLabelValues("memory", "fetch", "ok"))
	errBefore := testutil.ToFloat64(storeOperations.WithLabelValues("memory", "fetch", "error"))

	ObserveStoreOperation("memory", "fetch", nil, time.Millisecond)
	ObserveStoreOperation("memory", "fetch", errors.New("boom"), time.Millisecond)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(storeOperations.WithLabelValues("memory", "fetch", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(storeOperations.WithLabelValues("memory", "fetch", "error")))
}

func TestGinMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/api/videos/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/videos/:id", "204"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos/abc", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/videos/:id", "204")))
}

func TestSetDocumentRecords(t *testing.T) {
	SetDocumentRecords(3, 2, 1)
	assert.Equal(t, 3.0, testutil.ToFloat64(documentRecords.WithLabelValues("videos")))
	assert.Equal(t, 1.0, testutil.ToFloat64(documentRecords.WithLabelValues("sessions")))
}
