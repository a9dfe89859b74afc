package metrics

import (
	"errors"
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

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/items/:id", "204"))

	for _, path := range []string{"/items/1", "/items/2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/items/:id", "204"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecorders(t *testing.T) {
	RecordStoreOperation("read", time.Millisecond, nil)
	RecordStoreOperation("update", time.Millisecond, errors.New("disk full"))
	assert.Equal(t, 1.0, testutil.ToFloat64(storeOperationsTotal.WithLabelValues("update", "error")))

	RecordInquirySubmitted()
	assert.Equal(t, 1.0, testutil.ToFloat64(inquiriesSubmittedTotal))

	RecordInquiryRejected("invalid_phone")
	assert.Equal(t, 1.0, testutil.ToFloat64(inquiriesRejectedTotal.WithLabelValues("invalid_phone")))

	RecordAuthAttempt(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(authAttemptsTotal.WithLabelValues("failure")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RecordRateLimited()

	router := gin.New()
	router.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "rate_limited_requests_total"))
}
