package bootstrap

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/tourdesk/config"
	"github.com/Domenick1991/tourdesk/internal/auth"
	"github.com/Domenick1991/tourdesk/internal/domain"
	"github.com/Domenick1991/tourdesk/internal/logger"
	"github.com/Domenick1991/tourdesk/internal/ratelimit"
	"github.com/Domenick1991/tourdesk/internal/repository"
	"github.com/Domenick1991/tourdesk/internal/service/inquiry"
	"github.com/Domenick1991/tourdesk/internal/service/stats"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminUser = "desk"
	adminPass = "s3cret"
)

type tickingClock struct {
	t time.Time
}

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Admin.User = adminUser
	cfg.Admin.Password = adminPass

	store := repository.NewFileInquiryRepository(filepath.Join(t.TempDir(), "inquiries.json"), nil)
	require.NoError(t, store.Init(context.Background()))

	clock := &tickingClock{t: time.Now().UTC()}
	return NewRouter(cfg, Dependencies{
		Inquiries:     inquiry.NewInquiryService(store, inquiry.WithClock(clock.Now)),
		Stats:         stats.NewStatsService(store),
		Limiter:       ratelimit.NewMemoryLimiter(cfg.RateLimit.Limit, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second),
		Authenticator: auth.NewBasicAuthenticator(cfg.Admin.User, cfg.Admin.Password),
		Log:           logger.Nop(),
	})
}

func do(router *gin.Engine, method, path, body string, admin bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "192.0.2.10:51000"
	if admin {
		creds := base64.StdEncoding.EncodeToString([]byte(adminUser + ":" + adminPass))
		req.Header.Set("Authorization", "Basic "+creds)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func listInquiries(t *testing.T, router *gin.Engine) []domain.Inquiry {
	t.Helper()
	w := do(router, http.MethodGet, "/api/admin/inquiries", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Inquiries []domain.Inquiry `json:"inquiries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Inquiries
}

func TestRouter_InquiryLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/inquiry",
		`{"name":"Asha Rao","phone":"+91 98765 43210","travelers":2,"destination":"Kerala","travelDate":"2026-12-20"}`, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Success bool  `json:"success"`
		ID      int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, int64(1), created.ID)

	items := listInquiries(t, router)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, "+919876543210", items[0].Phone)
	assert.Equal(t, domain.InquiryStatusNew, items[0].Status)
	before := items[0].UpdatedAt

	w = do(router, http.MethodPut, fmt.Sprintf("/api/admin/inquiries/%d", created.ID), `{"status":"contacted"}`, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	items = listInquiries(t, router)
	require.Len(t, items, 1)
	assert.Equal(t, domain.InquiryStatusContacted, items[0].Status)
	assert.True(t, items[0].UpdatedAt.After(before))

	w = do(router, http.MethodGet, "/api/admin/stats", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":1,"new":0,"contacted":1,"booked":0,"thisWeek":1}`, w.Body.String())

	w = do(router, http.MethodDelete, fmt.Sprintf("/api/admin/inquiries/%d", created.ID), "", true)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, listInquiries(t, router))

	w = do(router, http.MethodDelete, fmt.Sprintf("/api/admin/inquiries/%d", created.ID), "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_AdminRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	routes := []struct{ method, path, body string }{
		{http.MethodGet, "/api/admin/inquiries", ""},
		{http.MethodPut, "/api/admin/inquiries/1", `{"status":"booked"}`},
		{http.MethodDelete, "/api/admin/inquiries/1", ""},
		{http.MethodGet, "/api/admin/stats", ""},
	}
	for _, r := range routes {
		w := do(router, r.method, r.path, r.body, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, r.path)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
	}
}

func TestRouter_SubmissionValidation(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/api/inquiry", `{"name":"Asha","phone":"9876543210","destination":"Goa"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"missing required fields"}`, w.Body.String())

	w = do(router, http.MethodPost, "/api/inquiry", `{"name":"Asha","phone":"9876543210","travelers":"0","destination":"Goa"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"missing required fields"}`, w.Body.String())

	w = do(router, http.MethodPost, "/api/inquiry", `{"name":"Asha","phone":"123-456","travelers":1,"destination":"Goa"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid phone"}`, w.Body.String())
}

func TestRouter_SubmissionIsRateLimited(t *testing.T) {
	router := newTestRouter(t)
	body := `{"name":"Asha","phone":"9876543210","travelers":1,"destination":"Goa"}`

	for i := 0; i < 30; i++ {
		w := do(router, http.MethodPost, "/api/inquiry", body, false)
		require.Equal(t, http.StatusCreated, w.Code, "request %d", i+1)
	}

	w := do(router, http.MethodPost, "/api/inquiry", body, false)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = do(router, http.MethodGet, "/api/health", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	router := newTestRouter(t)
	huge := `{"name":"Asha","phone":"9876543210","travelers":1,"destination":"Goa","message":"` + strings.Repeat("x", 20<<10) + `"}`

	w := do(router, http.MethodPost, "/api/inquiry", huge, false)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.0.0"`)

	w = do(router, http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = do(router, http.MethodGet, "/nope", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)
	assert.True(t, corsConfig(nil).AllowAllOrigins)

	cfg := corsConfig([]string{"https://tours.example.com"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://tours.example.com"}, cfg.AllowOrigins)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Address = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, http.NotFoundHandler(), logger.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRouter_SwaggerDocs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, swaggerSpecFile), []byte(`{"openapi":"3.0.3"}`), 0o644))

	cfg := config.Default()
	cfg.HTTP.SwaggerDir = dir
	router := NewRouter(cfg, Dependencies{
		Limiter:       ratelimit.NewMemoryLimiter(1, time.Minute),
		Authenticator: auth.NewBasicAuthenticator(adminUser, adminPass),
	})

	w := do(router, http.MethodGet, "/swagger/"+swaggerSpecFile, "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi")

	w = do(router, http.MethodGet, "/docs/index.html", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
