package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/docket/internal/ecosystem"
	"github.com/roach88/docket/internal/ir"
	"github.com/roach88/docket/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shapes(withCircle bool) ir.PackageGraph {
	b := testutil.NewGraph("base").
		Module("Base").
		Symbol("Base", "s:Shape", "protocol", "Shape", testutil.Doc("A drawable shape.")).
		Symbol("Base", "s:Shape.area", "func", "Shape.area()", testutil.Rel(ir.RelMemberOf, "s:Shape"))
	if withCircle {
		b.Symbol("Base", "s:Circle", "struct", "Circle", testutil.Rel(ir.RelConformsTo, "s:Shape"))
	}
	return b.Build()
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	svc := ecosystem.NewService(
		ecosystem.WithLogger(discard()),
		ecosystem.WithIDGenerator(testutil.NewSequentialIDs("rel")),
	)
	ctx := context.Background()
	_, err := svc.UpdateRelease(ctx, shapes(false), map[string]string{"base": "1.0.0"})
	require.NoError(t, err)
	_, err = svc.UpdateRelease(ctx, shapes(true), map[string]string{"base": "2.0.0"})
	require.NoError(t, err)
	return New(svc, WithLogger(discard()))
}

func get(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Query(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name     string
		target   string
		status   int
		location string
	}{
		{"exact page", "/reference/base/1.0.0/Base/Shape", http.StatusOK, ""},
		{"canonical page", "/reference/base/Base/Circle", http.StatusOK, ""},
		{"masked version", "/reference/base/1/Base/Shape", http.StatusFound, "/reference/base/1.0.0/Base/Shape"},
		{"outed spelling", "/reference/base/Base/shape", http.StatusMovedPermanently, "/reference/base/Base/Shape"},
		{"unknown version pattern", "/reference/base/9/Base/Shape", http.StatusNotFound, ""},
		{"absent at version", "/reference/base/1.0.0/Base/Circle", http.StatusNotFound, ""},
		{"unknown prefix", "/docs/base", http.StatusNotFound, ""},
		{"sitemap", "/sitemaps/base.txt", http.StatusOK, ""},
		{"search index", "/lunr/base/search.json", http.StatusOK, ""},
		{"escaped suffix", "/reference/base/Base/Shape/area%28%29", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(s, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}
}

func TestServer_PageHeaders(t *testing.T) {
	s := setupTestServer(t)

	w := get(s, http.MethodGet, "/reference/base/1.0.0/Base/Shape")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `</reference/base/Base/Shape>; rel="canonical"`, w.Header().Get("Link"))
	assert.Contains(t, w.Body.String(), "<p>A drawable shape.</p>")

	w = get(s, http.MethodGet, "/sitemaps/base.txt")
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Link"))
	assert.Contains(t, w.Body.String(), "/reference/base/Base/Circle\n")

	w = get(s, http.MethodGet, "/lunr/base/search.json")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.True(t, json.Valid(w.Body.Bytes()))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := setupTestServer(t)

	w := get(s, http.MethodPost, "/reference/base/Base/Shape")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))

	w = get(s, http.MethodHead, "/reference/base/Base/Shape")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Health(t *testing.T) {
	s := setupTestServer(t)

	w := get(s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status   string `json:"status"`
		Packages int    `json:"packages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Packages)
}

func TestServer_Metrics(t *testing.T) {
	s := setupTestServer(t)
	get(s, http.MethodGet, "/reference/base/Base/Shape")

	w := get(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docket_queries_total")
	assert.Contains(t, w.Body.String(), "docket_ingestions_total")
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := setupTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, "127.0.0.1:0")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
