package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-reader/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T, upstream string, env map[string]string) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.UpstreamBaseURL = upstream
	cfg.SetLookup(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	return cfg
}

func TestRouter_Health(t *testing.T) {
	r := NewRouter(testConfig(t, "http://unused", map[string]string{"REACT_APP_NEWS_API_KEY": "k"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["keyConfigured"])
}

func TestRouter_NewsWithoutKeyDoesNotLeakEnv(t *testing.T) {
	r := NewRouter(testConfig(t, "http://unused", map[string]string{"NEWS_API_KEY": "   "}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "API key not configured", body["error"])
	assert.Contains(t, body["hint"], "NEWS_API_KEY")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_NewsRoundTrip(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "server-key", r.URL.Query().Get("apiKey"))
		w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	}))
	defer up.Close()

	r := NewRouter(testConfig(t, up.URL, map[string]string{"NEWS_API_KEY": "server-key"}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/news?endpoint=top-headlines&country=us", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","totalResults":0,"articles":[]}`, w.Body.String())
}
