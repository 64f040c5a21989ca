package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-reader/internal/article"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`))
			return
		}
		assert.Equal(t, "/top-headlines", r.URL.Path)
		assert.Equal(t, "us", r.URL.Query().Get("country"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","totalResults":2,"articles":[
			{"source":{"name":"Wire"},"author":"Ann","title":"Storm hits coast","url":"http://a/storm","publishedAt":"2026-03-10T12:00:00Z"},
			{"source":{"name":"Desk"},"title":"Markets rally","url":"http://a/markets","publishedAt":"2026-03-10T13:00:00Z"}
		]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHeadlines_Prints(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "test-key")
	srv := upstream(t)

	r := execute(t, writeConfig(t, srv.URL), "", "headlines", "-p", "country=us")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, " 1. Storm hits coast\n    By Ann | 2026-03-10 | Wire\n    http://a/storm\n")
	assert.Contains(t, r.out, " 2. Markets rally\n    By Unknown | 2026-03-10 | Desk\n")
	assert.Contains(t, r.out, "2 of 2 results")
}

func TestHeadlines_SearchAndJSON(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "test-key")
	srv := upstream(t)

	r := execute(t, writeConfig(t, srv.URL), "", "headlines", "-p", "country=us", "--search", "STORM", "--json")
	require.NoError(t, r.err)

	var resp article.Response
	require.NoError(t, json.Unmarshal([]byte(r.out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Articles, 1)
	assert.Equal(t, "http://a/storm", resp.Articles[0].URL)
}

func TestHeadlines_UpstreamError(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "wrong")
	srv := upstream(t)

	r := execute(t, writeConfig(t, srv.URL), "", "headlines", "-p", "country=us")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "Your API key is invalid")
	assert.NotContains(t, r.err.Error(), "wrong")
}

func TestHeadlines_NoKey(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "")
	t.Setenv("REACT_APP_NEWS_API_KEY", "")

	r := execute(t, writeConfig(t, ""), "", "headlines")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "NEWS_API_KEY")
}

func TestHeadlines_BadInput(t *testing.T) {
	cfg := writeConfig(t, "")

	r := execute(t, cfg, "", "headlines", "-p", "novalue")
	assert.ErrorContains(t, r.err, "invalid param")

	r = execute(t, cfg, "", "headlines", "--endpoint", "sources")
	assert.ErrorContains(t, r.err, "unknown endpoint")
}

func TestParseParams(t *testing.T) {
	p, err := parseParams([]string{"country=us", " q = Hyderabad OR Telangana ", "empty="})
	require.NoError(t, err)
	assert.Equal(t, "us", p["country"])
	assert.Equal(t, "Hyderabad OR Telangana", p["q"])
	assert.Equal(t, "", p["empty"])

	_, err = parseParams([]string{"=x"})
	assert.Error(t, err)
}

func TestHeadlines_NoDefaultTimeout(t *testing.T) {
	cmd := newHeadlinesCommand(&rootOptions{})
	flag := cmd.Flags().Lookup("timeout")
	require.NotNil(t, flag)
	assert.Equal(t, "0s", flag.DefValue)
}
