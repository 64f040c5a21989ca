package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (Response, string, error) {
	t.Helper()
	cmd := newCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()

	var resp Response
	if out.Len() > 0 && out.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	}
	return resp, out.String(), err
}

func TestCommand_PrintsPreviews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><meta property="og:title" content="Storm hits coast"></head><body></body></html>`))
	}))
	t.Cleanup(srv.Close)

	resp, _, err := run(t, "--timeout", "2s", srv.URL+"/story")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Storm hits coast", resp.Data[0].Title)
}

func TestCommand_ReportsFailures(t *testing.T) {
	resp, _, err := run(t, "ftp://example.com/x")
	assert.ErrorIs(t, err, errIncomplete)
	assert.False(t, resp.Success)
	assert.Zero(t, resp.Count)
	assert.Len(t, resp.Errors, 1)
}

func TestCommand_RequiresURL(t *testing.T) {
	_, _, err := run(t)
	assert.Error(t, err)
}
